package entity

import "github.com/google/uuid"

// Tracking is the laborer's last reported position for a booking, one row per booking.
type Tracking struct {
	Base
	BookingID uuid.UUID     `db:"booking_id"`
	LaborerID uuid.UUID     `db:"laborer_id"`
	Latitude  float64       `db:"latitude"`
	Longitude float64       `db:"longitude"`
	Status    BookingStatus `db:"status"`
}
