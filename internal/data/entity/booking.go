package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusAccepted   BookingStatus = "accepted"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// bookingTransitions lists the forward moves; cancellation is handled separately.
var bookingTransitions = map[BookingStatus]BookingStatus{
	BookingStatusPending:    BookingStatusAccepted,
	BookingStatusAccepted:   BookingStatusInProgress,
	BookingStatusInProgress: BookingStatusCompleted,
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo reports whether a status report may move a booking from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s.IsTerminal() || !next.Valid() {
		return false
	}
	if next == BookingStatusCancelled {
		return true
	}
	return bookingTransitions[s] == next
}

// Payable is true while a booking can still take a payment.
func (s BookingStatus) Payable() bool {
	return !s.IsTerminal()
}

type Booking struct {
	Base
	Title          string          `db:"title"`
	Description    *string         `db:"description"`
	Location       *string         `db:"location"`
	ClientID       uuid.UUID       `db:"client_id"`
	LaborerID      uuid.UUID       `db:"laborer_id"`
	HourlyRate     decimal.Decimal `db:"hourly_rate"`
	EstimatedHours decimal.Decimal `db:"estimated_hours"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	Status         BookingStatus   `db:"status"`
}
