package request

type TrackingUpdateRequest struct {
	BookingID string   `json:"booking_id" validate:"required,uuid"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Status    string   `json:"status,omitempty" validate:"omitempty,oneof=pending accepted in_progress completed cancelled"`
}
