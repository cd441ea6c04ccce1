package response

import (
	"time"

	"labor-market/internal/data/entity"

	"github.com/shopspring/decimal"
)

type BookingResponse struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Description    *string              `json:"description,omitempty"`
	Location       *string              `json:"location,omitempty"`
	ClientID       string               `json:"client_id"`
	LaborerID      string               `json:"laborer_id"`
	HourlyRate     decimal.Decimal      `json:"hourly_rate"`
	EstimatedHours decimal.Decimal      `json:"estimated_hours"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	Status         entity.BookingStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

type BookingDetailResponse struct {
	BookingResponse
	Payment  *PaymentResponse  `json:"payment,omitempty"`
	Tracking *TrackingResponse `json:"tracking,omitempty"`
}

type TrackingResponse struct {
	BookingID string               `json:"booking_id"`
	LaborerID string               `json:"laborer_id"`
	Latitude  float64              `json:"latitude"`
	Longitude float64              `json:"longitude"`
	Status    entity.BookingStatus `json:"status"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:             b.ID.String(),
		Title:          b.Title,
		Description:    b.Description,
		Location:       b.Location,
		ClientID:       b.ClientID.String(),
		LaborerID:      b.LaborerID.String(),
		HourlyRate:     b.HourlyRate,
		EstimatedHours: b.EstimatedHours,
		TotalAmount:    b.TotalAmount,
		Status:         b.Status,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func TrackingToResponse(t *entity.Tracking) TrackingResponse {
	return TrackingResponse{
		BookingID: t.BookingID.String(),
		LaborerID: t.LaborerID.String(),
		Latitude:  t.Latitude,
		Longitude: t.Longitude,
		Status:    t.Status,
		UpdatedAt: t.UpdatedAt,
	}
}
