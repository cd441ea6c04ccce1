package usecase

import (
	"context"

	"labor-market/internal/data/repository"
	"labor-market/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	GetBookingByID(ctx context.Context, callerID uuid.UUID, bookingID string) (*response.BookingDetailResponse, error)
}

type bookingService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewBookingService(repo *repository.Repository, log *zap.Logger) BookingService {
	return &bookingService{
		repo: repo,
		log:  log.With(zap.String("service", "booking")),
	}
}

// GetBookingByID returns the booking with its latest payment and tracking.
// Only the two parties of the booking may read it.
func (s *bookingService) GetBookingByID(ctx context.Context, callerID uuid.UUID, bookingID string) (*response.BookingDetailResponse, error) {
	if callerID == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized")
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, newError(ErrValidation, "Invalid booking ID")
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, wrapError(ErrPersistence, "Error fetching booking", err)
	}
	if booking == nil {
		return nil, newError(ErrNotFound, "Booking not found")
	}
	if booking.ClientID != callerID && booking.LaborerID != callerID {
		return nil, newError(ErrForbidden, "Unauthorized to view this booking")
	}

	resp := &response.BookingDetailResponse{
		BookingResponse: response.BookingToResponse(booking),
	}

	payment, err := s.repo.Payment.FindLatestByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, wrapError(ErrPersistence, "Error fetching payment", err)
	}
	if payment != nil {
		p := response.PaymentToResponse(payment)
		resp.Payment = &p
	}

	tracking, err := s.repo.Tracking.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, wrapError(ErrPersistence, "Error fetching tracking", err)
	}
	if tracking != nil {
		t := response.TrackingToResponse(tracking)
		resp.Tracking = &t
	}

	return resp, nil
}
