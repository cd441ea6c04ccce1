package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"labor-market/internal/data/entity"
	"labor-market/internal/data/repository"
	"labor-market/internal/dto/request"
	"labor-market/internal/dto/response"
	"labor-market/pkg/mq"
	"labor-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TrackingService interface {
	UpdateTracking(ctx context.Context, callerID uuid.UUID, req *request.TrackingUpdateRequest) (*response.TrackingResponse, error)
}

type trackingService struct {
	repo   *repository.Repository
	events mq.Publisher
	log    *zap.Logger
}

func NewTrackingService(repo *repository.Repository, events mq.Publisher, log *zap.Logger) TrackingService {
	return &trackingService{
		repo:   repo,
		events: events,
		log:    log.With(zap.String("service", "tracking")),
	}
}

func (s *trackingService) UpdateTracking(ctx context.Context, callerID uuid.UUID, req *request.TrackingUpdateRequest) (*response.TrackingResponse, error) {
	if callerID == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized")
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Tracking update validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, validationError(map[string]string{"booking_id": "booking_id must be a valid UUID"})
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, wrapError(ErrPersistence, "Error fetching booking", err)
	}
	if booking == nil {
		return nil, newError(ErrNotFound, "Booking not found")
	}
	if booking.LaborerID != callerID {
		return nil, newError(ErrForbidden, "Unauthorized to update tracking for this booking")
	}

	next := booking.Status
	changed := false
	if req.Status != "" && entity.BookingStatus(req.Status) != booking.Status {
		next = entity.BookingStatus(req.Status)
		if !booking.Status.CanTransitionTo(next) {
			return nil, newError(ErrInvalidState,
				fmt.Sprintf("Cannot change booking status from %s to %s", booking.Status, next))
		}
		changed = true
	}

	now := time.Now()
	tracking := &entity.Tracking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID: booking.ID,
		LaborerID: callerID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Status:    next,
	}

	if !changed {
		if err := s.repo.Tracking.Upsert(ctx, tracking); err != nil {
			return nil, wrapError(ErrPersistence, "Error updating tracking", err)
		}
		resp := response.TrackingToResponse(tracking)
		return &resp, nil
	}

	err = s.repo.Tracking.Report(ctx, tracking, booking.Status)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, newError(ErrConflict, "Booking status changed concurrently, reload and retry")
	}
	if err != nil {
		return nil, wrapError(ErrPersistence, "Error updating booking status", err)
	}

	s.statusChanged(ctx, booking, next)

	resp := response.TrackingToResponse(tracking)
	return &resp, nil
}

// statusChanged tells the client and subscribers about a committed status change.
func (s *trackingService) statusChanged(ctx context.Context, booking *entity.Booking, next entity.BookingStatus) {
	s.log.Info("Booking status updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(next)),
	)

	notification := &entity.Notification{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID: booking.ClientID,
		Type:   entity.NotificationTypeStatusUpdate,
		Title:  "Booking Status Updated",
		Message: fmt.Sprintf("The status of your booking \"%s\" has been updated to %s",
			booking.Title, strings.ReplaceAll(string(next), "_", " ")),
	}
	if err := s.repo.Notification.Create(ctx, notification); err != nil {
		// the status change stands; the client still sees it on the booking
		s.log.Warn("Failed to notify client of status change",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}

	publish(ctx, s.events, s.log, mq.RoutingBookingStatus, BookingStatusEvent{
		BookingID:  booking.ID.String(),
		From:       string(booking.Status),
		To:         string(next),
		ActorID:    booking.LaborerID.String(),
		OccurredAt: time.Now(),
	})
}
