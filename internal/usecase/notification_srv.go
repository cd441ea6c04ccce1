package usecase

import (
	"context"

	"labor-market/internal/data/repository"
	"labor-market/internal/dto/request"
	"labor-market/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService interface {
	GetUserNotifications(ctx context.Context, callerID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.NotificationResponse], error)
	MarkAsRead(ctx context.Context, callerID uuid.UUID, notificationID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) NotificationService {
	return &notificationService{
		repo: repo,
		log:  log.With(zap.String("service", "notification")),
	}
}

func (s *notificationService) GetUserNotifications(ctx context.Context, callerID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.NotificationResponse], error) {
	if callerID == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized")
	}

	limit, offset := req.Limit(), req.Offset()

	notifications, err := s.repo.FindByUserID(ctx, callerID, limit, offset)
	if err != nil {
		return nil, wrapError(ErrPersistence, "Error fetching notifications", err)
	}

	total, err := s.repo.CountByUserID(ctx, callerID)
	if err != nil {
		return nil, wrapError(ErrPersistence, "Error fetching notifications", err)
	}

	data := make([]response.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		data = append(data, response.NotificationToResponse(n))
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	return response.NewPaginatedResponse(data, page, limit, total), nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, callerID uuid.UUID, notificationID string) error {
	if callerID == uuid.Nil {
		return newError(ErrUnauthenticated, "Unauthorized")
	}

	id, err := uuid.Parse(notificationID)
	if err != nil {
		return newError(ErrValidation, "Invalid notification ID")
	}

	ok, err := s.repo.MarkRead(ctx, id, callerID)
	if err != nil {
		return wrapError(ErrPersistence, "Error updating notification", err)
	}
	if !ok {
		return newError(ErrNotFound, "Notification not found")
	}

	return nil
}
