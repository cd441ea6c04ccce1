package usecase

import (
	"labor-market/internal/data/repository"
	"labor-market/pkg/lock"
	"labor-market/pkg/mq"
	"labor-market/pkg/utils"

	"go.uber.org/zap"
)

// Deps are the process-wide collaborators built once in main.
type Deps struct {
	Gateway PaymentGateway
	Charger CardCharger
	Locker  lock.Locker
	Events  mq.Publisher
}

type Service struct {
	Auth         AuthService
	Payment      PaymentService
	CardPayment  CardPaymentService
	Tracking     TrackingService
	Booking      BookingService
	Notification NotificationService
}

func NewService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) *Service {
	return &Service{
		Auth:         NewAuthService(repo, config, log),
		Payment:      NewPaymentService(repo, config.Gateway, deps.Gateway, deps.Locker, deps.Events, log),
		CardPayment:  NewCardPaymentService(repo, config.Card, deps.Charger, deps.Events, log),
		Tracking:     NewTrackingService(repo, deps.Events, log),
		Booking:      NewBookingService(repo, log),
		Notification: NewNotificationService(repo.Notification, log),
	}
}
