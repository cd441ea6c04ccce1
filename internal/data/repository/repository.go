package repository

import (
	"labor-market/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	Booking      BookingRepository
	Payment      PaymentRepository
	Settlement   SettlementRepository
	Notification NotificationRepository
	Tracking     TrackingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		Payment:      NewPaymentRepository(db, log),
		Settlement:   NewSettlementRepository(db, log),
		Notification: NewNotificationRepository(db, log),
		Tracking:     NewTrackingRepository(db, log),
	}
}
