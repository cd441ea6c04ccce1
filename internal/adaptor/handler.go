package adaptor

import (
	"labor-market/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth         *AuthHandler
	Payment      *PaymentHandler
	CardPayment  *CardPaymentHandler
	Tracking     *TrackingHandler
	Booking      *BookingHandler
	Notification *NotificationHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(service.Auth, log),
		Payment:      NewPaymentHandler(service.Payment, log),
		CardPayment:  NewCardPaymentHandler(service.CardPayment, log),
		Tracking:     NewTrackingHandler(service.Tracking, log),
		Booking:      NewBookingHandler(service.Booking, log),
		Notification: NewNotificationHandler(service.Notification, log),
	}
}
