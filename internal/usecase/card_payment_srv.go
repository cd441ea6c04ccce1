package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labor-market/internal/data/entity"
	"labor-market/internal/data/repository"
	"labor-market/internal/dto/request"
	"labor-market/internal/dto/response"
	"labor-market/pkg/gateway"
	"labor-market/pkg/mq"
	"labor-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CardCharger interface {
	Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
}

type CardPaymentService interface {
	ProcessCardPayment(ctx context.Context, callerID uuid.UUID, req *request.ProcessCardPaymentRequest) (*response.ProcessCardPaymentResponse, error)
}

type cardPaymentService struct {
	repo    *repository.Repository
	config  utils.CardConfig
	charger CardCharger
	events  mq.Publisher
	log     *zap.Logger
}

func NewCardPaymentService(repo *repository.Repository, config utils.CardConfig, charger CardCharger, events mq.Publisher, log *zap.Logger) CardPaymentService {
	return &cardPaymentService{
		repo:    repo,
		config:  config,
		charger: charger,
		events:  events,
		log:     log.With(zap.String("service", "card_payment")),
	}
}

// ProcessCardPayment charges the card in one step. A succeeded charge settles
// the booking immediately; any other intent status is kept as a pending record.
func (s *cardPaymentService) ProcessCardPayment(ctx context.Context, callerID uuid.UUID, req *request.ProcessCardPaymentRequest) (*response.ProcessCardPaymentResponse, error) {
	if callerID == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized")
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Card payment validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	booking, err := clientBooking(ctx, s.repo, s.log, callerID, req.BookingID, "Unauthorized to make payment for this booking")
	if err != nil {
		return nil, err
	}

	amount, err := bookingAmount(s.log, booking, req.Amount)
	if err != nil {
		return nil, err
	}
	if !booking.Status.Payable() {
		return nil, newError(ErrInvalidState, fmt.Sprintf("Booking is %s and cannot be paid", booking.Status))
	}

	if !s.config.Configured() || s.charger == nil {
		return nil, newError(ErrConfig, "Payment gateway not configured")
	}

	charge, err := s.charger.Charge(ctx, gateway.ChargeRequest{
		Amount:          utils.ToMinorUnits(amount),
		PaymentMethodID: req.PaymentMethodID,
		Metadata: map[string]string{
			"booking_id": booking.ID.String(),
			"user_id":    callerID.String(),
		},
	})
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		return nil, wrapError(ErrConfig, "Payment gateway not configured", err)
	case errors.Is(err, gateway.ErrCardDeclined):
		s.log.Warn("Card declined", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return nil, wrapError(ErrValidation, "Card payment was declined", err)
	case err != nil:
		s.log.Error("Card charge failed",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, wrapError(ErrGateway, "Payment processing failed", err)
	}

	now := time.Now()
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:     booking.ID,
		Amount:        amount,
		TransactionID: charge.ID,
		PaymentMethod: entity.PaymentMethodCard,
		Status:        entity.PaymentStatusPending,
	}

	resp := &response.ProcessCardPaymentResponse{
		Success:         true,
		PaymentIntentID: charge.ID,
		Status:          charge.Status,
	}

	if !charge.Succeeded() {
		// e.g. requires_action; the payer finishes on the return url
		if err := s.repo.Payment.Create(ctx, payment); err != nil {
			s.log.Error("Failed to record pending card payment",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
				zap.String("payment_intent_id", charge.ID),
			)
		}
		return resp, nil
	}

	payment.Status = entity.PaymentStatusCompleted
	err = s.repo.Settlement.RecordCharge(ctx, repository.ChargeSettlement{
		Payment:      payment,
		Notification: paymentReceived(booking, amount, s.config.Currency),
	})
	if err != nil {
		// money has moved; the intent id in the log is what support refunds against
		s.log.Error("Captured card charge not recorded",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("payment_intent_id", charge.ID),
		)
		return nil, wrapError(ErrPersistence, "Error updating payment record", err)
	}

	s.log.Info("Card payment settled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_intent_id", charge.ID),
		zap.String("amount", amount.String()),
	)

	publish(ctx, s.events, s.log, mq.RoutingPaymentCompleted, PaymentCompletedEvent{
		BookingID:  booking.ID.String(),
		ClientID:   booking.ClientID.String(),
		LaborerID:  booking.LaborerID.String(),
		PaymentID:  charge.ID,
		Amount:     utils.FormatAmount(amount),
		OccurredAt: time.Now(),
	})

	return resp, nil
}
