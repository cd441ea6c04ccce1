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
	"labor-market/pkg/lock"
	"labor-market/pkg/mq"
	"labor-market/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MsgPaymentVerified        = "Payment verified successfully"
	MsgPaymentAlreadyVerified = "Payment already verified"
)

// PaymentGateway is the slice of the gateway client the service needs.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error)
}

type PaymentService interface {
	CreateOrder(ctx context.Context, callerID uuid.UUID, req *request.CreateOrderRequest) (*response.CreateOrderResponse, error)
	GetPublicConfig(ctx context.Context, callerID uuid.UUID) (*response.PaymentConfigResponse, error)
	VerifyPayment(ctx context.Context, callerID uuid.UUID, req *request.VerifyPaymentRequest) (*response.VerifyPaymentResponse, error)
}

type paymentService struct {
	repo    *repository.Repository
	config  utils.GatewayConfig
	gateway PaymentGateway
	locker  lock.Locker
	events  mq.Publisher
	log     *zap.Logger
}

func NewPaymentService(
	repo *repository.Repository,
	config utils.GatewayConfig,
	gw PaymentGateway,
	locker lock.Locker,
	events mq.Publisher,
	log *zap.Logger,
) PaymentService {
	if locker == nil {
		locker = lock.NewNoopLocker()
	}

	return &paymentService{
		repo:    repo,
		config:  config,
		gateway: gw,
		locker:  locker,
		events:  events,
		log:     log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, callerID uuid.UUID, req *request.CreateOrderRequest) (*response.CreateOrderResponse, error) {
	if callerID == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized")
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create order validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	booking, err := s.ownedBooking(ctx, callerID, req.BookingID, "Unauthorized to make payment for this booking")
	if err != nil {
		return nil, err
	}

	// ownership is settled first so a stranger learns nothing about the amount
	amount, err := bookingAmount(s.log, booking, req.Amount)
	if err != nil {
		return nil, err
	}
	if !booking.Status.Payable() {
		return nil, newError(ErrInvalidState, fmt.Sprintf("Booking is %s and cannot be paid", booking.Status))
	}

	if !s.config.Configured() {
		return nil, newError(ErrConfig, "Payment gateway not configured")
	}

	order, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		Amount:      utils.ToMinorUnits(amount),
		Currency:    s.config.Currency,
		Receipt:     "booking_" + booking.ID.String(),
		AutoCapture: true,
		Notes: map[string]string{
			"booking_id": booking.ID.String(),
			"user_id":    callerID.String(),
		},
	})
	if errors.Is(err, gateway.ErrNotConfigured) {
		return nil, wrapError(ErrConfig, "Payment gateway not configured", err)
	}
	if err != nil {
		s.log.Error("Gateway order creation failed",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, wrapError(ErrGateway, "Error creating payment order", err)
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
		TransactionID: order.ID,
		PaymentMethod: entity.PaymentMethodRazorpay,
		Status:        entity.PaymentStatusPending,
	}

	// The gateway order already exists; losing the local row is repaired by the
	// reconciler, so the caller still gets the order.
	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.log.Error("Failed to record pending payment, left for reconciliation",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("order_id", order.ID),
			zap.Int64("amount_minor", order.Amount),
		)
	}

	s.log.Info("Payment order created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", order.ID),
		zap.Int64("amount_minor", order.Amount),
		zap.String("currency", order.Currency),
	)

	return &response.CreateOrderResponse{
		Order: response.OrderResponse{
			ID:       order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
			Receipt:  order.Receipt,
			Status:   order.Status,
		},
	}, nil
}

func (s *paymentService) GetPublicConfig(ctx context.Context, callerID uuid.UUID) (*response.PaymentConfigResponse, error) {
	if callerID == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized")
	}

	if s.config.KeyID == "" {
		return nil, newError(ErrConfig, "Payment gateway not configured")
	}

	// only the public key id; the secret never leaves the server
	return &response.PaymentConfigResponse{PublicKey: s.config.KeyID}, nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, callerID uuid.UUID, req *request.VerifyPaymentRequest) (*response.VerifyPaymentResponse, error) {
	if callerID == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized")
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Verify payment validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	booking, err := s.ownedBooking(ctx, callerID, req.BookingID, "Unauthorized to verify payment for this booking")
	if err != nil {
		return nil, err
	}

	if s.config.KeySecret == "" {
		return nil, newError(ErrConfig, "Payment gateway not configured")
	}
	if !utils.VerifyPaymentSignature(s.config.KeySecret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.log.Warn("Payment signature mismatch",
			zap.String("booking_id", booking.ID.String()),
			zap.String("order_id", req.RazorpayOrderID),
			zap.String("payment_id", req.RazorpayPaymentID),
		)
		return nil, newError(ErrInvalidSignature, "Invalid payment signature")
	}

	release, err := s.locker.Acquire(ctx, "payment:verify:"+booking.ID.String())
	defer release()
	if errors.Is(err, lock.ErrLocked) {
		return nil, wrapError(ErrConflict, "Payment verification already in progress", err)
	}
	if err != nil {
		// the conditional update below still guards the settlement
		s.log.Warn("Verify lock unavailable, continuing without it", zap.Error(err))
	}

	return s.settle(ctx, booking, req)
}

func (s *paymentService) settle(ctx context.Context, booking *entity.Booking, req *request.VerifyPaymentRequest) (*response.VerifyPaymentResponse, error) {
	payment, err := s.repo.Payment.FindByBookingAndTransaction(ctx, booking.ID, req.RazorpayOrderID)
	if err != nil {
		return nil, wrapError(ErrPersistence, "Error updating payment record", err)
	}

	if payment == nil {
		settled, err := s.repo.Payment.FindByBookingAndTransaction(ctx, booking.ID, req.RazorpayPaymentID)
		if err != nil {
			return nil, wrapError(ErrPersistence, "Error updating payment record", err)
		}
		if settled != nil && settled.Status == entity.PaymentStatusCompleted {
			s.log.Info("Payment verify replayed",
				zap.String("booking_id", booking.ID.String()),
				zap.String("payment_id", req.RazorpayPaymentID),
			)
			return &response.VerifyPaymentResponse{Success: true, Message: MsgPaymentAlreadyVerified}, nil
		}
		return nil, newError(ErrNotFound, "Payment record not found")
	}

	if payment.Status != entity.PaymentStatusPending {
		return nil, newError(ErrInvalidState, fmt.Sprintf("Payment is %s", payment.Status))
	}

	if req.Amount != nil {
		claimed := decimal.NewFromFloat(*req.Amount).Round(2)
		if !claimed.Equal(payment.Amount.Round(2)) {
			s.log.Warn("Verify amount differs from order amount",
				zap.String("booking_id", booking.ID.String()),
				zap.String("claimed", claimed.String()),
				zap.String("recorded", payment.Amount.String()),
			)
			return nil, newError(ErrValidation, "Payment amount does not match order amount")
		}
	}

	notification := paymentReceived(booking, payment.Amount, s.config.Currency)

	err = s.repo.Settlement.Settle(ctx, repository.Settlement{
		BookingID:    booking.ID,
		OrderID:      req.RazorpayOrderID,
		PaymentID:    req.RazorpayPaymentID,
		Notification: notification,
	})
	if errors.Is(err, repository.ErrAlreadySettled) {
		return &response.VerifyPaymentResponse{Success: true, Message: MsgPaymentAlreadyVerified}, nil
	}
	if err != nil {
		return nil, wrapError(ErrPersistence, "Error updating payment record", err)
	}

	s.log.Info("Payment settled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", req.RazorpayOrderID),
		zap.String("payment_id", req.RazorpayPaymentID),
		zap.String("amount", payment.Amount.String()),
	)

	publish(ctx, s.events, s.log, mq.RoutingPaymentCompleted, PaymentCompletedEvent{
		BookingID:  booking.ID.String(),
		ClientID:   booking.ClientID.String(),
		LaborerID:  booking.LaborerID.String(),
		OrderID:    req.RazorpayOrderID,
		PaymentID:  req.RazorpayPaymentID,
		Amount:     utils.FormatAmount(payment.Amount),
		OccurredAt: time.Now(),
	})

	return &response.VerifyPaymentResponse{Success: true, Message: MsgPaymentVerified}, nil
}

// ownedBooking loads the booking and checks that the caller is its client.
func (s *paymentService) ownedBooking(ctx context.Context, callerID uuid.UUID, rawID, forbidden string) (*entity.Booking, error) {
	return clientBooking(ctx, s.repo, s.log, callerID, rawID, forbidden)
}

func clientBooking(ctx context.Context, repo *repository.Repository, log *zap.Logger, callerID uuid.UUID, rawID, forbidden string) (*entity.Booking, error) {
	bookingID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, validationError(map[string]string{"booking_id": "booking_id must be a valid UUID"})
	}

	booking, err := repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, wrapError(ErrPersistence, "Error fetching booking", err)
	}
	if booking == nil {
		return nil, newError(ErrNotFound, "Booking not found")
	}

	if booking.ClientID != callerID {
		log.Warn("Payment attempted by non-client",
			zap.String("booking_id", booking.ID.String()),
			zap.String("caller_id", callerID.String()),
		)
		return nil, newError(ErrForbidden, forbidden)
	}

	return booking, nil
}

// bookingAmount rounds the requested amount to cents and checks it against the
// booking total when one is set.
func bookingAmount(log *zap.Logger, booking *entity.Booking, raw float64) (decimal.Decimal, error) {
	amount := decimal.NewFromFloat(raw).Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, validationError(map[string]string{"amount": "amount must be greater than 0"})
	}
	if booking.TotalAmount.IsPositive() && !amount.Equal(booking.TotalAmount) {
		log.Warn("Payment amount differs from booking total",
			zap.String("booking_id", booking.ID.String()),
			zap.String("amount", amount.String()),
			zap.String("total_amount", booking.TotalAmount.String()),
		)
		return decimal.Zero, newError(ErrValidation, "Payment amount does not match booking amount")
	}
	return amount, nil
}

// paymentReceived is the payee's notification for a settled payment.
func paymentReceived(booking *entity.Booking, amount decimal.Decimal, currency string) *entity.Notification {
	return &entity.Notification{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID: booking.LaborerID,
		Type:   entity.NotificationTypePayment,
		Title:  "Payment Received",
		Message: fmt.Sprintf("Payment of %s%s has been received for booking \"%s\"",
			utils.CurrencySymbol(currency), utils.FormatAmount(amount), booking.Title),
	}
}
