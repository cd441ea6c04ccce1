package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"labor-market/internal/data/entity"
	"labor-market/internal/dto/request"
	"labor-market/pkg/gateway"
	"labor-market/pkg/lock"
	"labor-market/pkg/mq"
	"labor-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testSecret = "test_secret"

type paymentFixture struct {
	store     *memStore
	gw        *fakeGateway
	events    *fakePublisher
	svc       PaymentService
	clientID  uuid.UUID
	laborerID uuid.UUID
	booking   *entity.Booking
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	f := &paymentFixture{
		store:     newMemStore(),
		gw:        &fakeGateway{},
		events:    &fakePublisher{},
		clientID:  uuid.New(),
		laborerID: uuid.New(),
	}
	f.booking = f.store.addBooking(f.clientID, f.laborerID, "500.00", entity.BookingStatusAccepted)
	f.svc = NewPaymentService(
		f.store.repository(),
		utils.GatewayConfig{KeyID: "rzp_test_key", KeySecret: testSecret, Currency: "INR"},
		f.gw,
		lock.NewNoopLocker(),
		f.events,
		zap.NewNop(),
	)
	return f
}

func (f *paymentFixture) createOrder(t *testing.T) string {
	t.Helper()
	resp, err := f.svc.CreateOrder(context.Background(), f.clientID, &request.CreateOrderRequest{
		BookingID: f.booking.ID.String(),
		Amount:    500.00,
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	return resp.Order.ID
}

func (f *paymentFixture) verifyRequest(orderID, paymentID string) *request.VerifyPaymentRequest {
	return &request.VerifyPaymentRequest{
		BookingID:         f.booking.ID.String(),
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: utils.PaymentSignature(testSecret, orderID, paymentID),
	}
}

func TestCreateOrderConvertsToMinorUnits(t *testing.T) {
	f := newPaymentFixture(t)

	resp, err := f.svc.CreateOrder(context.Background(), f.clientID, &request.CreateOrderRequest{
		BookingID: f.booking.ID.String(),
		Amount:    500.00,
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	if resp.Order.ID != "order_O1" || resp.Order.Amount != 50000 || resp.Order.Currency != "INR" {
		t.Fatalf("unexpected order %+v", resp.Order)
	}
	if f.gw.last.Receipt != "booking_"+f.booking.ID.String() {
		t.Errorf("receipt = %q", f.gw.last.Receipt)
	}
	if !f.gw.last.AutoCapture {
		t.Error("expected auto capture")
	}
	if f.gw.last.Notes["booking_id"] != f.booking.ID.String() || f.gw.last.Notes["user_id"] != f.clientID.String() {
		t.Errorf("notes = %+v", f.gw.last.Notes)
	}

	if len(f.store.payments) != 1 {
		t.Fatalf("expected one payment record, got %d", len(f.store.payments))
	}
	p := f.store.payments[0]
	if p.Status != entity.PaymentStatusPending || p.TransactionID != "order_O1" || p.PaymentMethod != entity.PaymentMethodRazorpay {
		t.Fatalf("unexpected payment record %+v", p)
	}
	if utils.FormatAmount(p.Amount) != "500.00" {
		t.Fatalf("recorded amount = %s", p.Amount)
	}
}

func TestCreateOrderForbiddenRegardlessOfAmount(t *testing.T) {
	f := newPaymentFixture(t)
	stranger := uuid.New()

	for _, amount := range []float64{500, -3, 0.001, 1e9} {
		_, err := f.svc.CreateOrder(context.Background(), stranger, &request.CreateOrderRequest{
			BookingID: f.booking.ID.String(),
			Amount:    amount,
		})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("amount %v: expected ErrForbidden, got %v", amount, err)
		}
		if Message(err, "") != "Unauthorized to make payment for this booking" {
			t.Errorf("amount %v: message = %q", amount, Message(err, ""))
		}
	}

	if f.gw.calls != 0 {
		t.Fatalf("gateway called %d times for a stranger", f.gw.calls)
	}
}

func TestCreateOrderMissingAmountFailsBeforeOwnership(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), uuid.New(), &request.CreateOrderRequest{
		BookingID: f.booking.ID.String(),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, ok := Fields(err)["amount"]; !ok {
		t.Fatalf("expected an amount field error, got %v", Fields(err))
	}
}

func TestCreateOrderErrors(t *testing.T) {
	tests := []struct {
		name   string
		caller func(f *paymentFixture) uuid.UUID
		req    func(f *paymentFixture) *request.CreateOrderRequest
		want   error
	}{
		{
			name:   "anonymous",
			caller: func(*paymentFixture) uuid.UUID { return uuid.Nil },
			req: func(f *paymentFixture) *request.CreateOrderRequest {
				return &request.CreateOrderRequest{BookingID: f.booking.ID.String(), Amount: 500}
			},
			want: ErrUnauthenticated,
		},
		{
			name:   "missing amount",
			caller: func(f *paymentFixture) uuid.UUID { return f.clientID },
			req: func(f *paymentFixture) *request.CreateOrderRequest {
				return &request.CreateOrderRequest{BookingID: f.booking.ID.String()}
			},
			want: ErrValidation,
		},
		{
			name:   "missing booking",
			caller: func(f *paymentFixture) uuid.UUID { return f.clientID },
			req: func(*paymentFixture) *request.CreateOrderRequest {
				return &request.CreateOrderRequest{BookingID: uuid.NewString(), Amount: 500}
			},
			want: ErrNotFound,
		},
		{
			name:   "negative amount",
			caller: func(f *paymentFixture) uuid.UUID { return f.clientID },
			req: func(f *paymentFixture) *request.CreateOrderRequest {
				return &request.CreateOrderRequest{BookingID: f.booking.ID.String(), Amount: -500}
			},
			want: ErrValidation,
		},
		{
			name:   "amount differs from booking total",
			caller: func(f *paymentFixture) uuid.UUID { return f.clientID },
			req: func(f *paymentFixture) *request.CreateOrderRequest {
				return &request.CreateOrderRequest{BookingID: f.booking.ID.String(), Amount: 499.99}
			},
			want: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t)
			_, err := f.svc.CreateOrder(context.Background(), tt.caller(f), tt.req(f))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if f.gw.calls != 0 {
				t.Fatalf("gateway should not be called")
			}
		})
	}
}

func TestCreateOrderRejectsTerminalBooking(t *testing.T) {
	f := newPaymentFixture(t)
	f.store.bookings[f.booking.ID].Status = entity.BookingStatusCancelled

	_, err := f.svc.CreateOrder(context.Background(), f.clientID, &request.CreateOrderRequest{
		BookingID: f.booking.ID.String(),
		Amount:    500,
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCreateOrderGatewayFailurePersistsNothing(t *testing.T) {
	f := newPaymentFixture(t)
	f.gw.createOrder = func(context.Context, gateway.CreateOrderRequest) (*gateway.Order, error) {
		return nil, &gateway.APIError{StatusCode: 502}
	}

	_, err := f.svc.CreateOrder(context.Background(), f.clientID, &request.CreateOrderRequest{
		BookingID: f.booking.ID.String(),
		Amount:    500,
	})
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
	if len(f.store.payments) != 0 {
		t.Fatalf("expected no payment records, got %d", len(f.store.payments))
	}
}

func TestCreateOrderWithoutGatewayKeys(t *testing.T) {
	f := newPaymentFixture(t)
	f.svc = NewPaymentService(f.store.repository(), utils.GatewayConfig{Currency: "INR"}, f.gw, nil, nil, zap.NewNop())

	_, err := f.svc.CreateOrder(context.Background(), f.clientID, &request.CreateOrderRequest{
		BookingID: f.booking.ID.String(),
		Amount:    500,
	})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestCreateOrderSurvivesRecordInsertFailure(t *testing.T) {
	f := newPaymentFixture(t)
	f.store.paymentCreateErr = errors.New("db down")

	resp, err := f.svc.CreateOrder(context.Background(), f.clientID, &request.CreateOrderRequest{
		BookingID: f.booking.ID.String(),
		Amount:    500,
	})
	if err != nil {
		t.Fatalf("insert failure should not fail the request: %v", err)
	}
	if resp.Order.ID != "order_O1" {
		t.Fatalf("unexpected order %+v", resp.Order)
	}
}

func TestVerifyPaymentSettlesBooking(t *testing.T) {
	f := newPaymentFixture(t)
	orderID := f.createOrder(t)

	resp, err := f.svc.VerifyPayment(context.Background(), f.clientID, f.verifyRequest(orderID, "pay_123"))
	if err != nil {
		t.Fatalf("VerifyPayment returned error: %v", err)
	}
	if !resp.Success || resp.Message != MsgPaymentVerified {
		t.Fatalf("unexpected response %+v", resp)
	}

	if got := f.store.bookingStatus(f.booking.ID); got != entity.BookingStatusInProgress {
		t.Fatalf("booking status = %s, want in_progress", got)
	}

	p := f.store.payments[0]
	if p.Status != entity.PaymentStatusCompleted || p.TransactionID != "pay_123" {
		t.Fatalf("unexpected payment record %+v", p)
	}

	notes := f.store.notificationsFor(f.laborerID)
	if len(notes) != 1 {
		t.Fatalf("expected one notification for the laborer, got %d", len(notes))
	}
	want := `Payment of ₹500.00 has been received for booking "Fix kitchen sink"`
	if notes[0].Message != want || notes[0].Type != entity.NotificationTypePayment || notes[0].IsRead {
		t.Fatalf("unexpected notification %+v", notes[0])
	}
	if len(f.store.notificationsFor(f.clientID)) != 0 {
		t.Fatal("client should not be notified of their own payment")
	}

	if len(f.events.events) != 1 || f.events.events[0].key != mq.RoutingPaymentCompleted {
		t.Fatalf("unexpected events %+v", f.events.events)
	}
}

func TestVerifyPaymentRejectsAlteredSignature(t *testing.T) {
	f := newPaymentFixture(t)
	orderID := f.createOrder(t)

	req := f.verifyRequest(orderID, "pay_123")
	last := req.RazorpaySignature[len(req.RazorpaySignature)-1]
	swap := byte('0')
	if last == '0' {
		swap = '1'
	}
	req.RazorpaySignature = req.RazorpaySignature[:len(req.RazorpaySignature)-1] + string(swap)

	_, err := f.svc.VerifyPayment(context.Background(), f.clientID, req)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if Message(err, "") != "Invalid payment signature" {
		t.Fatalf("message = %q", Message(err, ""))
	}

	if got := f.store.bookingStatus(f.booking.ID); got != entity.BookingStatusAccepted {
		t.Fatalf("booking status changed to %s", got)
	}
	if f.store.payments[0].Status != entity.PaymentStatusPending {
		t.Fatal("payment record changed")
	}
	if len(f.store.notifications) != 0 {
		t.Fatal("notification created for a forged payment")
	}
}

func TestVerifyPaymentWithoutPendingRecord(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.VerifyPayment(context.Background(), f.clientID, f.verifyRequest("order_unknown", "pay_123"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := f.store.bookingStatus(f.booking.ID); got != entity.BookingStatusAccepted {
		t.Fatalf("booking status changed to %s", got)
	}
}

func TestVerifyPaymentReplayIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	orderID := f.createOrder(t)
	req := f.verifyRequest(orderID, "pay_123")

	if _, err := f.svc.VerifyPayment(context.Background(), f.clientID, req); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	resp, err := f.svc.VerifyPayment(context.Background(), f.clientID, req)
	if err != nil {
		t.Fatalf("replayed verify: %v", err)
	}
	if !resp.Success || resp.Message != MsgPaymentAlreadyVerified {
		t.Fatalf("unexpected replay response %+v", resp)
	}

	if n := len(f.store.notificationsFor(f.laborerID)); n != 1 {
		t.Fatalf("expected exactly one notification, got %d", n)
	}
	if len(f.events.events) != 1 {
		t.Fatalf("replay published another event")
	}
}

func TestVerifyPaymentAmountMustMatchOrder(t *testing.T) {
	f := newPaymentFixture(t)
	orderID := f.createOrder(t)

	req := f.verifyRequest(orderID, "pay_123")
	claimed := 1.00
	req.Amount = &claimed

	_, err := f.svc.VerifyPayment(context.Background(), f.clientID, req)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	matching := 500.0
	req.Amount = &matching
	if _, err := f.svc.VerifyPayment(context.Background(), f.clientID, req); err != nil {
		t.Fatalf("matching amount rejected: %v", err)
	}
}

func TestVerifyPaymentByNonClient(t *testing.T) {
	f := newPaymentFixture(t)
	orderID := f.createOrder(t)

	_, err := f.svc.VerifyPayment(context.Background(), f.laborerID, f.verifyRequest(orderID, "pay_123"))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if Message(err, "") != "Unauthorized to verify payment for this booking" {
		t.Fatalf("message = %q", Message(err, ""))
	}
}

func TestVerifyPaymentStoreFailure(t *testing.T) {
	f := newPaymentFixture(t)
	orderID := f.createOrder(t)
	f.store.settleErr = errors.New("tx aborted")

	_, err := f.svc.VerifyPayment(context.Background(), f.clientID, f.verifyRequest(orderID, "pay_123"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if Message(err, "") != "Error updating payment record" {
		t.Fatalf("message = %q", Message(err, ""))
	}
	if got := f.store.bookingStatus(f.booking.ID); got != entity.BookingStatusAccepted {
		t.Fatalf("booking status changed to %s", got)
	}
}

func TestVerifyPaymentWhileLocked(t *testing.T) {
	f := newPaymentFixture(t)
	orderID := f.createOrder(t)

	var lockedKey string
	f.svc = NewPaymentService(
		f.store.repository(),
		utils.GatewayConfig{KeyID: "rzp_test_key", KeySecret: testSecret, Currency: "INR"},
		f.gw,
		fakeLocker{acquire: func(_ context.Context, key string) (func(), error) {
			lockedKey = key
			return func() {}, lock.ErrLocked
		}},
		nil,
		zap.NewNop(),
	)

	_, err := f.svc.VerifyPayment(context.Background(), f.clientID, f.verifyRequest(orderID, "pay_123"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !strings.HasSuffix(lockedKey, f.booking.ID.String()) {
		t.Fatalf("lock key %q is not per booking", lockedKey)
	}
	if f.store.payments[0].Status != entity.PaymentStatusPending {
		t.Fatal("payment settled without the lock")
	}
}

func TestGetPublicConfig(t *testing.T) {
	f := newPaymentFixture(t)

	cfg, err := f.svc.GetPublicConfig(context.Background(), f.clientID)
	if err != nil {
		t.Fatalf("GetPublicConfig returned error: %v", err)
	}
	if cfg.PublicKey != "rzp_test_key" {
		t.Fatalf("public key = %q", cfg.PublicKey)
	}

	svc := NewPaymentService(f.store.repository(), utils.GatewayConfig{}, f.gw, nil, nil, zap.NewNop())
	if _, err := svc.GetPublicConfig(context.Background(), f.clientID); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if _, err := svc.GetPublicConfig(context.Background(), uuid.Nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
