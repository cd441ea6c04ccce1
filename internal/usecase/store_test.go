package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"labor-market/internal/data/entity"
	"labor-market/internal/data/repository"
	"labor-market/pkg/gateway"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore backs every repository interface with maps so service tests can
// assert on the resulting state.
type memStore struct {
	mu            sync.Mutex
	users         map[string]*entity.User
	sessions      map[uuid.UUID]*entity.Session
	bookings      map[uuid.UUID]*entity.Booking
	payments      []*entity.Payment
	notifications []*entity.Notification
	tracking      map[uuid.UUID]*entity.Tracking

	paymentCreateErr error
	settleErr        error
	staleStatus      bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*entity.User{},
		sessions: map[uuid.UUID]*entity.Session{},
		bookings: map[uuid.UUID]*entity.Booking{},
		tracking: map[uuid.UUID]*entity.Tracking{},
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:         memUsers{m},
		Session:      memSessions{m},
		Booking:      memBookings{m},
		Payment:      memPayments{m},
		Settlement:   memSettlement{m},
		Notification: memNotifications{m},
		Tracking:     memTracking{m},
	}
}

func (m *memStore) addBooking(clientID, laborerID uuid.UUID, total string, status entity.BookingStatus) *entity.Booking {
	b := &entity.Booking{
		Base:        entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Title:       "Fix kitchen sink",
		ClientID:    clientID,
		LaborerID:   laborerID,
		TotalAmount: decimal.RequireFromString(total),
		Status:      status,
	}
	m.mu.Lock()
	m.bookings[b.ID] = b
	m.mu.Unlock()
	return b
}

func (m *memStore) bookingStatus(id uuid.UUID) entity.BookingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id].Status
}

func (m *memStore) notificationsFor(userID uuid.UUID) []*entity.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type memUsers struct{ *memStore }

func (m memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

type memSessions struct{ *memStore }

func (m memSessions) Create(_ context.Context, s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m memSessions) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[token]
	if s == nil || !s.Valid(time.Now()) {
		return nil, nil
	}
	return s, nil
}

func (m memSessions) Revoke(_ context.Context, token uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[token]
	if s == nil || s.RevokedAt != nil {
		return repository.ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

type memBookings struct{ *memStore }

func (m memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

type memPayments struct{ *memStore }

func (m memPayments) Create(_ context.Context, p *entity.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paymentCreateErr != nil {
		return m.paymentCreateErr
	}
	cp := *p
	m.payments = append(m.payments, &cp)
	return nil
}

func (m memPayments) FindByBookingAndTransaction(_ context.Context, bookingID uuid.UUID, txnID string) (*entity.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.payments) - 1; i >= 0; i-- {
		if p := m.payments[i]; p.BookingID == bookingID && p.TransactionID == txnID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memPayments) FindLatestByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.payments) - 1; i >= 0; i-- {
		if p := m.payments[i]; p.BookingID == bookingID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memPayments) ExistsByTransactionID(_ context.Context, txnID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TransactionID == txnID {
			return true, nil
		}
	}
	return false, nil
}

// memSettlement applies the same conditional writes as the SQL version, all or nothing.
type memSettlement struct{ *memStore }

func (m memSettlement) Settle(_ context.Context, s repository.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settleErr != nil {
		return m.settleErr
	}

	var pending *entity.Payment
	for _, p := range m.payments {
		if p.BookingID == s.BookingID && p.TransactionID == s.OrderID && p.Status == entity.PaymentStatusPending {
			pending = p
		}
	}
	if pending == nil {
		return repository.ErrAlreadySettled
	}

	b := m.bookings[s.BookingID]
	if b == nil || b.Status.IsTerminal() {
		return repository.ErrBookingNotPayable
	}

	pending.TransactionID = s.PaymentID
	pending.Status = entity.PaymentStatusCompleted
	pending.UpdatedAt = time.Now()
	b.Status = entity.BookingStatusInProgress
	if s.Notification != nil {
		m.notifications = append(m.notifications, s.Notification)
	}
	return nil
}

func (m memSettlement) RecordCharge(_ context.Context, c repository.ChargeSettlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settleErr != nil {
		return m.settleErr
	}

	b := m.bookings[c.Payment.BookingID]
	if b == nil || b.Status.IsTerminal() {
		return repository.ErrBookingNotPayable
	}

	cp := *c.Payment
	m.payments = append(m.payments, &cp)
	b.Status = entity.BookingStatusInProgress
	if c.Notification != nil {
		m.notifications = append(m.notifications, c.Notification)
	}
	return nil
}

type memNotifications struct{ *memStore }

func (m memNotifications) Create(_ context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m memNotifications) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Notification, error) {
	m.mu.Lock()
	var own []*entity.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			own = append(own, n)
		}
	}
	m.mu.Unlock()

	sort.Slice(own, func(i, j int) bool { return own[i].CreatedAt.After(own[j].CreatedAt) })
	if offset >= len(own) {
		return nil, nil
	}
	return own[offset:min(offset+limit, len(own))], nil
}

func (m memNotifications) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(m.notificationsFor(userID))), nil
}

func (m memNotifications) MarkRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

type memTracking struct{ *memStore }

func (m memTracking) Upsert(_ context.Context, t *entity.Tracking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tracking[t.BookingID] = &cp
	return nil
}

func (m memTracking) Report(_ context.Context, t *entity.Tracking, from entity.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[t.BookingID]
	if !ok || b.Status != from || m.staleStatus {
		return repository.ErrStatusChanged
	}
	b.Status = t.Status
	cp := *t
	m.tracking[t.BookingID] = &cp
	return nil
}

func (m memTracking) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.Tracking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracking[bookingID], nil
}

type fakeGateway struct {
	calls       int
	last        gateway.CreateOrderRequest
	createOrder func(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error)
}

func (f *fakeGateway) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error) {
	f.calls++
	f.last = req
	if f.createOrder != nil {
		return f.createOrder(ctx, req)
	}
	return &gateway.Order{
		ID:       "order_O1",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

type fakeCharger struct {
	calls  int
	last   gateway.ChargeRequest
	charge func(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
}

func (f *fakeCharger) Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	f.calls++
	f.last = req
	if f.charge != nil {
		return f.charge(ctx, req)
	}
	return &gateway.Charge{ID: "pi_123", Status: "succeeded", Amount: req.Amount, Currency: "usd"}, nil
}

type publishedEvent struct {
	key string
	v   any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) PublishJSON(_ context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{key: key, v: v})
	return nil
}

type fakeLocker struct {
	acquire func(ctx context.Context, key string) (func(), error)
}

func (f fakeLocker) Acquire(ctx context.Context, key string) (func(), error) {
	return f.acquire(ctx, key)
}
