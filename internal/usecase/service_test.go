package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"labor-market/internal/data/entity"
	"labor-market/internal/dto/request"
	"labor-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestGetBookingByIDOnlyForParties(t *testing.T) {
	store := newMemStore()
	clientID, laborerID := uuid.New(), uuid.New()
	booking := store.addBooking(clientID, laborerID, "300", entity.BookingStatusAccepted)
	store.payments = append(store.payments, &entity.Payment{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: time.Now()},
		BookingID:     booking.ID,
		TransactionID: "order_O1",
		Status:        entity.PaymentStatusPending,
	})

	svc := NewBookingService(store.repository(), zap.NewNop())

	for _, caller := range []uuid.UUID{clientID, laborerID} {
		resp, err := svc.GetBookingByID(context.Background(), caller, booking.ID.String())
		if err != nil {
			t.Fatalf("GetBookingByID returned error: %v", err)
		}
		if resp.Payment == nil || resp.Payment.TransactionID != "order_O1" {
			t.Fatalf("expected latest payment, got %+v", resp.Payment)
		}
		if resp.Tracking != nil {
			t.Fatalf("unexpected tracking %+v", resp.Tracking)
		}
	}

	_, err := svc.GetBookingByID(context.Background(), uuid.New(), booking.ID.String())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, err = svc.GetBookingByID(context.Background(), clientID, "not-a-uuid")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNotificationsArePrivate(t *testing.T) {
	store := newMemStore()
	owner, other := uuid.New(), uuid.New()
	repo := store.repository()

	for i := 0; i < 3; i++ {
		_ = repo.Notification.Create(context.Background(), &entity.Notification{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now().Add(time.Duration(i) * time.Second)},
			UserID:     owner,
			Type:       entity.NotificationTypePayment,
			Title:      "Payment Received",
		})
	}

	svc := NewNotificationService(repo.Notification, zap.NewNop())

	page, err := svc.GetUserNotifications(context.Background(), owner, &request.PaginatedRequest{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("GetUserNotifications returned error: %v", err)
	}
	if len(page.Data) != 2 || page.Pagination.Total != 3 || page.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected page %+v", page.Pagination)
	}
	if !page.Data[0].CreatedAt.After(page.Data[1].CreatedAt) {
		t.Fatal("expected newest first")
	}

	id := store.notifications[0].ID.String()
	if err := svc.MarkAsRead(context.Background(), other, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
	if err := svc.MarkAsRead(context.Background(), owner, id); err != nil {
		t.Fatalf("MarkAsRead returned error: %v", err)
	}
	if !store.notifications[0].IsRead {
		t.Fatal("notification not marked read")
	}
}

func TestLoginAndLogout(t *testing.T) {
	store := newMemStore()
	hash, err := utils.HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	user := &entity.User{
		Base:         entity.Base{ID: uuid.New()},
		Email:        "client@example.com",
		PasswordHash: hash,
		Role:         entity.RoleClient,
		IsActive:     true,
	}
	store.users[user.Email] = user

	svc := NewAuthService(store.repository(), &utils.Config{Session: utils.SessionConfig{ExpiryHours: 2}}, zap.NewNop())

	_, err = svc.Login(context.Background(), &request.LoginRequest{Email: user.Email, Password: "wrong-pass"}, ClientInfo{})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	resp, err := svc.Login(context.Background(), &request.LoginRequest{Email: user.Email, Password: "hunter22"}, ClientInfo{UserAgent: "go-test"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.User.ID != user.ID.String() || resp.User.Role != entity.RoleClient {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if time.Until(resp.ExpiresAt) > 2*time.Hour || time.Until(resp.ExpiresAt) < time.Hour {
		t.Fatalf("unexpected expiry %s", resp.ExpiresAt)
	}

	if err := svc.Logout(context.Background(), resp.Token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if err := svc.Logout(context.Background(), resp.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("second logout: expected ErrUnauthenticated, got %v", err)
	}
}
