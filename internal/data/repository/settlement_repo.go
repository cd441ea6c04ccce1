package repository

import (
	"context"
	"errors"
	"fmt"

	"labor-market/internal/data/entity"
	"labor-market/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	// ErrAlreadySettled means no pending record matched; another verify won.
	ErrAlreadySettled = errors.New("payment already settled")
	// ErrBookingNotPayable means the booking reached a terminal status first.
	ErrBookingNotPayable = errors.New("booking no longer accepts payment")
)

type Settlement struct {
	BookingID    uuid.UUID
	OrderID      string
	PaymentID    string
	Notification *entity.Notification
}

// ChargeSettlement records a card charge the gateway already captured.
type ChargeSettlement struct {
	Payment      *entity.Payment
	Notification *entity.Notification
}

type SettlementRepository interface {
	// Settle completes the pending payment, moves the booking to in_progress and
	// records the notification in one transaction. Nothing is written on error.
	Settle(ctx context.Context, s Settlement) error
	// RecordCharge inserts the completed payment, moves the booking to
	// in_progress and records the notification in one transaction.
	RecordCharge(ctx context.Context, c ChargeSettlement) error
}

type settlementRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSettlementRepository(db database.PgxIface, log *zap.Logger) SettlementRepository {
	return &settlementRepository{
		db:  db,
		log: log.With(zap.String("repository", "settlement")),
	}
}

func (r *settlementRepository) Settle(ctx context.Context, s Settlement) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE payments
			SET transaction_id = $3, status = 'completed', updated_at = NOW()
			WHERE booking_id = $1 AND transaction_id = $2 AND status = 'pending'
		`, s.BookingID, s.OrderID, s.PaymentID)
		if err != nil {
			return fmt.Errorf("complete payment %s: %w", s.OrderID, err)
		}
		if result.RowsAffected() == 0 {
			return ErrAlreadySettled
		}

		return startBooking(ctx, tx, s.BookingID, s.Notification)
	})

	if err != nil && !errors.Is(err, ErrAlreadySettled) {
		r.log.Error("Failed to settle payment",
			zap.Error(err),
			zap.String("booking_id", s.BookingID.String()),
			zap.String("order_id", s.OrderID),
			zap.String("payment_id", s.PaymentID),
		)
	}
	return err
}

func (r *settlementRepository) RecordCharge(ctx context.Context, c ChargeSettlement) error {
	p := c.Payment
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO payments (id, booking_id, amount, transaction_id, payment_method, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, p.ID, p.BookingID, p.Amount, p.TransactionID, p.PaymentMethod, p.Status, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create payment %s: %w", p.TransactionID, err)
		}

		return startBooking(ctx, tx, p.BookingID, c.Notification)
	})

	if err != nil {
		r.log.Error("Failed to record card charge",
			zap.Error(err),
			zap.String("booking_id", p.BookingID.String()),
			zap.String("transaction_id", p.TransactionID),
		)
	}
	return err
}

// startBooking moves a payable booking to in_progress and stores the
// payee's notification inside tx.
func startBooking(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, n *entity.Notification) error {
	result, err := tx.Exec(ctx, `
		UPDATE bookings
		SET status = 'in_progress', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'accepted', 'in_progress')
	`, bookingID)
	if err != nil {
		return fmt.Errorf("start booking %s: %w", bookingID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return ErrBookingNotPayable
	}

	if n == nil {
		return nil
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.UserID, n.Type, n.Title, n.Message, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification for user %s: %w", n.UserID.String(), err)
	}
	return nil
}
