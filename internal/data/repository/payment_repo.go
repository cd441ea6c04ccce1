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

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByBookingAndTransaction(ctx context.Context, bookingID uuid.UUID, transactionID string) (*entity.Payment, error)
	FindLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, booking_id, amount, transaction_id, payment_method, status, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var payment entity.Payment
	err := row.Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.TransactionID,
		&payment.PaymentMethod,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, amount, transaction_id, payment_method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.Amount,
		payment.TransactionID,
		payment.PaymentMethod,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("booking_id", payment.BookingID.String()),
			zap.String("transaction_id", payment.TransactionID),
		)
		return fmt.Errorf("create payment for booking %s: %w", payment.BookingID.String(), err)
	}

	return nil
}

func (r *paymentRepository) FindByBookingAndTransaction(ctx context.Context, bookingID uuid.UUID, transactionID string) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1 AND transaction_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, bookingID, transactionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by transaction",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("transaction_id", transactionID),
		)
		return nil, fmt.Errorf("find payment %s for booking %s: %w", transactionID, bookingID.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) FindLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find payment by booking ID %s: %w", bookingID.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE transaction_id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, transactionID).Scan(&exists); err != nil {
		r.log.Error("Failed to check payment existence",
			zap.Error(err),
			zap.String("transaction_id", transactionID),
		)
		return false, fmt.Errorf("check payment %s: %w", transactionID, err)
	}

	return exists, nil
}
