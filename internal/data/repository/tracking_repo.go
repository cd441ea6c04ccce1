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

// ErrStatusChanged means the booking left the expected status before the
// report was written.
var ErrStatusChanged = errors.New("booking status changed concurrently")

type TrackingRepository interface {
	Upsert(ctx context.Context, tracking *entity.Tracking) error
	// Report moves the booking from `from` to tracking.Status and upserts the
	// tracking row in one transaction. Nothing is written on error.
	Report(ctx context.Context, tracking *entity.Tracking, from entity.BookingStatus) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Tracking, error)
}

type trackingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTrackingRepository(db database.PgxIface, log *zap.Logger) TrackingRepository {
	return &trackingRepository{
		db:  db,
		log: log.With(zap.String("repository", "tracking")),
	}
}

const upsertTrackingQuery = `
	INSERT INTO tracking (id, booking_id, laborer_id, latitude, longitude, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (booking_id) DO UPDATE
	SET laborer_id = EXCLUDED.laborer_id,
	    latitude = EXCLUDED.latitude,
	    longitude = EXCLUDED.longitude,
	    status = EXCLUDED.status,
	    updated_at = EXCLUDED.updated_at
`

func upsertTrackingArgs(t *entity.Tracking) []any {
	return []any{t.ID, t.BookingID, t.LaborerID, t.Latitude, t.Longitude, t.Status, t.CreatedAt, t.UpdatedAt}
}

func (r *trackingRepository) Upsert(ctx context.Context, t *entity.Tracking) error {
	_, err := r.db.Exec(ctx, upsertTrackingQuery, upsertTrackingArgs(t)...)
	if err != nil {
		r.log.Error("Failed to upsert tracking",
			zap.Error(err),
			zap.String("booking_id", t.BookingID.String()),
		)
		return fmt.Errorf("upsert tracking for booking %s: %w", t.BookingID.String(), err)
	}

	return nil
}

func (r *trackingRepository) Report(ctx context.Context, t *entity.Tracking, from entity.BookingStatus) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx,
			`UPDATE bookings SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
			t.BookingID, from, t.Status)
		if err != nil {
			return fmt.Errorf("update booking %s status %s -> %s: %w", t.BookingID.String(), from, t.Status, err)
		}
		if result.RowsAffected() == 0 {
			return ErrStatusChanged
		}

		if _, err := tx.Exec(ctx, upsertTrackingQuery, upsertTrackingArgs(t)...); err != nil {
			return fmt.Errorf("upsert tracking for booking %s: %w", t.BookingID.String(), err)
		}
		return nil
	})

	if err != nil && !errors.Is(err, ErrStatusChanged) {
		r.log.Error("Failed to record status report",
			zap.Error(err),
			zap.String("booking_id", t.BookingID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(t.Status)),
		)
	}
	return err
}

func (r *trackingRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Tracking, error) {
	query := `
		SELECT id, booking_id, laborer_id, latitude, longitude, status, created_at, updated_at
		FROM tracking
		WHERE booking_id = $1
	`

	var t entity.Tracking
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&t.ID,
		&t.BookingID,
		&t.LaborerID,
		&t.Latitude,
		&t.Longitude,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find tracking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find tracking for booking %s: %w", bookingID.String(), err)
	}

	return &t, nil
}
