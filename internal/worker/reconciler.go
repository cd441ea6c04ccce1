// Package worker holds background jobs that run beside the HTTP server.
package worker

import (
	"context"
	"fmt"
	"time"

	"labor-market/internal/data/entity"
	"labor-market/internal/data/repository"
	"labor-market/pkg/gateway"
	"labor-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderLister interface {
	ListOrders(ctx context.Context, from, to time.Time) ([]gateway.Order, error)
}

// Reconciler backfills pending payment records for gateway orders whose local
// insert was lost after the order had been created.
type Reconciler struct {
	orders   OrderLister
	repo     *repository.Repository
	interval time.Duration
	lookback time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewReconciler(orders OrderLister, repo *repository.Repository, config utils.ReconcileConfig, log *zap.Logger) *Reconciler {
	lookback := config.Lookback
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}

	return &Reconciler{
		orders:   orders,
		repo:     repo,
		interval: config.Interval,
		lookback: lookback,
		now:      time.Now,
		log:      log.With(zap.String("worker", "reconciler")),
	}
}

// Run blocks until ctx is cancelled. A zero interval disables the worker.
func (w *Reconciler) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info("Order reconciliation disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("Order reconciliation started",
		zap.Duration("interval", w.interval),
		zap.Duration("lookback", w.lookback),
	)

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.log.Error("Order reconciliation failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.log.Info("Order reconciliation stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce reconciles a single window and returns how many records it restored.
func (w *Reconciler) RunOnce(ctx context.Context) (int, error) {
	to := w.now()
	orders, err := w.orders.ListOrders(ctx, to.Add(-w.lookback), to)
	if err != nil {
		return 0, fmt.Errorf("list gateway orders: %w", err)
	}

	restored := 0
	for _, order := range orders {
		ok, err := w.reconcile(ctx, order)
		if err != nil {
			// keep going, the next tick retries this order
			w.log.Warn("Failed to reconcile order", zap.Error(err), zap.String("order_id", order.ID))
			continue
		}
		if ok {
			restored++
		}
	}

	if restored > 0 {
		w.log.Info("Restored missing payment records",
			zap.Int("restored", restored),
			zap.Int("scanned", len(orders)),
		)
	}
	return restored, nil
}

func (w *Reconciler) reconcile(ctx context.Context, order gateway.Order) (bool, error) {
	bookingID, err := uuid.Parse(order.Notes["booking_id"])
	if err != nil {
		return false, nil
	}

	exists, err := w.repo.Payment.ExistsByTransactionID(ctx, order.ID)
	if err != nil || exists {
		return false, err
	}

	booking, err := w.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if booking == nil || !booking.Status.Payable() {
		return false, nil
	}

	// a completed payment rewrites transaction_id to the payment id, so the
	// order id lookup above cannot see it
	latest, err := w.repo.Payment.FindLatestByBookingID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if latest != nil && latest.Status == entity.PaymentStatusCompleted {
		return false, nil
	}

	now := w.now()
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:     bookingID,
		Amount:        utils.FromMinorUnits(order.Amount),
		TransactionID: order.ID,
		PaymentMethod: entity.PaymentMethodRazorpay,
		Status:        entity.PaymentStatusPending,
	}
	if err := w.repo.Payment.Create(ctx, payment); err != nil {
		return false, err
	}

	w.log.Info("Restored pending payment record",
		zap.String("order_id", order.ID),
		zap.String("booking_id", bookingID.String()),
	)
	return true, nil
}
