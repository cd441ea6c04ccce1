package usecase

import (
	"context"
	"time"

	"labor-market/pkg/mq"

	"go.uber.org/zap"
)

type PaymentCompletedEvent struct {
	BookingID  string    `json:"booking_id"`
	ClientID   string    `json:"client_id"`
	LaborerID  string    `json:"laborer_id"`
	OrderID    string    `json:"order_id,omitempty"`
	PaymentID  string    `json:"payment_id"`
	Amount     string    `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

type BookingStatusEvent struct {
	BookingID  string    `json:"booking_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publish is fire-and-forget: the database is the source of truth and a lost
// event is only logged.
func publish(ctx context.Context, p mq.Publisher, log *zap.Logger, key string, v any) {
	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := p.PublishJSON(ctx, key, v); err != nil {
		log.Warn("Failed to publish event", zap.Error(err), zap.String("routing_key", key))
	}
}
