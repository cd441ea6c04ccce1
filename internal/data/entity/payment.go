package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodCard     = "card"
)

// Payment is one checkout attempt. TransactionID holds the gateway order id
// while pending and the gateway payment id once completed.
type Payment struct {
	Base
	BookingID     uuid.UUID       `db:"booking_id"`
	Amount        decimal.Decimal `db:"amount"`
	TransactionID string          `db:"transaction_id"`
	PaymentMethod string          `db:"payment_method"`
	Status        PaymentStatus   `db:"status"`
}
