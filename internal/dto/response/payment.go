package response

import (
	"time"

	"labor-market/internal/data/entity"

	"github.com/shopspring/decimal"
)

// OrderResponse mirrors the gateway order; Amount is in minor units.
type OrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type CreateOrderResponse struct {
	Order OrderResponse `json:"order"`
}

type PaymentConfigResponse struct {
	PublicKey string `json:"public_key"`
}

type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ProcessCardPaymentResponse struct {
	Success         bool   `json:"success"`
	PaymentIntentID string `json:"payment_intent_id"`
	Status          string `json:"status"`
}

type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     string               `json:"booking_id"`
	Amount        decimal.Decimal      `json:"amount"`
	TransactionID string               `json:"transaction_id"`
	PaymentMethod string               `json:"payment_method"`
	Status        entity.PaymentStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		BookingID:     p.BookingID.String(),
		Amount:        p.Amount,
		TransactionID: p.TransactionID,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
