package request

type CreateOrderRequest struct {
	BookingID string  `json:"booking_id" validate:"required,uuid"`
	Amount    float64 `json:"amount" validate:"required"`
}

// VerifyPaymentRequest carries the triple the checkout widget hands back after
// a successful payment. Amount is optional; when present it must match the order.
type VerifyPaymentRequest struct {
	BookingID         string   `json:"booking_id" validate:"required,uuid"`
	Amount            *float64 `json:"amount,omitempty"`
	RazorpayOrderID   string   `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string   `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string   `json:"razorpay_signature" validate:"required"`
}

// ProcessCardPaymentRequest charges a saved card payment method directly.
type ProcessCardPaymentRequest struct {
	PaymentMethodID string  `json:"payment_method_id" validate:"required"`
	BookingID       string  `json:"booking_id" validate:"required,uuid"`
	Amount          float64 `json:"amount" validate:"required"`
}
