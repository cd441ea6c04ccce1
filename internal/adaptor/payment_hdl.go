package adaptor

import (
	"encoding/json"
	"net/http"

	"labor-market/internal/dto/request"
	"labor-market/internal/usecase"
	"labor-market/pkg/utils"

	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// CreateOrder handles POST /api/payments/create-order
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	var req request.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create payment order")
		return
	}

	utils.ResponseSuccess(w, "Payment order created", order)
}

// GetConfig handles GET /api/payments/config
func (h *PaymentHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	cfg, err := h.service.GetPublicConfig(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get payment config")
		return
	}

	utils.ResponseSuccess(w, "success", cfg)
}

// VerifyPayment handles POST /api/payments/verify
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	var req request.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.VerifyPayment(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "verify payment")
		return
	}

	utils.ResponseSuccess(w, resp.Message, resp)
}
