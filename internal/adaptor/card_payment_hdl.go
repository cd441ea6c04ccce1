package adaptor

import (
	"encoding/json"
	"net/http"

	"labor-market/internal/dto/request"
	"labor-market/internal/usecase"
	"labor-market/pkg/utils"

	"go.uber.org/zap"
)

type CardPaymentHandler struct {
	service usecase.CardPaymentService
	log     *zap.Logger
}

func NewCardPaymentHandler(service usecase.CardPaymentService, log *zap.Logger) *CardPaymentHandler {
	return &CardPaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "card_payment")),
	}
}

// Process handles POST /api/payments/process
func (h *CardPaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	var req request.ProcessCardPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.ProcessCardPayment(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "process card payment")
		return
	}

	utils.ResponseSuccess(w, "Payment processed", resp)
}
