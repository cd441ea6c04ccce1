package adaptor

import (
	"encoding/json"
	"net/http"

	"labor-market/internal/dto/request"
	"labor-market/internal/usecase"
	"labor-market/pkg/utils"

	"go.uber.org/zap"
)

type TrackingHandler struct {
	service usecase.TrackingService
	log     *zap.Logger
}

func NewTrackingHandler(service usecase.TrackingService, log *zap.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		log:     log.With(zap.String("handler", "tracking")),
	}
}

// UpdateTracking handles POST /api/tracking/update (laborer only)
func (h *TrackingHandler) UpdateTracking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	var req request.TrackingUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	tracking, err := h.service.UpdateTracking(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update tracking")
		return
	}

	utils.ResponseSuccess(w, "Tracking updated", tracking)
}
