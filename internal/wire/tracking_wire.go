package wire

import (
	"net/http"

	"labor-market/internal/adaptor"
	"labor-market/internal/data/entity"
	"labor-market/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTracking(r chi.Router, trackingHandler *adaptor.TrackingHandler, auth func(http.Handler) http.Handler, log *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(middleware.RequireRole(log, entity.RoleLaborer))

		r.Post("/api/tracking/update", trackingHandler.UpdateTracking)
	})
}
