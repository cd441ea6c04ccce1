package wire

import (
	"context"
	"net/http"
	"time"

	"labor-market/internal/adaptor"
	"labor-market/internal/data/repository"
	"labor-market/internal/usecase"
	"labor-market/pkg/database"
	"labor-market/pkg/middleware"
	"labor-market/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

func Wiring(db database.PgxIface, repo *repository.Repository, config *utils.Config, deps usecase.Deps, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, deps, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(db, handler, repo, logger),
	}
}

func setupRouter(db database.PgxIface, handler *adaptor.Handler, repo *repository.Repository, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	auth := middleware.AuthSession(repo.Session, repo.User, logger)

	wireAuth(r, handler.Auth, auth)
	wirePayment(r, handler.Payment, handler.CardPayment, auth)
	wireTracking(r, handler.Tracking, auth, logger)
	wireBooking(r, handler.Booking, auth)
	wireNotification(r, handler.Notification, auth)

	r.Get("/health", healthCheck(db))

	return r
}

func healthCheck(db database.PgxIface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "database unavailable", nil, nil)
				return
			}
		}
		utils.ResponseSuccess(w, "OK", nil)
	}
}
