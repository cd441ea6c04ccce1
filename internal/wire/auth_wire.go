package wire

import (
	"net/http"

	"labor-market/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, auth func(http.Handler) http.Handler) {
	r.Post("/api/login", authHandler.Login)
	r.With(auth).Post("/api/logout", authHandler.Logout)
}
