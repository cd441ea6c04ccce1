package wire

import (
	"net/http"

	"labor-market/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler, cardHandler *adaptor.CardPaymentHandler, auth func(http.Handler) http.Handler) {
	r.Route("/api/payments", func(r chi.Router) {
		r.Use(auth)

		r.Get("/config", paymentHandler.GetConfig)
		r.Post("/create-order", paymentHandler.CreateOrder)
		r.Post("/verify", paymentHandler.VerifyPayment)
		r.Post("/process", cardHandler.Process)
	})
}
