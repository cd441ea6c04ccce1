package wire

import (
	"net/http"

	"labor-market/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, auth func(http.Handler) http.Handler) {
	r.With(auth).Get("/api/bookings/{id}", bookingHandler.GetBookingByID)
}
