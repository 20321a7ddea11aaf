package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"novadrive/internal/auth"
	"novadrive/internal/logger"
)

type Handlers struct {
	Vehicles  *VehicleHandler
	Bookings  *UserBookingHandler
	Stripe    *StripeWebhookHandler
	Admin     *AdminHandler
	AdminAuth *AdminAuthHandler
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
		logger.Info("http request",
			zap.String("method", p.Request.Method),
			zap.String("path", p.URL.Path),
			zap.Int("status", p.StatusCode),
			zap.Int("size", p.Size),
			zap.Duration("duration", time.Since(p.TimeStamp)),
		)
	})
}

func NewRouter(h Handlers, jwtSecret string) *mux.Router {
	r := mux.NewRouter()
	r.Use(accessLog)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	// Public endpoints
	r.HandleFunc("/api/vehicles", h.Vehicles.ListVehicles).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles/{id}", h.Vehicles.GetVehicle).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles/{id}/quote", h.Vehicles.Quote).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles/{id}/booked-dates", h.Vehicles.BookedDates).Methods(http.MethodGet)
	r.HandleFunc("/api/duration-options", h.Vehicles.DurationOptions).Methods(http.MethodGet)

	r.HandleFunc("/api/bookings", h.Bookings.CreateBooking).Methods(http.MethodPost)
	r.HandleFunc("/api/bookings", h.Bookings.ListBookings).Methods(http.MethodGet)
	r.HandleFunc("/api/bookings/session", h.Bookings.GetBookingBySession).Methods(http.MethodGet)
	r.HandleFunc("/api/bookings/{code}/lookup", h.Bookings.GetBooking).Methods(http.MethodPost)
	r.HandleFunc("/api/bookings/{code}/cancel", h.Bookings.CancelBooking).Methods(http.MethodPost)

	r.HandleFunc("/api/stripe/webhook", h.Stripe.HandleWebhook).Methods(http.MethodPost)
	r.HandleFunc("/admin/login", h.AdminAuth.Login).Methods(http.MethodPost)

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(jwtSecret))
	admin.HandleFunc("/bookings", h.Admin.ListBookings).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{id}", h.Admin.DeleteBooking).Methods(http.MethodDelete)
	admin.HandleFunc("/vehicles/{id}/calendar", h.Admin.Calendar).Methods(http.MethodGet)
	admin.HandleFunc("/vehicles/{id}/rates", h.Admin.UpdateRates).Methods(http.MethodPut)
	admin.HandleFunc("/users", h.AdminAuth.CreateUserAdmin).Methods(http.MethodPost)

	return r
}
