package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"novadrive/internal/entities"
	apperrors "novadrive/internal/errors"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req entities.BookingRequest) (*entities.CheckoutResponse, error)
	GetBooking(ctx context.Context, code, email string) (*entities.BookingResponse, error)
	GetBookingBySession(ctx context.Context, sessionID string) (*entities.BookingResponse, error)
	ListCustomerBookings(ctx context.Context, email string) ([]entities.BookingResponse, error)
	CancelBooking(ctx context.Context, code, email string) error
}

type UserBookingHandler struct {
	Service BookingService
}

func NewUserBookingHandler(svc BookingService) *UserBookingHandler {
	return &UserBookingHandler{Service: svc}
}

func (h *UserBookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.Service.CreateBooking(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListBookings handles GET /api/bookings?email=.
func (h *UserBookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Service.ListCustomerBookings(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *UserBookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req BookingLookupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	booking, err := h.Service.GetBooking(r.Context(), code, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *UserBookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req BookingLookupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Service.CancelBooking(r.Context(), code, req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Booking cancelled"})
}

// GetBookingBySession is polled by the checkout confirmation page.
func (h *UserBookingHandler) GetBookingBySession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, r, apperrors.ErrBadRequest("session_id required"))
		return
	}
	booking, err := h.Service.GetBookingBySession(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
