package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"novadrive/internal/availability"
	"novadrive/internal/entities"
	apperrors "novadrive/internal/errors"
	"novadrive/internal/pricing"
)

type AdminService interface {
	ListBookings(ctx context.Context, f entities.BookingFilter) (*entities.BookingsList, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	UpdateRateCard(ctx context.Context, vehicleID uuid.UUID, card pricing.RateCard) error
}

type AdminHandler struct {
	Service      AdminService
	availability AvailabilityService
	now          func() time.Time
}

func NewAdminHandler(svc AdminService, availability AvailabilityService) *AdminHandler {
	return &AdminHandler{Service: svc, availability: availability, now: time.Now}
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.ErrBadRequest(key + " must be an integer")
	}
	return n, nil
}

// ListBookings handles GET /admin/bookings?date=&vehicle_id=&status=&limit=&offset=.
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entities.BookingFilter{
		Date:   q.Get("date"),
		Status: q.Get("status"),
	}
	if v := q.Get("vehicle_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, r, apperrors.ErrBadRequest("invalid vehicle_id"))
			return
		}
		filter.VehicleID = &id
	}
	var err error
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		writeError(w, r, err)
		return
	}

	list, err := h.Service.ListBookings(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, apperrors.ErrBadRequest("invalid booking id"))
		return
	}
	if err := h.Service.DeleteBooking(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Booking deleted"})
}

// Calendar handles GET /admin/vehicles/{id}/calendar?year=&month=, defaulting
// to the current month in the business timezone.
func (h *AdminHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	today := availability.BusinessTimezone.DateOf(h.now())
	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if year == 0 {
		year = today.Year
	}
	month, err := queryInt(r, "month")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if month == 0 {
		month = int(today.Month)
	}

	cal, err := h.availability.MonthCalendar(r.Context(), id, year, time.Month(month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (h *AdminHandler) UpdateRates(w http.ResponseWriter, r *http.Request) {
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var card pricing.RateCard
	if err := decodeJSON(r, &card); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Service.UpdateRateCard(r.Context(), id, card); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}
