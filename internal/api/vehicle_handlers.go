package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"novadrive/internal/availability"
	"novadrive/internal/entities"
	apperrors "novadrive/internal/errors"
	"novadrive/internal/pricing"
)

// defaultBookedDatesDays is the window returned when no end date is given.
const defaultBookedDatesDays = 90

type CatalogService interface {
	ListFleet(ctx context.Context) ([]entities.VehicleResponse, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*entities.VehicleResponse, error)
	Quote(ctx context.Context, vehicleID uuid.UUID, req pricing.DurationRequest) (*entities.QuoteResponse, error)
	DurationOptions() pricing.Options
}

type AvailabilityService interface {
	BookedDates(ctx context.Context, vehicleID uuid.UUID, from, to civil.Date) (*entities.BookedDatesResponse, error)
	MonthCalendar(ctx context.Context, vehicleID uuid.UUID, year int, month time.Month) (*entities.CalendarResponse, error)
}

type VehicleHandler struct {
	catalog      CatalogService
	availability AvailabilityService
	now          func() time.Time
}

func NewVehicleHandler(catalog CatalogService, availability AvailabilityService) *VehicleHandler {
	return &VehicleHandler{catalog: catalog, availability: availability, now: time.Now}
}

func vehicleID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, apperrors.ErrBadRequest("invalid vehicle id")
	}
	return id, nil
}

func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	fleet, err := h.catalog.ListFleet(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fleet)
}

func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.catalog.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Quote handles GET /api/vehicles/{id}/quote?kind=daily&amount=12.
func (h *VehicleHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	kind, err := pricing.ParseKind(q.Get("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := strconv.Atoi(q.Get("amount"))
	if err != nil {
		writeError(w, r, apperrors.ErrBadRequest("amount must be an integer"))
		return
	}

	quote, err := h.catalog.Quote(r.Context(), id, pricing.DurationRequest{Kind: kind, Amount: amount})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *VehicleHandler) DurationOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.DurationOptions())
}

func parseDate(v string, def civil.Date) (civil.Date, error) {
	if v == "" {
		return def, nil
	}
	d, err := civil.ParseDate(v)
	if err != nil {
		return civil.Date{}, apperrors.ErrBadRequest("dates must be YYYY-MM-DD")
	}
	return d, nil
}

// BookedDates handles GET /api/vehicles/{id}/booked-dates?from=&to=. Both
// bounds are optional and default to today and 90 days later.
func (h *VehicleHandler) BookedDates(w http.ResponseWriter, r *http.Request) {
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	today := availability.BusinessTimezone.DateOf(h.now())
	from, err := parseDate(r.URL.Query().Get("from"), today)
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"), from.AddDays(defaultBookedDatesDays))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.availability.BookedDates(r.Context(), id, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
