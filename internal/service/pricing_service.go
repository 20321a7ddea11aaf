package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"novadrive/internal/availability"
	"novadrive/internal/db"
	"novadrive/internal/entities"
	"novadrive/internal/logger"
	"novadrive/internal/pricing"
)

type VehicleStore interface {
	ListVehicles(ctx context.Context) ([]db.Vehicle, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*db.Vehicle, error)
	UpdateRateCard(ctx context.Context, id uuid.UUID, card pricing.RateCard) error
}

type IntervalStore interface {
	ListIntervals(ctx context.Context, vehicleID uuid.UUID, from, to time.Time, statuses []string) ([]availability.BookingInterval, error)
	ListFleetIntervals(ctx context.Context, from, to time.Time, statuses []string) ([]availability.BookingInterval, error)
}

type PricingService struct {
	vehicles  VehicleStore
	intervals IntervalStore
	currency  string
	rule      availability.TimezoneRule
	now       func() time.Time
}

func NewPricingService(vehicles VehicleStore, intervals IntervalStore, currency string) *PricingService {
	return &PricingService{
		vehicles:  vehicles,
		intervals: intervals,
		currency:  currency,
		rule:      availability.BusinessTimezone,
		now:       time.Now,
	}
}

func (s *PricingService) DurationOptions() pricing.Options {
	return pricing.DurationOptions()
}

// Quote prices a rental of vehicleID. Unknown or inactive vehicles return
// ErrVehicleNotFound rather than a zero price.
func (s *PricingService) Quote(ctx context.Context, vehicleID uuid.UUID, req pricing.DurationRequest) (*entities.QuoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	card, err := loadRateCard(ctx, s.vehicles, vehicleID)
	if err != nil {
		return nil, err
	}

	quote := &entities.QuoteResponse{
		VehicleID: vehicleID,
		Kind:      req.Kind,
		Amount:    req.Amount,
		Price:     pricing.CalculatePrice(&card, req),
		Currency:  s.currency,
	}
	if req.Kind == pricing.KindDaily {
		quote.Tier = pricing.TierForDays(req.Amount).Name
		quote.EffectiveDailyRate = pricing.EffectiveDailyRate(&card, req.Amount)
	}
	return quote, nil
}

func loadRateCard(ctx context.Context, vehicles VehicleStore, vehicleID uuid.UUID) (pricing.RateCard, error) {
	v, err := vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return pricing.RateCard{}, err
	}
	if v == nil || !v.Active {
		return pricing.RateCard{}, ErrVehicleNotFound
	}
	card, err := v.RateCard()
	if err != nil {
		return pricing.RateCard{}, fmt.Errorf("vehicle %s: %w", vehicleID, err)
	}
	return card, nil
}

// ListFleet returns the active fleet with rates and today's availability.
// Vehicles with an incomplete rate card are listed without rates.
func (s *PricingService) ListFleet(ctx context.Context) ([]entities.VehicleResponse, error) {
	vehicles, err := s.vehicles.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	from, to := s.rule.DayBounds(s.rule.DateOf(now))
	intervals, err := s.intervals.ListFleetIntervals(ctx, from, to, db.BlockingStatuses)
	if err != nil {
		return nil, err
	}

	out := make([]entities.VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		booked := availability.ExpandForVehicle(vehicles[i].ID, intervals, s.rule)
		out = append(out, s.vehicleResponse(&vehicles[i], !booked.IsBooked(now, s.rule)))
	}
	return out, nil
}

func (s *PricingService) GetVehicle(ctx context.Context, id uuid.UUID) (*entities.VehicleResponse, error) {
	v, err := s.vehicles.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil || !v.Active {
		return nil, ErrVehicleNotFound
	}
	now := s.now()
	from, to := s.rule.DayBounds(s.rule.DateOf(now))
	intervals, err := s.intervals.ListIntervals(ctx, id, from, to, db.BlockingStatuses)
	if err != nil {
		return nil, err
	}
	booked := availability.ExpandForVehicle(id, intervals, s.rule)
	resp := s.vehicleResponse(v, !booked.IsBooked(now, s.rule))
	return &resp, nil
}

func (s *PricingService) vehicleResponse(v *db.Vehicle, availableToday bool) entities.VehicleResponse {
	resp := entities.VehicleResponse{
		ID:                 v.ID,
		Name:               v.Name,
		Category:           v.Category,
		Seats:              v.Seats,
		Transmission:       v.Transmission,
		ImageURL:           v.ImageURL,
		ChauffeurAvailable: v.ChauffeurAvailable,
		AvailableToday:     availableToday,
	}
	if card, err := v.RateCard(); err == nil {
		resp.Rates = &card
	} else {
		logger.Warn("vehicle listed without rates", zap.String("vehicle_id", v.ID.String()), zap.Error(err))
	}
	return resp
}
