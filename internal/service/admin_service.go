package service

import (
	"context"
	"database/sql"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"novadrive/internal/db"
	"novadrive/internal/entities"
	"novadrive/internal/logger"
	"novadrive/internal/pricing"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type AdminBookingStore interface {
	ListBookings(ctx context.Context, f entities.BookingFilter) ([]db.Booking, int64, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
}

type AdminService struct {
	bookings AdminBookingStore
	vehicles VehicleStore
}

func NewAdminService(bookings AdminBookingStore, vehicles VehicleStore) *AdminService {
	return &AdminService{bookings: bookings, vehicles: vehicles}
}

var knownStatuses = map[string]bool{
	db.StatusPending:   true,
	db.StatusConfirmed: true,
	db.StatusActive:    true,
	db.StatusCompleted: true,
	db.StatusCancelled: true,
}

func (s *AdminService) ListBookings(ctx context.Context, f entities.BookingFilter) (*entities.BookingsList, error) {
	if f.Date != "" {
		if _, err := civil.ParseDate(f.Date); err != nil {
			return nil, invalid(ErrInvalidFilter, "invalid date %q", f.Date)
		}
	}
	if f.Status != "" && !knownStatuses[f.Status] {
		return nil, invalid(ErrInvalidFilter, "unknown status %q", f.Status)
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	bookings, total, err := s.bookings.ListBookings(ctx, f)
	if err != nil {
		return nil, err
	}
	list := &entities.BookingsList{
		Total:    total,
		Limit:    f.Limit,
		Offset:   f.Offset,
		Bookings: make([]entities.BookingResponse, 0, len(bookings)),
	}
	for i := range bookings {
		list.Bookings = append(list.Bookings, entities.NewBookingResponse(&bookings[i]))
	}
	return list, nil
}

func (s *AdminService) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	err := s.bookings.DeleteBooking(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err == nil {
		logger.Info("booking deleted by admin", zap.String("booking_id", id.String()))
	}
	return err
}

// UpdateRateCard replaces all six rates of a vehicle.
func (s *AdminService) UpdateRateCard(ctx context.Context, vehicleID uuid.UUID, card pricing.RateCard) error {
	for _, r := range []float64{
		card.Hourly, card.Daily, card.Monthly,
		card.TenDayPackage, card.FifteenDayPackage, card.TwentyFiveDayPackage,
	} {
		if r < 0 {
			return ErrInvalidRateCard
		}
	}
	err := s.vehicles.UpdateRateCard(ctx, vehicleID, card)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVehicleNotFound
	}
	if err == nil {
		logger.Info("rate card updated", zap.String("vehicle_id", vehicleID.String()))
	}
	return err
}
