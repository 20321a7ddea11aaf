package service

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"novadrive/internal/availability"
	"novadrive/internal/db"
	"novadrive/internal/entities"
)

// maxRangeDays bounds a booked-dates query.
const maxRangeDays = 366

type AvailabilityService struct {
	vehicles  VehicleStore
	intervals IntervalStore
	rule      availability.TimezoneRule
}

func NewAvailabilityService(vehicles VehicleStore, intervals IntervalStore) *AvailabilityService {
	return &AvailabilityService{
		vehicles:  vehicles,
		intervals: intervals,
		rule:      availability.BusinessTimezone,
	}
}

// bookedSet loads the blocking bookings of vehicleID touching [from, to] and
// expands them to days.
func (s *AvailabilityService) bookedSet(ctx context.Context, vehicleID uuid.UUID, from, to civil.Date) (availability.BookedDateSet, error) {
	start, _ := s.rule.DayBounds(from)
	_, end := s.rule.DayBounds(to)
	intervals, err := s.intervals.ListIntervals(ctx, vehicleID, start, end, db.BlockingStatuses)
	if err != nil {
		return nil, err
	}
	return availability.ExpandForVehicle(vehicleID, intervals, s.rule), nil
}

func (s *AvailabilityService) ensureVehicle(ctx context.Context, vehicleID uuid.UUID) error {
	v, err := s.vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	if v == nil {
		return ErrVehicleNotFound
	}
	return nil
}

// BookedDates lists the days in [from, to] on which the vehicle is booked.
func (s *AvailabilityService) BookedDates(ctx context.Context, vehicleID uuid.UUID, from, to civil.Date) (*entities.BookedDatesResponse, error) {
	if !from.IsValid() || !to.IsValid() || to.Before(from) {
		return nil, ErrInvalidDateRange
	}
	if to.DaysSince(from) > maxRangeDays {
		return nil, fmt.Errorf("%w: at most %d days", ErrInvalidDateRange, maxRangeDays)
	}
	if err := s.ensureVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}

	set, err := s.bookedSet(ctx, vehicleID, from, to)
	if err != nil {
		return nil, err
	}
	dates := set.Between(from, to)
	if dates == nil {
		dates = []civil.Date{}
	}
	return &entities.BookedDatesResponse{
		VehicleID:   vehicleID,
		From:        from,
		To:          to,
		Timezone:    s.rule.Location().String(),
		BookedDates: dates,
	}, nil
}

// IsAvailable reports whether no day of [start, end] is booked.
func (s *AvailabilityService) IsAvailable(ctx context.Context, vehicleID uuid.UUID, start, end time.Time) (bool, error) {
	if end.Before(start) {
		return false, ErrInvalidDateRange
	}
	set, err := s.bookedSet(ctx, vehicleID, s.rule.DateOf(start), s.rule.DateOf(end))
	if err != nil {
		return false, err
	}
	return !set.Overlaps(start, end, s.rule), nil
}

func (s *AvailabilityService) MonthCalendar(ctx context.Context, vehicleID uuid.UUID, year int, month time.Month) (*entities.CalendarResponse, error) {
	if month < time.January || month > time.December || year < 1 {
		return nil, ErrInvalidDateRange
	}
	if err := s.ensureVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}
	first, last := availability.MonthBounds(year, month)
	set, err := s.bookedSet(ctx, vehicleID, first, last)
	if err != nil {
		return nil, err
	}
	return &entities.CalendarResponse{
		VehicleID: vehicleID,
		Year:      year,
		Month:     int(month),
		Days:      availability.MonthCalendar(set, year, month),
	}, nil
}
