package pricing

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDuration     = errors.New("duration must be a positive integer")
	ErrUnknownDurationKind = errors.New("unknown duration kind")
)

// RateCard is the fixed price table attached to a vehicle.
type RateCard struct {
	Hourly               float64 `json:"hourly"`
	Daily                float64 `json:"daily"`
	Monthly              float64 `json:"monthly"`
	TenDayPackage        float64 `json:"ten_day_package"`
	FifteenDayPackage    float64 `json:"fifteen_day_package"`
	TwentyFiveDayPackage float64 `json:"twenty_five_day_package"`
}

type DurationKind string

const (
	KindHourly  DurationKind = "hourly"
	KindDaily   DurationKind = "daily"
	KindMonthly DurationKind = "monthly"
)

// ParseKind accepts the kind names used by the booking form.
func ParseKind(s string) (DurationKind, error) {
	switch DurationKind(s) {
	case KindHourly, KindDaily, KindMonthly:
		return DurationKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDurationKind, s)
}

type DurationRequest struct {
	Kind   DurationKind `json:"kind"`
	Amount int          `json:"amount"`
}

func Hours(n int) DurationRequest  { return DurationRequest{Kind: KindHourly, Amount: n} }
func Days(n int) DurationRequest   { return DurationRequest{Kind: KindDaily, Amount: n} }
func Months(n int) DurationRequest { return DurationRequest{Kind: KindMonthly, Amount: n} }

// Validate is meant for request boundaries. CalculatePrice never calls it.
func (r DurationRequest) Validate() error {
	if _, err := ParseKind(string(r.Kind)); err != nil {
		return err
	}
	if r.Amount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, r.Amount)
	}
	return nil
}

// EndFrom returns the exclusive end of a rental that starts at start: the
// vehicle is due back at that instant. Days and months are calendar steps.
func (r DurationRequest) EndFrom(start time.Time) time.Time {
	switch r.Kind {
	case KindHourly:
		return start.Add(time.Duration(r.Amount) * time.Hour)
	case KindDaily:
		return start.AddDate(0, 0, r.Amount)
	case KindMonthly:
		return start.AddDate(0, r.Amount, 0)
	}
	return start
}
