package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"novadrive/internal/availability"
	"novadrive/internal/pricing"
)

var ErrRateCardIncomplete = errors.New("vehicle rate card is incomplete")

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"

	PaymentMethodOnline = "online"
	PaymentMethodOnsite = "onsite"
)

// BlockingStatuses are the booking statuses that make a vehicle unavailable.
var BlockingStatuses = []string{StatusPending, StatusConfirmed, StatusActive}

type Vehicle struct {
	ID                 uuid.UUID
	Name               string
	Category           string
	Seats              int
	Transmission       string
	ImageURL           string
	ChauffeurAvailable bool
	Active             bool

	HourlyRate           sql.NullFloat64
	DailyRate            sql.NullFloat64
	MonthlyRate          sql.NullFloat64
	TenDayPackage        sql.NullFloat64
	FifteenDayPackage    sql.NullFloat64
	TwentyFiveDayPackage sql.NullFloat64
}

// RateCard turns the vehicle's nullable rate columns into a rate card. Any
// missing or negative rate makes the vehicle unpriceable.
func (v *Vehicle) RateCard() (pricing.RateCard, error) {
	cols := []sql.NullFloat64{
		v.HourlyRate, v.DailyRate, v.MonthlyRate,
		v.TenDayPackage, v.FifteenDayPackage, v.TwentyFiveDayPackage,
	}
	for _, c := range cols {
		if !c.Valid || c.Float64 < 0 {
			return pricing.RateCard{}, ErrRateCardIncomplete
		}
	}
	return pricing.RateCard{
		Hourly:               v.HourlyRate.Float64,
		Daily:                v.DailyRate.Float64,
		Monthly:              v.MonthlyRate.Float64,
		TenDayPackage:        v.TenDayPackage.Float64,
		FifteenDayPackage:    v.FifteenDayPackage.Float64,
		TwentyFiveDayPackage: v.TwentyFiveDayPackage.Float64,
	}, nil
}

// SetRateCard fills the rate columns from card.
func (v *Vehicle) SetRateCard(card pricing.RateCard) {
	v.HourlyRate = sql.NullFloat64{Float64: card.Hourly, Valid: true}
	v.DailyRate = sql.NullFloat64{Float64: card.Daily, Valid: true}
	v.MonthlyRate = sql.NullFloat64{Float64: card.Monthly, Valid: true}
	v.TenDayPackage = sql.NullFloat64{Float64: card.TenDayPackage, Valid: true}
	v.FifteenDayPackage = sql.NullFloat64{Float64: card.FifteenDayPackage, Valid: true}
	v.TwentyFiveDayPackage = sql.NullFloat64{Float64: card.TwentyFiveDayPackage, Valid: true}
}

type Booking struct {
	ID                    uuid.UUID
	Code                  string
	VehicleID             uuid.UUID
	CustomerName          string
	CustomerEmail         string
	CustomerPhone         string
	WithChauffeur         bool
	DurationKind          string
	DurationAmount        int
	StartTime             time.Time
	EndTime               time.Time
	TotalPrice            float64
	PaymentMethod         string
	Status                string
	PaymentStatus         string
	StripeSessionID       string
	StripePaymentIntentID string
	Language              string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (b *Booking) Interval() availability.BookingInterval {
	return availability.Rental(b.VehicleID, b.StartTime, b.EndTime)
}

func (b *Booking) Duration() pricing.DurationRequest {
	return pricing.DurationRequest{Kind: pricing.DurationKind(b.DurationKind), Amount: b.DurationAmount}
}

type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}
