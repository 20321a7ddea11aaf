package entities

import (
	"time"

	"github.com/google/uuid"

	"novadrive/internal/db"
)

type BookingResponse struct {
	Code           string    `json:"code"`
	VehicleID      uuid.UUID `json:"vehicle_id"`
	CustomerName   string    `json:"customer_name"`
	CustomerEmail  string    `json:"customer_email"`
	CustomerPhone  string    `json:"customer_phone"`
	WithChauffeur  bool      `json:"with_chauffeur"`
	DurationKind   string    `json:"duration_kind"`
	DurationAmount int       `json:"duration_amount"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	TotalPrice     float64   `json:"total_price"`
	PaymentMethod  string    `json:"payment_method"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"payment_status"`
	Language       string    `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewBookingResponse(b *db.Booking) BookingResponse {
	return BookingResponse{
		Code:           b.Code,
		VehicleID:      b.VehicleID,
		CustomerName:   b.CustomerName,
		CustomerEmail:  b.CustomerEmail,
		CustomerPhone:  b.CustomerPhone,
		WithChauffeur:  b.WithChauffeur,
		DurationKind:   b.DurationKind,
		DurationAmount: b.DurationAmount,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		TotalPrice:     b.TotalPrice,
		PaymentMethod:  b.PaymentMethod,
		Status:         b.Status,
		PaymentStatus:  b.PaymentStatus,
		Language:       b.Language,
		CreatedAt:      b.CreatedAt,
	}
}

// BookingFilter narrows the admin booking list. Zero fields are ignored.
type BookingFilter struct {
	Date      string
	VehicleID *uuid.UUID
	Status    string
	Limit     int
	Offset    int
}

type BookingsList struct {
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	Bookings []BookingResponse `json:"bookings"`
}
