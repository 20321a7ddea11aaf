package entities

import (
	"time"

	"github.com/google/uuid"

	"novadrive/internal/pricing"
)

type BookingRequest struct {
	VehicleID      uuid.UUID `json:"vehicle_id"`
	CustomerName   string    `json:"customer_name"`
	CustomerEmail  string    `json:"customer_email"`
	CustomerPhone  string    `json:"customer_phone"`
	WithChauffeur  bool      `json:"with_chauffeur"`
	DurationKind   string    `json:"duration_kind"`
	DurationAmount int       `json:"duration_amount"`
	StartTime      time.Time `json:"start_time"`
	PaymentMethod  string    `json:"payment_method"` // "online" or "onsite"
	Language       string    `json:"language"`
}

// Duration parses the requested duration, rejecting unknown kinds and
// non-positive amounts.
func (r BookingRequest) Duration() (pricing.DurationRequest, error) {
	kind, err := pricing.ParseKind(r.DurationKind)
	if err != nil {
		return pricing.DurationRequest{}, err
	}
	req := pricing.DurationRequest{Kind: kind, Amount: r.DurationAmount}
	if err := req.Validate(); err != nil {
		return pricing.DurationRequest{}, err
	}
	return req, nil
}

type CheckoutResponse struct {
	Code       string  `json:"booking_code"`
	URL        string  `json:"checkout_url"`
	SessionID  string  `json:"session_id"`
	TotalPrice float64 `json:"total_price"`
	AmountDue  float64 `json:"amount_due"`
	Currency   string  `json:"currency"`
}
