package entities

import (
	"github.com/google/uuid"

	"novadrive/internal/pricing"
)

type QuoteResponse struct {
	VehicleID uuid.UUID            `json:"vehicle_id"`
	Kind      pricing.DurationKind `json:"kind"`
	Amount    int                  `json:"amount"`
	Price     float64              `json:"price"`
	Currency  string               `json:"currency"`
	// Tier and EffectiveDailyRate are only set for daily rentals.
	Tier               string  `json:"tier,omitempty"`
	EffectiveDailyRate float64 `json:"effective_daily_rate,omitempty"`
}

type VehicleResponse struct {
	ID                 uuid.UUID         `json:"id"`
	Name               string            `json:"name"`
	Category           string            `json:"category"`
	Seats              int               `json:"seats"`
	Transmission       string            `json:"transmission"`
	ImageURL           string            `json:"image_url"`
	ChauffeurAvailable bool              `json:"chauffeur_available"`
	Rates              *pricing.RateCard `json:"rates,omitempty"`
	AvailableToday     bool              `json:"available_today"`
}
