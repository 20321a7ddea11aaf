package entities

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"novadrive/internal/availability"
)

type BookedDatesResponse struct {
	VehicleID   uuid.UUID    `json:"vehicle_id"`
	From        civil.Date   `json:"from"`
	To          civil.Date   `json:"to"`
	Timezone    string       `json:"timezone"`
	BookedDates []civil.Date `json:"booked_dates"`
}

type CalendarResponse struct {
	VehicleID uuid.UUID                `json:"vehicle_id"`
	Year      int                      `json:"year"`
	Month     int                      `json:"month"`
	Days      []availability.DayStatus `json:"days"`
}
