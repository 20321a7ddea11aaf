package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"novadrive/internal/db"
	"novadrive/internal/pricing"
)

const vehicleColumns = `
	id, name, category, seats, transmission, COALESCE(image_url, ''), chauffeur_available, active,
	hourly_rate, daily_rate, monthly_rate, ten_day_package, fifteen_day_package, twenty_five_day_package`

type VehicleRepository struct {
	DB *sql.DB
}

func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{DB: db}
}

func scanVehicle(row rowScanner) (*db.Vehicle, error) {
	var v db.Vehicle
	err := row.Scan(
		&v.ID, &v.Name, &v.Category, &v.Seats, &v.Transmission, &v.ImageURL, &v.ChauffeurAvailable, &v.Active,
		&v.HourlyRate, &v.DailyRate, &v.MonthlyRate, &v.TenDayPackage, &v.FifteenDayPackage, &v.TwentyFiveDayPackage,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVehicles returns the active fleet ordered by category and name.
func (r *VehicleRepository) ListVehicles(ctx context.Context) ([]db.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE active ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("error querying vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []db.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating vehicles: %w", err)
	}
	return vehicles, nil
}

// GetVehicle returns nil, nil when the vehicle does not exist.
func (r *VehicleRepository) GetVehicle(ctx context.Context, id uuid.UUID) (*db.Vehicle, error) {
	v, err := scanVehicle(r.DB.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying vehicle %s: %w", id, err)
	}
	return v, nil
}

func (r *VehicleRepository) UpdateRateCard(ctx context.Context, id uuid.UUID, card pricing.RateCard) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE vehicles
		SET hourly_rate = $2,
			daily_rate = $3,
			monthly_rate = $4,
			ten_day_package = $5,
			fifteen_day_package = $6,
			twenty_five_day_package = $7
		WHERE id = $1`,
		id, card.Hourly, card.Daily, card.Monthly, card.TenDayPackage, card.FifteenDayPackage, card.TwentyFiveDayPackage)
	if err != nil {
		return fmt.Errorf("error updating rate card for vehicle %s: %w", id, err)
	}
	return expectOneRow(res, "vehicle "+id.String())
}
