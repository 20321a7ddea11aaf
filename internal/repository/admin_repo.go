package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"novadrive/internal/availability"
	"novadrive/internal/db"
	"novadrive/internal/entities"
)

type AdminRepository struct {
	DB *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{DB: db}
}

// ListBookings returns one page of bookings matching the filter and the total
// number of matches.
func (r *AdminRepository) ListBookings(ctx context.Context, f entities.BookingFilter) ([]db.Booking, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if f.Date != "" {
		// Bookings running on that day in the business timezone.
		day, err := civil.ParseDate(f.Date)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date filter %q: %w", f.Date, err)
		}
		from, to := availability.BusinessTimezone.DayBounds(day)
		where += " AND start_time <= $" + strconv.Itoa(idx) + " AND end_time > $" + strconv.Itoa(idx+1)
		args = append(args, to, from)
		idx += 2
	}
	if f.VehicleID != nil {
		where += " AND vehicle_id = $" + strconv.Itoa(idx)
		args = append(args, *f.VehicleID)
		idx++
	}
	if f.Status != "" {
		where += " AND status = $" + strconv.Itoa(idx)
		args = append(args, f.Status)
		idx++
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %w", err)
	}

	query := "SELECT " + bookingColumns + " FROM bookings" + where +
		" ORDER BY start_time DESC LIMIT $" + strconv.Itoa(idx) + " OFFSET $" + strconv.Itoa(idx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *AdminRepository) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting booking %s: %w", id, err)
	}
	return expectOneRow(res, "booking "+id.String())
}
