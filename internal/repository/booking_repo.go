package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"novadrive/internal/availability"
	"novadrive/internal/db"
)

const bookingColumns = `
	id, code, vehicle_id, customer_name, customer_email, customer_phone, with_chauffeur,
	duration_kind, duration_amount, start_time, end_time, total_price, payment_method,
	status, payment_status, COALESCE(stripe_session_id, ''), COALESCE(stripe_payment_intent_id, ''),
	language, created_at, updated_at`

// ErrBookingConflict is returned when the database exclusion constraint
// rejects an overlapping booking for the same vehicle.
var ErrBookingConflict = errors.New("booking overlaps an existing booking")

// exclusion_violation
const pqExclusionViolation = "23P01"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.Code, &b.VehicleID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.WithChauffeur,
		&b.DurationKind, &b.DurationAmount, &b.StartTime, &b.EndTime, &b.TotalPrice, &b.PaymentMethod,
		&b.Status, &b.PaymentStatus, &b.StripeSessionID, &b.StripePaymentIntentID,
		&b.Language, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b *db.Booking) error {
	query := `
		INSERT INTO bookings
		(id, code, vehicle_id, customer_name, customer_email, customer_phone, with_chauffeur,
		 duration_kind, duration_amount, start_time, end_time, total_price, payment_method,
		 status, payment_status, stripe_session_id, language, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		b.ID,
		b.Code,
		b.VehicleID,
		b.CustomerName,
		b.CustomerEmail,
		b.CustomerPhone,
		b.WithChauffeur,
		b.DurationKind,
		b.DurationAmount,
		b.StartTime,
		b.EndTime,
		b.TotalPrice,
		b.PaymentMethod,
		b.Status,
		b.PaymentStatus,
		b.StripeSessionID,
		b.Language,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation {
			return ErrBookingConflict
		}
		return fmt.Errorf("error inserting booking %s: %w", b.Code, err)
	}
	return nil
}

// GetBookingByCode returns nil, nil when no booking matches code and email.
func (r *BookingRepository) GetBookingByCode(ctx context.Context, code, email string) (*db.Booking, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE code = $1 AND lower(customer_email) = lower($2)`, code, email)
	return r.scanOne(row, "code "+code)
}

func (r *BookingRepository) GetBookingBySessionID(ctx context.Context, sessionID string) (*db.Booking, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE stripe_session_id = $1`, sessionID)
	return r.scanOne(row, "session "+sessionID)
}

func (r *BookingRepository) scanOne(row *sql.Row, what string) (*db.Booking, error) {
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying booking by %s: %w", what, err)
	}
	return b, nil
}

func (r *BookingRepository) ListBookingsByEmail(ctx context.Context, email string) ([]db.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE lower(customer_email) = lower($1) ORDER BY start_time DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings by email: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]db.Booking, error) {
	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating bookings: %w", err)
	}
	return bookings, nil
}

// ListIntervals returns the date ranges of a vehicle's bookings in the given
// statuses that overlap [from, to].
func (r *BookingRepository) ListIntervals(ctx context.Context, vehicleID uuid.UUID, from, to time.Time, statuses []string) ([]availability.BookingInterval, error) {
	query := `
		SELECT vehicle_id, start_time, end_time
		FROM bookings
		WHERE vehicle_id = $1
		  AND status = ANY($2)
		  AND start_time <= $4
		  AND end_time > $3
		ORDER BY start_time`
	rows, err := r.DB.QueryContext(ctx, query, vehicleID, pq.Array(statuses), from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying booking intervals: %w", err)
	}
	defer rows.Close()
	return collectIntervals(rows)
}

// ListFleetIntervals is ListIntervals across every vehicle.
func (r *BookingRepository) ListFleetIntervals(ctx context.Context, from, to time.Time, statuses []string) ([]availability.BookingInterval, error) {
	query := `
		SELECT vehicle_id, start_time, end_time
		FROM bookings
		WHERE status = ANY($1)
		  AND start_time <= $3
		  AND end_time > $2`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(statuses), from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying fleet booking intervals: %w", err)
	}
	defer rows.Close()
	return collectIntervals(rows)
}

func collectIntervals(rows *sql.Rows) ([]availability.BookingInterval, error) {
	var intervals []availability.BookingInterval
	for rows.Next() {
		var (
			vehicleID  uuid.UUID
			start, end time.Time
		)
		if err := rows.Scan(&vehicleID, &start, &end); err != nil {
			return nil, fmt.Errorf("error scanning booking interval: %w", err)
		}
		intervals = append(intervals, availability.Rental(vehicleID, start, end))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking intervals: %w", err)
	}
	return intervals, nil
}

func (r *BookingRepository) CancelBooking(ctx context.Context, code string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE code = $2`, db.StatusCancelled, code)
	if err != nil {
		return fmt.Errorf("error cancelling booking %s: %w", code, err)
	}
	return expectOneRow(res, "booking "+code)
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, sql.ErrNoRows)
	}
	return nil
}
