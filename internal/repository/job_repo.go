package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"novadrive/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// GetBookingIDsPastEndTime returns bookings in one of statuses whose return
// time has been reached.
func (r *JobRepository) GetBookingIDsPastEndTime(ctx context.Context, now time.Time, statuses []string) ([]uuid.UUID, error) {
	query := `SELECT id FROM bookings WHERE status = ANY($1) AND end_time <= $2`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(statuses), now)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings past end time: %w", err)
	}
	return collectIDs(rows)
}

// GetBookingIDsStarted returns bookings with the given status whose rental
// has started but not yet ended.
func (r *JobRepository) GetBookingIDsStarted(ctx context.Context, now time.Time, status string) ([]uuid.UUID, error) {
	query := `SELECT id FROM bookings WHERE status = $1 AND start_time <= $2 AND end_time > $2`
	rows, err := r.DB.QueryContext(ctx, query, status, now)
	if err != nil {
		return nil, fmt.Errorf("error querying started bookings: %w", err)
	}
	return collectIDs(rows)
}

func collectIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateBookingStatuses sets newStatus on every listed booking and returns the number updated.
func (r *JobRepository) UpdateBookingStatuses(ctx context.Context, ids []uuid.UUID, newStatus string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = ANY($2::uuid[])`
	result, err := r.DB.ExecContext(ctx, query, newStatus, pq.Array(strIDs))
	if err != nil {
		return 0, fmt.Errorf("error updating booking statuses: %w", err)
	}
	return result.RowsAffected()
}

// DeletePendingBookingsOlderThan removes abandoned checkouts created before the given time.
func (r *JobRepository) DeletePendingBookingsOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM bookings WHERE status = $1 AND payment_status = $2 AND created_at < $3`
	result, err := r.DB.ExecContext(ctx, query, db.StatusPending, db.PaymentPending, before)
	if err != nil {
		return 0, fmt.Errorf("error deleting stale pending bookings: %w", err)
	}
	return result.RowsAffected()
}
