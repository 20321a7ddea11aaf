package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"novadrive/internal/db"
	"novadrive/internal/logger"
)

const jobTimeout = time.Minute

type JobStore interface {
	GetBookingIDsPastEndTime(ctx context.Context, now time.Time, statuses []string) ([]uuid.UUID, error)
	GetBookingIDsStarted(ctx context.Context, now time.Time, status string) ([]uuid.UUID, error)
	UpdateBookingStatuses(ctx context.Context, ids []uuid.UUID, newStatus string) (int64, error)
	DeletePendingBookingsOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type JobService struct {
	repo       JobStore
	pendingTTL time.Duration
	now        func() time.Time
}

func NewJobService(repo JobStore, pendingTTL time.Duration) *JobService {
	return &JobService{repo: repo, pendingTTL: pendingTTL, now: time.Now}
}

// StartRentals moves confirmed bookings whose rental has begun to active.
func (s *JobService) StartRentals(ctx context.Context) (int64, error) {
	ids, err := s.repo.GetBookingIDsStarted(ctx, s.now(), db.StatusConfirmed)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to get started bookings: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.repo.UpdateBookingStatuses(ctx, ids, db.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to activate bookings: %w", err)
	}
	logger.Info("bookings activated", zap.Int64("count", n))
	return n, nil
}

// CompleteFinishedBookings marks confirmed and active bookings past their
// end time as completed.
func (s *JobService) CompleteFinishedBookings(ctx context.Context) (int64, error) {
	ids, err := s.repo.GetBookingIDsPastEndTime(ctx, s.now(), []string{db.StatusConfirmed, db.StatusActive})
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to get bookings past end time: %w", err)
	}
	if len(ids) == 0 {
		logger.Debug("no finished bookings")
		return 0, nil
	}
	n, err := s.repo.UpdateBookingStatuses(ctx, ids, db.StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to complete bookings: %w", err)
	}
	logger.Info("bookings completed", zap.Int64("count", n))
	return n, nil
}

// PurgeStalePending deletes unpaid bookings older than the pending TTL so
// abandoned checkouts stop blocking their dates.
func (s *JobService) PurgeStalePending(ctx context.Context) (int64, error) {
	n, err := s.repo.DeletePendingBookingsOlderThan(ctx, s.now().Add(-s.pendingTTL))
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to purge pending bookings: %w", err)
	}
	if n > 0 {
		logger.Info("stale pending bookings purged", zap.Int64("count", n))
	}
	return n, nil
}

func (s *JobService) run(name string, job func(context.Context) (int64, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := job(ctx); err != nil {
			logger.Error("cron job failed", zap.String("job", name), zap.Error(err))
		}
	}
}

// Register schedules the maintenance jobs on c.
func (s *JobService) Register(c *cron.Cron) error {
	jobs := []struct {
		schedule string
		name     string
		fn       func(context.Context) (int64, error)
	}{
		{"*/10 * * * *", "complete_finished_bookings", s.CompleteFinishedBookings},
		{"*/5 * * * *", "start_rentals", s.StartRentals},
		{"*/5 * * * *", "purge_stale_pending", s.PurgeStalePending},
	}
	for _, j := range jobs {
		if _, err := c.AddFunc(j.schedule, s.run(j.name, j.fn)); err != nil {
			return fmt.Errorf("scheduling %s: %w", j.name, err)
		}
	}
	return nil
}
