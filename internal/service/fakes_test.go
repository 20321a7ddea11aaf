package service

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"novadrive/internal/availability"
	"novadrive/internal/db"
	"novadrive/internal/entities"
	"novadrive/internal/pricing"
)

var sedanCard = pricing.RateCard{
	Hourly:               25,
	Daily:                150,
	TenDayPackage:        1200,
	FifteenDayPackage:    1650,
	TwentyFiveDayPackage: 2500,
	Monthly:              3000,
}

func newVehicle(name string, card *pricing.RateCard) *db.Vehicle {
	v := &db.Vehicle{ID: uuid.New(), Name: name, Category: "sedan", Seats: 5, Active: true, ChauffeurAvailable: true}
	if card != nil {
		v.SetRateCard(*card)
	}
	return v
}

type fakeVehicles struct {
	byID map[uuid.UUID]*db.Vehicle
	err  error
}

func newFakeVehicles(vs ...*db.Vehicle) *fakeVehicles {
	f := &fakeVehicles{byID: map[uuid.UUID]*db.Vehicle{}}
	for _, v := range vs {
		f.byID[v.ID] = v
	}
	return f
}

func (f *fakeVehicles) ListVehicles(ctx context.Context) ([]db.Vehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []db.Vehicle
	for _, v := range f.byID {
		if v.Active {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVehicles) GetVehicle(ctx context.Context, id uuid.UUID) (*db.Vehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVehicles) UpdateRateCard(ctx context.Context, id uuid.UUID, card pricing.RateCard) error {
	v, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("vehicle %s: %w", id, sql.ErrNoRows)
	}
	v.SetRateCard(card)
	return nil
}

// fakeBookings is an in-memory booking table serving every booking store interface.
type fakeBookings struct {
	mu        sync.Mutex
	rows      []*db.Booking
	createErr error
}

func (f *fakeBookings) add(b *db.Booking) *db.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, b)
	return b
}

func (f *fakeBookings) find(match func(*db.Booking) bool) *db.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.rows {
		if match(b) {
			return b
		}
	}
	return nil
}

func copyOf(b *db.Booking) *db.Booking {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}

func (f *fakeBookings) CreateBooking(ctx context.Context, b *db.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.add(copyOf(b))
	return nil
}

func (f *fakeBookings) GetBookingByCode(ctx context.Context, code, email string) (*db.Booking, error) {
	return copyOf(f.find(func(b *db.Booking) bool { return b.Code == code && b.CustomerEmail == email })), nil
}

func (f *fakeBookings) GetBookingBySessionID(ctx context.Context, sessionID string) (*db.Booking, error) {
	return copyOf(f.find(func(b *db.Booking) bool { return b.StripeSessionID == sessionID })), nil
}

func (f *fakeBookings) ListBookingsByEmail(ctx context.Context, email string) ([]db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Booking
	for _, b := range f.rows {
		if b.CustomerEmail == email {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookings) CancelBooking(ctx context.Context, code string) error {
	b := f.find(func(b *db.Booking) bool { return b.Code == code })
	if b == nil {
		return sql.ErrNoRows
	}
	b.Status = db.StatusCancelled
	return nil
}

func (f *fakeBookings) ListIntervals(ctx context.Context, vehicleID uuid.UUID, from, to time.Time, statuses []string) ([]availability.BookingInterval, error) {
	all, _ := f.ListFleetIntervals(ctx, from, to, statuses)
	var out []availability.BookingInterval
	for _, iv := range all {
		if iv.VehicleID == vehicleID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListFleetIntervals(ctx context.Context, from, to time.Time, statuses []string) ([]availability.BookingInterval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blocking := map[string]bool{}
	for _, s := range statuses {
		blocking[s] = true
	}
	var out []availability.BookingInterval
	for _, b := range f.rows {
		if blocking[b.Status] && !b.StartTime.After(to) && b.EndTime.After(from) {
			out = append(out, b.Interval())
		}
	}
	return out, nil
}

func (f *fakeBookings) UpdateStatusBySessionID(ctx context.Context, sessionID, status, paymentStatus, paymentIntentID string) error {
	b := f.find(func(b *db.Booking) bool { return b.StripeSessionID == sessionID })
	if b == nil {
		return fmt.Errorf("session %s: %w", sessionID, sql.ErrNoRows)
	}
	b.Status, b.PaymentStatus = status, paymentStatus
	if paymentIntentID != "" {
		b.StripePaymentIntentID = paymentIntentID
	}
	return nil
}

func (f *fakeBookings) UpdateStatusByPaymentIntentID(ctx context.Context, paymentIntentID, status, paymentStatus string) error {
	b := f.find(func(b *db.Booking) bool { return b.StripePaymentIntentID == paymentIntentID })
	if b == nil {
		return fmt.Errorf("payment intent %s: %w", paymentIntentID, sql.ErrNoRows)
	}
	b.Status, b.PaymentStatus = status, paymentStatus
	return nil
}

func (f *fakeBookings) ListBookings(ctx context.Context, filter entities.BookingFilter) ([]db.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Booking
	for _, b := range f.rows {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, *b)
	}
	total := int64(len(out))
	if filter.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (f *fakeBookings) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.rows {
		if b.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("booking %s: %w", id, sql.ErrNoRows)
}

type fakeGateway struct {
	sessions      []CheckoutParams
	refunded      []string
	sessionForPI  map[string]string
	createErr     error
	refundErr     error
	nextSessionID int
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.sessions = append(g.sessions, p)
	g.nextSessionID++
	id := fmt.Sprintf("cs_test_%d", g.nextSessionID)
	return &CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

func (g *fakeGateway) RefundPaymentBySessionID(ctx context.Context, sessionID string) error {
	if g.refundErr != nil {
		return g.refundErr
	}
	g.refunded = append(g.refunded, sessionID)
	return nil
}

func (g *fakeGateway) SessionIDForPaymentIntent(ctx context.Context, paymentIntentID string) (string, error) {
	return g.sessionForPI[paymentIntentID], nil
}

type notification struct {
	code    string
	vehicle string
	status  string
}

type fakeNotifier struct {
	sent []notification
}

func (n *fakeNotifier) NotifyBooking(b *db.Booking, vehicleName, status string) {
	n.sent = append(n.sent, notification{code: b.Code, vehicle: vehicleName, status: status})
}

// The job store methods follow the predicates of the SQL in JobRepository.

func (f *fakeBookings) GetBookingIDsPastEndTime(ctx context.Context, now time.Time, statuses []string) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for _, b := range f.rows {
		if slices.Contains(statuses, b.Status) && !b.EndTime.After(now) {
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (f *fakeBookings) GetBookingIDsStarted(ctx context.Context, now time.Time, status string) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for _, b := range f.rows {
		if b.Status == status && !b.StartTime.After(now) && b.EndTime.After(now) {
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (f *fakeBookings) UpdateBookingStatuses(ctx context.Context, ids []uuid.UUID, newStatus string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.rows {
		if slices.Contains(ids, b.ID) {
			b.Status = newStatus
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) DeletePendingBookingsOlderThan(ctx context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	var n int64
	for _, b := range f.rows {
		if b.Status == db.StatusPending && b.PaymentStatus == db.PaymentPending && b.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, b)
	}
	f.rows = kept
	return n, nil
}
