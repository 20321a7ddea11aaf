package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"novadrive/internal/availability"
	"novadrive/internal/db"
	"novadrive/internal/entities"
	"novadrive/internal/logger"
	"novadrive/internal/pricing"
	"novadrive/internal/repository"
	"novadrive/internal/utils"
)

type BookingStore interface {
	CreateBooking(ctx context.Context, b *db.Booking) error
	GetBookingByCode(ctx context.Context, code, email string) (*db.Booking, error)
	GetBookingBySessionID(ctx context.Context, sessionID string) (*db.Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]db.Booking, error)
	CancelBooking(ctx context.Context, code string) error
}

type PaymentStore interface {
	UpdateStatusBySessionID(ctx context.Context, sessionID, status, paymentStatus, paymentIntentID string) error
	UpdateStatusByPaymentIntentID(ctx context.Context, paymentIntentID, status, paymentStatus string) error
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
	RefundPaymentBySessionID(ctx context.Context, sessionID string) error
	SessionIDForPaymentIntent(ctx context.Context, paymentIntentID string) (string, error)
}

type Notifier interface {
	NotifyBooking(b *db.Booking, vehicleName, status string)
}

type BookingOptions struct {
	Currency             string
	CancellationWindow   time.Duration
	OnsiteDepositPercent int
}

var supportedLanguages = map[string]bool{"en": true, "fr": true}

type BookingService struct {
	vehicles     VehicleStore
	bookings     BookingStore
	payments     PaymentStore
	availability *AvailabilityService
	gateway      PaymentGateway
	notifier     Notifier
	opts         BookingOptions
	now          func() time.Time
}

func NewBookingService(
	vehicles VehicleStore,
	bookings BookingStore,
	payments PaymentStore,
	availability *AvailabilityService,
	gateway PaymentGateway,
	notifier Notifier,
	opts BookingOptions,
) *BookingService {
	return &BookingService{
		vehicles:     vehicles,
		bookings:     bookings,
		payments:     payments,
		availability: availability,
		gateway:      gateway,
		notifier:     notifier,
		opts:         opts,
		now:          time.Now,
	}
}

func invalid(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func invalidRequest(format string, args ...any) error {
	return invalid(ErrInvalidBookingRequest, format, args...)
}

func (s *BookingService) validate(req *entities.BookingRequest) error {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)

	if req.CustomerName == "" {
		return invalidRequest("customer name is required")
	}
	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		return invalidRequest("invalid email %q", req.CustomerEmail)
	}
	switch req.PaymentMethod {
	case db.PaymentMethodOnline, db.PaymentMethodOnsite:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, req.PaymentMethod)
	}
	if req.StartTime.IsZero() {
		return invalidRequest("start time is required")
	}
	if req.StartTime.Before(s.now()) {
		return invalidRequest("start time is in the past")
	}
	if !supportedLanguages[req.Language] {
		req.Language = "en"
	}
	return nil
}

var durationUnits = map[string]map[pricing.DurationKind][2]string{
	"en": {
		pricing.KindHourly:  {"hour", "hours"},
		pricing.KindDaily:   {"day", "days"},
		pricing.KindMonthly: {"month", "months"},
	},
	"fr": {
		pricing.KindHourly:  {"heure", "heures"},
		pricing.KindDaily:   {"jour", "jours"},
		pricing.KindMonthly: {"mois", "mois"},
	},
}

// describeDuration renders d as "12 days" or "12 jours".
func describeDuration(d pricing.DurationRequest, lang string) string {
	units, ok := durationUnits[lang]
	if !ok {
		units = durationUnits["en"]
	}
	unit := units[d.Kind][1]
	if d.Amount == 1 {
		unit = units[d.Kind][0]
	}
	return fmt.Sprintf("%d %s", d.Amount, unit)
}

// CreateBooking prices the request, checks availability, opens a Stripe
// checkout session and stores the booking as pending.
func (s *BookingService) CreateBooking(ctx context.Context, req entities.BookingRequest) (*entities.CheckoutResponse, error) {
	dur, err := req.Duration()
	if err != nil {
		return nil, err
	}
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	v, err := s.vehicles.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if v == nil || !v.Active {
		return nil, ErrVehicleNotFound
	}
	if req.WithChauffeur && !v.ChauffeurAvailable {
		return nil, invalidRequest("no chauffeur available for %s", v.Name)
	}
	card, err := v.RateCard()
	if err != nil {
		return nil, fmt.Errorf("vehicle %s: %w", v.ID, err)
	}

	price := pricing.CalculatePrice(&card, dur)
	end := dur.EndFrom(req.StartTime)

	span := availability.Rental(v.ID, req.StartTime, end)
	available, err := s.availability.IsAvailable(ctx, v.ID, span.Start, span.End)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrVehicleUnavailable
	}

	amountDue := price
	if req.PaymentMethod == db.PaymentMethodOnsite {
		amountDue = utils.PercentOf(price, s.opts.OnsiteDepositPercent)
	}

	code := utils.NewBookingCode()
	sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		Amount:        amountDue,
		Description:   fmt.Sprintf("%s - %s", v.Name, describeDuration(dur, req.Language)),
		CustomerEmail: req.CustomerEmail,
		BookingCode:   code,
		Language:      req.Language,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	booking := &db.Booking{
		ID:              uuid.New(),
		Code:            code,
		VehicleID:       v.ID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		WithChauffeur:   req.WithChauffeur,
		DurationKind:    string(dur.Kind),
		DurationAmount:  dur.Amount,
		StartTime:       req.StartTime,
		EndTime:         end,
		TotalPrice:      price,
		PaymentMethod:   req.PaymentMethod,
		Status:          db.StatusPending,
		PaymentStatus:   db.PaymentPending,
		StripeSessionID: sess.ID,
		Language:        req.Language,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrBookingConflict) {
			return nil, ErrVehicleUnavailable
		}
		return nil, err
	}
	logger.Info("booking created",
		zap.String("code", code),
		zap.String("vehicle_id", v.ID.String()),
		zap.String("duration", describeDuration(dur, "en")),
		zap.Float64("total", price),
	)

	return &entities.CheckoutResponse{
		Code:       code,
		URL:        sess.URL,
		SessionID:  sess.ID,
		TotalPrice: price,
		AmountDue:  amountDue,
		Currency:   s.opts.Currency,
	}, nil
}

func (s *BookingService) GetBooking(ctx context.Context, code, email string) (*entities.BookingResponse, error) {
	b, err := s.bookings.GetBookingByCode(ctx, code, email)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	resp := entities.NewBookingResponse(b)
	return &resp, nil
}

func (s *BookingService) GetBookingBySession(ctx context.Context, sessionID string) (*entities.BookingResponse, error) {
	b, err := s.bookings.GetBookingBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	resp := entities.NewBookingResponse(b)
	return &resp, nil
}

func (s *BookingService) ListCustomerBookings(ctx context.Context, email string) ([]entities.BookingResponse, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalidRequest("invalid email %q", email)
	}
	bookings, err := s.bookings.ListBookingsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	out := make([]entities.BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, entities.NewBookingResponse(&bookings[i]))
	}
	return out, nil
}

// CancelBooking cancels a booking that has not started, refunding it when
// it was paid online.
func (s *BookingService) CancelBooking(ctx context.Context, code, email string) error {
	b, err := s.bookings.GetBookingByCode(ctx, code, email)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBookingNotFound
	}
	switch b.Status {
	case db.StatusPending, db.StatusConfirmed:
	default:
		return fmt.Errorf("%w: status is %s", ErrBookingNotCancellable, b.Status)
	}
	if s.now().Add(s.opts.CancellationWindow).After(b.StartTime) {
		return ErrCancellationWindow
	}

	if b.PaymentStatus == db.PaymentPaid && b.StripeSessionID != "" {
		if err := s.gateway.RefundPaymentBySessionID(ctx, b.StripeSessionID); err != nil {
			return fmt.Errorf("refunding booking %s: %w", code, err)
		}
		err = s.payments.UpdateStatusBySessionID(ctx, b.StripeSessionID, db.StatusCancelled, db.PaymentRefunded, "")
		b.PaymentStatus = db.PaymentRefunded
	} else {
		err = s.bookings.CancelBooking(ctx, code)
	}
	if err != nil {
		return err
	}
	b.Status = db.StatusCancelled

	logger.Info("booking cancelled", zap.String("code", code), zap.String("payment_status", b.PaymentStatus))
	s.notifier.NotifyBooking(b, s.vehicleName(ctx, b.VehicleID), db.StatusCancelled)
	return nil
}

// ConfirmPayment marks the booking of a completed checkout session as paid.
// Repeated deliveries for an already confirmed booking are ignored.
func (s *BookingService) ConfirmPayment(ctx context.Context, sessionID, paymentIntentID string) error {
	b, err := s.bookings.GetBookingBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBookingNotFound
	}
	if b.Status != db.StatusPending {
		logger.Info("checkout already processed", zap.String("code", b.Code), zap.String("status", b.Status))
		return nil
	}

	if err := s.payments.UpdateStatusBySessionID(ctx, sessionID, db.StatusConfirmed, db.PaymentPaid, paymentIntentID); err != nil {
		return err
	}
	b.Status = db.StatusConfirmed
	b.PaymentStatus = db.PaymentPaid
	if paymentIntentID != "" {
		b.StripePaymentIntentID = paymentIntentID
	}

	logger.Info("booking confirmed", zap.String("code", b.Code))
	s.notifier.NotifyBooking(b, s.vehicleName(ctx, b.VehicleID), db.StatusConfirmed)
	return nil
}

// MarkRefunded cancels the booking paid with paymentIntentID. Bookings
// stored before the intent was known are located through their session.
func (s *BookingService) MarkRefunded(ctx context.Context, paymentIntentID string) error {
	err := s.payments.UpdateStatusByPaymentIntentID(ctx, paymentIntentID, db.StatusCancelled, db.PaymentRefunded)
	if err == nil || !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	sessionID, err := s.gateway.SessionIDForPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return err
	}
	if sessionID == "" {
		return ErrBookingNotFound
	}
	err = s.payments.UpdateStatusBySessionID(ctx, sessionID, db.StatusCancelled, db.PaymentRefunded, paymentIntentID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	return err
}

func (s *BookingService) vehicleName(ctx context.Context, id uuid.UUID) string {
	v, err := s.vehicles.GetVehicle(ctx, id)
	if err != nil || v == nil {
		return ""
	}
	return v.Name
}
