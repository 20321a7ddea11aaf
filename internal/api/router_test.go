package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"novadrive/internal/auth"
	"novadrive/internal/db"
	"novadrive/internal/entities"
	"novadrive/internal/pricing"
	"novadrive/internal/service"
)

const (
	testJWTSecret     = "jwt-test-secret"
	testWebhookSecret = "whsec_test"
)

type stubCatalog struct {
	quoteReq pricing.DurationRequest
	quoteErr error
}

func (s *stubCatalog) ListFleet(ctx context.Context) ([]entities.VehicleResponse, error) {
	return []entities.VehicleResponse{{Name: "Golf", AvailableToday: true}}, nil
}

func (s *stubCatalog) GetVehicle(ctx context.Context, id uuid.UUID) (*entities.VehicleResponse, error) {
	return nil, service.ErrVehicleNotFound
}

func (s *stubCatalog) Quote(ctx context.Context, id uuid.UUID, req pricing.DurationRequest) (*entities.QuoteResponse, error) {
	s.quoteReq = req
	if s.quoteErr != nil {
		return nil, s.quoteErr
	}
	card := pricing.RateCard{Daily: 150, TenDayPackage: 1200}
	return &entities.QuoteResponse{VehicleID: id, Kind: req.Kind, Amount: req.Amount, Price: pricing.CalculatePrice(&card, req)}, nil
}

func (s *stubCatalog) DurationOptions() pricing.Options {
	return pricing.DurationOptions()
}

type stubAvailability struct {
	from, to civil.Date
	year     int
	month    time.Month
}

func (s *stubAvailability) BookedDates(ctx context.Context, id uuid.UUID, from, to civil.Date) (*entities.BookedDatesResponse, error) {
	s.from, s.to = from, to
	return &entities.BookedDatesResponse{VehicleID: id, From: from, To: to, BookedDates: []civil.Date{from}}, nil
}

func (s *stubAvailability) MonthCalendar(ctx context.Context, id uuid.UUID, year int, month time.Month) (*entities.CalendarResponse, error) {
	s.year, s.month = year, month
	return &entities.CalendarResponse{VehicleID: id, Year: year, Month: int(month)}, nil
}

type stubBookings struct {
	createErr  error
	cancelErr  error
	confirmed  []string
	refunded   []string
	confirmErr error
}

func (s *stubBookings) CreateBooking(ctx context.Context, req entities.BookingRequest) (*entities.CheckoutResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &entities.CheckoutResponse{Code: "AB12CD34", URL: "https://checkout.test", TotalPrice: 1200}, nil
}

func (s *stubBookings) GetBooking(ctx context.Context, code, email string) (*entities.BookingResponse, error) {
	if email != "amina@example.com" {
		return nil, service.ErrBookingNotFound
	}
	return &entities.BookingResponse{Code: code, CustomerEmail: email}, nil
}

func (s *stubBookings) GetBookingBySession(ctx context.Context, sessionID string) (*entities.BookingResponse, error) {
	return &entities.BookingResponse{Code: "AB12CD34"}, nil
}

func (s *stubBookings) ListCustomerBookings(ctx context.Context, email string) ([]entities.BookingResponse, error) {
	return []entities.BookingResponse{}, nil
}

func (s *stubBookings) CancelBooking(ctx context.Context, code, email string) error {
	return s.cancelErr
}

func (s *stubBookings) ConfirmPayment(ctx context.Context, sessionID, paymentIntentID string) error {
	s.confirmed = append(s.confirmed, sessionID+"/"+paymentIntentID)
	return s.confirmErr
}

func (s *stubBookings) MarkRefunded(ctx context.Context, paymentIntentID string) error {
	s.refunded = append(s.refunded, paymentIntentID)
	return nil
}

type stubAdmin struct {
	filter entities.BookingFilter
	card   pricing.RateCard
}

func (s *stubAdmin) ListBookings(ctx context.Context, f entities.BookingFilter) (*entities.BookingsList, error) {
	s.filter = f
	return &entities.BookingsList{Limit: f.Limit}, nil
}

func (s *stubAdmin) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	return service.ErrBookingNotFound
}

func (s *stubAdmin) UpdateRateCard(ctx context.Context, id uuid.UUID, card pricing.RateCard) error {
	s.card = card
	return nil
}

type stubAdminAuth struct{}

func (stubAdminAuth) Login(ctx context.Context, email, password string) (string, error) {
	if password != "letmein!" {
		return "", service.ErrInvalidCredentials
	}
	return "signed-token", nil
}

func (stubAdminAuth) CreateAdmin(ctx context.Context, email, password string) error {
	return nil
}

type testServer struct {
	router       http.Handler
	catalog      *stubCatalog
	availability *stubAvailability
	bookings     *stubBookings
	admin        *stubAdmin
	vehicles     *VehicleHandler
	adminHandler *AdminHandler
}

func newTestServer() *testServer {
	ts := &testServer{
		catalog:      &stubCatalog{},
		availability: &stubAvailability{},
		bookings:     &stubBookings{},
		admin:        &stubAdmin{},
	}
	ts.vehicles = NewVehicleHandler(ts.catalog, ts.availability)
	ts.adminHandler = NewAdminHandler(ts.admin, ts.availability)
	ts.router = NewRouter(Handlers{
		Vehicles:  ts.vehicles,
		Bookings:  NewUserBookingHandler(ts.bookings),
		Stripe:    NewStripeWebhookHandler(testWebhookSecret, ts.bookings),
		Admin:     ts.adminHandler,
		AdminAuth: NewAdminAuthHandler(stubAdminAuth{}),
	}, testJWTSecret)
	return ts
}

func (ts *testServer) do(method, target, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func adminHeader(t *testing.T) http.Header {
	token, err := auth.IssueToken(testJWTSecret, 1, "ops@novadrive.test", time.Hour, time.Now())
	require.NoError(t, err)
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	rec := newTestServer().do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestQuote(t *testing.T) {
	ts := newTestServer()
	id := uuid.New()

	rec := ts.do(http.MethodGet, "/api/vehicles/"+id.String()+"/quote?kind=daily&amount=12", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var quote entities.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 1200.0, quote.Price)
	assert.Equal(t, pricing.Days(12), ts.catalog.quoteReq)
}

func TestQuote_BadRequests(t *testing.T) {
	ts := newTestServer()
	id := uuid.New().String()

	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"bad vehicle id", "/api/vehicles/not-a-uuid/quote?kind=daily&amount=2", http.StatusBadRequest},
		{"unknown kind", "/api/vehicles/" + id + "/quote?kind=weekly&amount=2", http.StatusBadRequest},
		{"non numeric amount", "/api/vehicles/" + id + "/quote?kind=daily&amount=two", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodGet, tt.target, "", nil)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestQuote_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("wrapped: %w", pricing.ErrInvalidDuration), http.StatusBadRequest},
		{service.ErrVehicleNotFound, http.StatusNotFound},
		{fmt.Errorf("vehicle x: %w", db.ErrRateCardIncomplete), http.StatusConflict},
		{fmt.Errorf("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			ts := newTestServer()
			ts.catalog.quoteErr = tt.err
			rec := ts.do(http.MethodGet, "/api/vehicles/"+uuid.NewString()+"/quote?kind=daily&amount=0", "", nil)
			assert.Equal(t, tt.code, rec.Code)
		})
	}

	ts := newTestServer()
	ts.catalog.quoteErr = fmt.Errorf("pq: password authentication failed")
	rec := ts.do(http.MethodGet, "/api/vehicles/"+uuid.NewString()+"/quote?kind=daily&amount=1", "", nil)
	assert.Equal(t, "internal error", errorMessage(t, rec))
}

func TestBookedDates(t *testing.T) {
	ts := newTestServer()
	id := uuid.NewString()

	rec := ts.do(http.MethodGet, "/api/vehicles/"+id+"/booked-dates?from=2025-06-01&to=2025-06-30", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, civil.Date{Year: 2025, Month: 6, Day: 1}, ts.availability.from)
	assert.Equal(t, civil.Date{Year: 2025, Month: 6, Day: 30}, ts.availability.to)
	assert.Contains(t, rec.Body.String(), `"booked_dates":["2025-06-01"]`)

	rec = ts.do(http.MethodGet, "/api/vehicles/"+id+"/booked-dates?from=01/06/2025", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookedDates_Defaults(t *testing.T) {
	ts := newTestServer()
	// 23:30 UTC is already the next day in the business timezone.
	ts.vehicles.now = func() time.Time { return time.Date(2025, 6, 30, 23, 30, 0, 0, time.UTC) }

	rec := ts.do(http.MethodGet, "/api/vehicles/"+uuid.NewString()+"/booked-dates", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, civil.Date{Year: 2025, Month: 7, Day: 1}, ts.availability.from)
	assert.Equal(t, civil.Date{Year: 2025, Month: 9, Day: 29}, ts.availability.to)
}

func TestDurationOptionsAndFleet(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/duration-options", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var opts pricing.Options
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 14, 21, 30}, opts.HourOptions)

	rec = ts.do(http.MethodGet, "/api/vehicles", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Golf"`)

	rec = ts.do(http.MethodGet, "/api/vehicles/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBooking(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/bookings", `{"duration_kind":"daily","duration_amount":12}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"booking_code":"AB12CD34"`)

	rec = ts.do(http.MethodPost, "/api/bookings", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", errorMessage(t, rec))

	ts.bookings.createErr = service.ErrVehicleUnavailable
	rec = ts.do(http.MethodPost, "/api/bookings", `{}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookingLookupAndCancel(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/bookings/AB12CD34/lookup", `{"email":"amina@example.com"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/api/bookings/AB12CD34/lookup", `{"email":"other@example.com"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/api/bookings/AB12CD34/cancel", `{"email":"amina@example.com"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	ts.bookings.cancelErr = service.ErrCancellationWindow
	rec = ts.do(http.MethodPost, "/api/bookings/AB12CD34/cancel", `{"email":"amina@example.com"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodGet, "/api/bookings/session", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodGet, "/api/bookings/session?session_id=cs_1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLogin(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/admin/login", `{"email":"ops@novadrive.test","password":"letmein!"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signed-token")

	rec = ts.do(http.MethodPost, "/admin/login", `{"email":"ops@novadrive.test","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/admin/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/admin/bookings?status=confirmed&limit=20&offset=40", "", adminHeader(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.BookingFilter{Status: "confirmed", Limit: 20, Offset: 40}, ts.admin.filter)

	rec = ts.do(http.MethodGet, "/admin/bookings?limit=many", "", adminHeader(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodDelete, "/admin/bookings/"+uuid.NewString(), "", adminHeader(t))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, "/admin/vehicles/"+uuid.NewString()+"/calendar?year=2025&month=6", "", adminHeader(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.June, ts.availability.month)

	rec = ts.do(http.MethodPut, "/admin/vehicles/"+uuid.NewString()+"/rates",
		`{"hourly":25,"daily":150,"monthly":3000,"ten_day_package":1200,"fifteen_day_package":1650,"twenty_five_day_package":2500}`,
		adminHeader(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1650.0, ts.admin.card.FifteenDayPackage)

	rec = ts.do(http.MethodPost, "/admin/users", `{"email":"new@novadrive.test","password":"longpassword"}`, adminHeader(t))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func signedEvent(eventType, object string) (string, http.Header) {
	payload := fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return payload, http.Header{"Stripe-Signature": []string{signed.Header}}
}

func TestStripeWebhook_CheckoutCompleted(t *testing.T) {
	ts := newTestServer()
	body, header := signedEvent("checkout.session.completed", `{"id":"cs_1","object":"checkout.session","payment_intent":"pi_1"}`)

	rec := ts.do(http.MethodPost, "/api/stripe/webhook", body, header)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cs_1/pi_1"}, ts.bookings.confirmed)
}

func TestStripeWebhook_ChargeRefunded(t *testing.T) {
	ts := newTestServer()
	body, header := signedEvent("charge.refunded", `{"id":"ch_1","object":"charge","payment_intent":"pi_9"}`)

	rec := ts.do(http.MethodPost, "/api/stripe/webhook", body, header)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"pi_9"}, ts.bookings.refunded)
}

func TestStripeWebhook_Failures(t *testing.T) {
	ts := newTestServer()
	body, _ := signedEvent("checkout.session.completed", `{"id":"cs_1"}`)

	rec := ts.do(http.MethodPost, "/api/stripe/webhook", body, http.Header{"Stripe-Signature": []string{"t=1,v1=deadbeef"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.bookings.confirmed)

	body, header := signedEvent("checkout.session.completed", `{"id":"cs_unknown"}`)
	ts.bookings.confirmErr = service.ErrBookingNotFound
	rec = ts.do(http.MethodPost, "/api/stripe/webhook", body, header)
	assert.Equal(t, http.StatusOK, rec.Code)

	ts.bookings.confirmErr = fmt.Errorf("db unavailable")
	rec = ts.do(http.MethodPost, "/api/stripe/webhook", body, header)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body, header = signedEvent("customer.created", `{"id":"cus_1","object":"customer"}`)
	rec = ts.do(http.MethodPost, "/api/stripe/webhook", body, header)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminCalendar_DefaultsToBusinessMonth(t *testing.T) {
	ts := newTestServer()
	// 23:30 UTC on 31 May is already 1 June in the business timezone.
	ts.adminHandler.now = func() time.Time { return time.Date(2025, 5, 31, 23, 30, 0, 0, time.UTC) }

	rec := ts.do(http.MethodGet, "/admin/vehicles/"+uuid.NewString()+"/calendar", "", adminHeader(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2025, ts.availability.year)
	assert.Equal(t, time.June, ts.availability.month)
}
