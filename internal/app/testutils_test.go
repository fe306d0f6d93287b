package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/metinatakli/room-booking-bridge/api"
	"github.com/metinatakli/room-booking-bridge/internal/availability"
	"github.com/metinatakli/room-booking-bridge/internal/checkout"
	"github.com/metinatakli/room-booking-bridge/internal/mailer"
	"github.com/metinatakli/room-booking-bridge/internal/mocks"
	"github.com/metinatakli/room-booking-bridge/internal/validator"
	"github.com/shopspring/decimal"
)

const testWebhookSecret = "whsec_test_secret"

// newTestApplication builds the application around mocks. Options run before
// the components are wired, so swapped mocks reach every component.
func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config: Config{
			Env:      "test",
			Checkout: CheckoutConfig{URL: "/checkout", Currency: "gbp"},
			BookingEngine: BookingEngineConfig{
				Code:     "abc123",
				URL:      "https://hotels.example.com/reservation",
				Currency: "gbp",
			},
			Stripe: StripeConfig{WebhookSecret: testWebhookSecret},
		},
		validator:       validator.NewValidator(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		mailer:          mailer.NewRecordingMailer(),
		sessionManager:  scs.New(),
		redis:           &mocks.MockRedisClient{},
		inventory:       &mocks.MockInventoryClient{},
		orderRepo:       &mocks.MockOrderRepo{},
		productRepo:     &mocks.MockProductRepo{},
		paymentProvider: &mocks.MockPaymentProvider{},
		synthesizer:     &mocks.MockSynthesizer{},
	}

	for _, opt := range opts {
		opt(app)
	}

	app.aggregator = availability.NewAggregator(app.inventory, app.logger)
	app.calendar = availability.NewPriceCalendar(app.inventory, app.redis, nil, "4242", app.logger)
	app.guard = availability.NewGuard(app.inventory, app.logger)
	app.bookings = checkout.NewSessionStore(app.sessionManager, app.aggregator, app.validator, app.logger)
	app.cart = checkout.NewCartStore(app.sessionManager, app.productRepo)
	app.materializer = checkout.NewMaterializer(
		app.bookings, app.cart, app.productRepo, app.config.Checkout.PlaceholderProductID, app.logger)

	return app
}

func executeFormRequest(t *testing.T, method, target string, form url.Values) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var body io.Reader = http.NoBody
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return httptest.NewRecorder(), r
}

// withCookies carries the session cookie of an earlier response.
func withCookies(r *http.Request, previous *httptest.ResponseRecorder) *http.Request {
	for _, c := range previous.Result().Cookies() {
		r.AddCookie(c)
	}

	return r
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func decodeEnvelope[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var env envelope[T]
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response envelope: %v", err)
	}

	return env
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	t.Helper()

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		validationResp := decodeEnvelope[api.ValidationErrorResponse](t, w)

		if validationResp.Success {
			t.Errorf("Expected success=false in validation error envelope")
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.Data.ValidationErrors {
			errorSet[vErr.Field+" "+vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error '%s' not found in response: %v", tt.wantErrMessage, errorSet)
		}

	default:
		errorResp := decodeEnvelope[api.ErrorResponse](t, w)

		if errorResp.Success {
			t.Errorf("Expected success=false in error envelope")
		}

		if tt.wantErrMessage != "" && errorResp.Data.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Data.Message, tt.wantErrMessage)
		}
	}
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}
