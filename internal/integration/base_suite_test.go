package integration_test

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/metinatakli/room-booking-bridge/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	dbName         = "room_booking_bridge"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"

	testAdminToken    = "integration-operator-token"
	testWebhookSecret = "whsec_integration_secret"
	testSuccessURL    = "https://shop.example.com/checkout/order-received"
)

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
	inventory      *fakeInventory
	server         *httptest.Server
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	redisContainer, err := getCacheContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	s.dbContainer = postgresContainer
	s.cacheContainer = redisContainer
	s.inventory = newFakeInventory()

	adminHash, err := bcrypt.GenerateFromPassword([]byte(testAdminToken), bcrypt.MinCost)
	if err != nil {
		log.Printf("failed to hash admin token: %s", err)
		return
	}

	cfg := app.Config{
		Port: 3000,
		Env:  "test",
		DB: app.DBConfig{
			DSN:          postgresContainer.ConnectionString,
			MaxOpenConns: 25,
			MaxIdleTime:  2 * time.Minute,
		},
		Redis: app.RedisConfig{
			URL:          redisContainer.ConnectionString,
			MaxOpenConns: 10,
			MaxIdleConns: 10,
			MaxIdleTime:  2 * time.Minute,
		},
		Inventory: app.InventoryConfig{
			BaseURL:    s.inventory.URL(),
			APIKey:     testAPIKey,
			PropertyID: "4242",
			SourceID:   "s-1-1",
		},
		BookingEngine: app.BookingEngineConfig{
			Code:     "abc123",
			URL:      "https://hotels.example.com/reservation",
			Currency: "gbp",
		},
		Checkout: app.CheckoutConfig{
			URL:      "/checkout",
			Currency: "gbp",
		},
		Stripe: app.StripeConfig{
			WebhookSecret: testWebhookSecret,
			SuccessUrl:    testSuccessURL,
		},
		AdminTokenHash: string(adminHash),
	}

	testApp, err := newTestApp(cfg)
	if err != nil {
		log.Printf("cannot initialize app: %s", err)
		return
	}

	s.app = testApp
	s.server = httptest.NewServer(testApp.App.Routes())
}

func (s *BaseSuite) TearDownSuite() {
	s.server.Close()
	s.inventory.Close()
	s.app.DB.Close()
	s.app.RedisClient.Close()
	if err := testcontainers.TerminateContainer(s.dbContainer.Container); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

func (s *BaseSuite) SetupTest() {
	s.inventory.Reset()

	_, err := s.app.DB.Exec(context.Background(), "TRUNCATE orders, products RESTART IDENTITY CASCADE")
	s.Require().NoError(err)

	err = s.app.RedisClient.FlushDB(context.Background()).Err()
	s.Require().NoError(err)
}

type Scenario struct {
	Name             string
	Method           string
	URL              string
	Form             url.Values
	Headers          map[string]string
	Cookies          []*http.Cookie
	ExpectedStatus   int
	ExpectedResponse string
	BeforeTestFunc   func(t testing.TB, app *TestApp)
	AfterTestFunc    func(t testing.TB, app *TestApp, res *http.Response)
}

func (s Scenario) Run(t *testing.T, testApp *TestApp) {
	t.Run(s.Name, func(t *testing.T) {
		req := prepareRequest(s.Method, s.URL, s.Form, s.Headers, s.Cookies)

		if s.BeforeTestFunc != nil {
			s.BeforeTestFunc(t, testApp)
		}

		rec := httptest.NewRecorder()
		testApp.App.Routes().ServeHTTP(rec, req)

		res := rec.Result()
		defer res.Body.Close()

		assert.Equal(t, s.ExpectedStatus, res.StatusCode)

		if s.ExpectedResponse != "" {
			compareResponse(t, res.Body, s.ExpectedResponse)
		}

		if s.AfterTestFunc != nil {
			s.AfterTestFunc(t, testApp, res)
		}
	})
}

// newBrowser returns a client that keeps the session cookie between calls,
// like the visitor's browser does.
func (s *BaseSuite) newBrowser() *browser {
	return &browser{t: s.T(), server: s.server, cookies: []*http.Cookie{}}
}

type browser struct {
	t       *testing.T
	server  *httptest.Server
	cookies []*http.Cookie
}

func (b *browser) do(method, path string, form url.Values, headers map[string]string) *http.Response {
	b.t.Helper()

	req := prepareRequest(method, b.server.URL+path, form, headers, b.cookies)
	req.RequestURI = ""

	res, err := b.server.Client().Do(req)
	require.NoError(b.t, err)

	for _, c := range res.Cookies() {
		b.keep(c)
	}

	return res
}

func (b *browser) keep(cookie *http.Cookie) {
	for i, c := range b.cookies {
		if c.Name == cookie.Name {
			b.cookies[i] = cookie
			return
		}
	}

	b.cookies = append(b.cookies, cookie)
}
