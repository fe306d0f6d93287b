package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/room-booking-bridge/internal/availability"
	"github.com/metinatakli/room-booking-bridge/internal/catalog"
	"github.com/metinatakli/room-booking-bridge/internal/checkout"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/metinatakli/room-booking-bridge/internal/events"
	"github.com/metinatakli/room-booking-bridge/internal/inventory"
	"github.com/metinatakli/room-booking-bridge/internal/mailer"
	"github.com/metinatakli/room-booking-bridge/internal/payment"
	"github.com/metinatakli/room-booking-bridge/internal/repository"
	"github.com/metinatakli/room-booking-bridge/internal/reservation"
	appvalidator "github.com/metinatakli/room-booking-bridge/internal/validator"
	"github.com/metinatakli/room-booking-bridge/internal/vcs"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "room-booking-bridge"

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager

	inventory   domain.InventoryClient
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository

	aggregator   *availability.Aggregator
	calendar     *availability.PriceCalendar
	guard        *availability.Guard
	bookings     *checkout.SessionStore
	cart         *checkout.CartStore
	materializer *checkout.Materializer
	synthesizer  domain.ReservationSynthesizer

	paymentProvider domain.PaymentProvider
}

type Config struct {
	Port           int
	Env            string
	DB             DBConfig
	Redis          RedisConfig
	Inventory      InventoryConfig
	BookingEngine  BookingEngineConfig
	Checkout       CheckoutConfig
	SMTP           SMTPConfig
	Stripe         StripeConfig
	AMQP           AMQPConfig
	AdminTokenHash string
	Telemetry      TelemetryConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
	Migrate      bool
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type InventoryConfig struct {
	BaseURL      string
	APIKey       string
	PropertyID   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RoomMappings string
	RoomCatalog  string
	SourceID     string
}

type BookingEngineConfig struct {
	Code     string
	URL      string
	Currency string
}

type CheckoutConfig struct {
	URL                  string
	Currency             string
	PlaceholderProductID int64
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	OpsEmail string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessUrl    string
	FailureUrl    string
}

type AMQPConfig struct {
	URL string
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")
	flag.BoolVar(&cfg.DB.Migrate, "db-migrate", false, "Apply database migrations on startup")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.Inventory.BaseURL, "inventory-url", inventory.DefaultBaseURL, "Inventory API base URL")
	flag.StringVar(&cfg.Inventory.APIKey, "inventory-api-key", "", "Inventory API key")
	flag.StringVar(&cfg.Inventory.PropertyID, "inventory-property-id", "", "Inventory property ID")
	flag.DurationVar(&cfg.Inventory.ReadTimeout, "inventory-read-timeout", inventory.DefaultReadTimeout, "Inventory GET timeout")
	flag.DurationVar(&cfg.Inventory.WriteTimeout, "inventory-write-timeout", inventory.DefaultWriteTimeout, "Inventory POST timeout")
	flag.StringVar(&cfg.Inventory.RoomMappings, "room-mappings", "", "Static CODE=ID room mappings, newline or comma separated")
	flag.StringVar(&cfg.Inventory.RoomCatalog, "room-catalog", "", "YAML file with local room content")
	flag.StringVar(&cfg.Inventory.SourceID, "payment-source-id", "s-2-1", "Inventory source ID attached to reservations")

	flag.StringVar(&cfg.BookingEngine.Code, "booking-engine-code", "", "Booking engine code")
	flag.StringVar(&cfg.BookingEngine.URL, "booking-engine-url", "https://hotels.cloudbeds.com/en/reservation", "Booking engine base URL")
	flag.StringVar(&cfg.BookingEngine.Currency, "booking-engine-currency", "gbp", "Booking engine currency")

	flag.StringVar(&cfg.Checkout.URL, "checkout-url", "/checkout", "Where visitors continue after starting a booking")
	flag.StringVar(&cfg.Checkout.Currency, "currency", "gbp", "Order currency")
	flag.Int64Var(&cfg.Checkout.PlaceholderProductID, "placeholder-product-id", 0, "Placeholder product ID, created when missing")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "Room Bookings <no-reply@example.com>", "SMTP sender")
	flag.StringVar(&cfg.SMTP.OpsEmail, "ops-email", "", "Operator address for failed reservation alerts")

	flag.StringVar(&cfg.Stripe.SecretKey, "stripe-key", "", "Stripe secret key")
	flag.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", "", "Stripe webhook secret")
	flag.StringVar(&cfg.Stripe.SuccessUrl, "stripe-success-url", "https://example.com/success.html", "Stripe payment success page")
	flag.StringVar(&cfg.Stripe.FailureUrl, "stripe-failure-url", "https://example.com/failure.html", "Stripe payment failure page")

	flag.StringVar(&cfg.AMQP.URL, "amqp-url", "", "RabbitMQ URL for reservation events")
	flag.StringVar(&cfg.AdminTokenHash, "admin-token-hash", "", "bcrypt hash of the operator bearer token")
	flag.StringVar(&cfg.Telemetry.CollectorURL, "otel-collector-url", "", "OpenTelemetry collector gRPC endpoint")
	flag.Float64Var(&cfg.Telemetry.SampleRatio, "otel-sample-ratio", 1, "Fraction of root traces to sample")
	flag.DurationVar(&cfg.Telemetry.MetricInterval, "otel-metric-interval", 15*time.Second, "Metric export interval")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stripe.Key = cfg.Stripe.SecretKey

	logger := newLogger(cfg)

	if cfg.DB.Migrate {
		err := MigrateUp(cfg.DB.DSN)
		if err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	inventoryClient, err := inventory.NewClient(inventory.Config{
		BaseURL:      cfg.Inventory.BaseURL,
		APIKey:       cfg.Inventory.APIKey,
		PropertyID:   cfg.Inventory.PropertyID,
		ReadTimeout:  cfg.Inventory.ReadTimeout,
		WriteTimeout: cfg.Inventory.WriteTimeout,
	}, logger)
	if err != nil {
		return err
	}

	roomCatalog, err := catalog.LoadFile(cfg.Inventory.RoomCatalog)
	if err != nil {
		return err
	}

	var paymentProvider domain.PaymentProvider = payment.NewStripePaymentProvider(
		cfg.Stripe.FailureUrl, cfg.Stripe.SuccessUrl, cfg.Checkout.Currency)
	if cfg.Stripe.SecretKey == "" {
		logger.Warn("stripe key not set, orders skip the payment page")
		paymentProvider = payment.NewSandboxProvider(cfg.Stripe.SuccessUrl)
	}

	var publisher domain.EventPublisher = events.NewNoopPublisher(logger)
	if cfg.AMQP.URL != "" {
		conn, err := amqp.Dial(cfg.AMQP.URL)
		if err != nil {
			return fmt.Errorf("connect to rabbitmq: %w", err)
		}
		defer conn.Close()

		rabbit, err := events.NewRabbitPublisher(conn)
		if err != nil {
			return err
		}
		defer rabbit.Close()

		publisher = rabbit
	}

	app, err := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		NewSessionManager(redisClient, cfg.Env),
		inventoryClient,
		roomCatalog,
		repository.NewPostgresOrderRepository(db),
		repository.NewPostgresProductRepository(db),
		paymentProvider,
		publisher,
	)
	if err != nil {
		return err
	}

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	return app.run()
}

func newLogger(cfg Config) *slog.Logger {
	handler := slog.Handler(slog.NewTextHandler(os.Stdout, nil))

	if cfg.Telemetry.CollectorURL != "" {
		handler = newFanoutHandler(handler, otelslog.NewHandler(serviceName))
	}

	return slog.New(handler)
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	mailer mailer.Mailer,
	sessionManager *scs.SessionManager,
	inventoryClient domain.InventoryClient,
	allowList domain.RoomAllowList,
	orderRepo domain.OrderRepository,
	productRepo domain.ProductRepository,
	paymentProvider domain.PaymentProvider,
	publisher domain.EventPublisher) (*Application, error) {

	aggregator := availability.NewAggregator(inventoryClient, logger)
	bookings := checkout.NewSessionStore(sessionManager, aggregator, validator, logger)
	cart := checkout.NewCartStore(sessionManager, productRepo)

	resolver := reservation.NewRoomResolver(
		inventoryClient,
		reservation.ParseRoomMappings(cfg.Inventory.RoomMappings),
		logger,
	)

	synthesizer, err := reservation.NewSynthesizer(
		reservation.Config{
			PropertyID: cfg.Inventory.PropertyID,
			SourceID:   cfg.Inventory.SourceID,
			OpsEmail:   cfg.SMTP.OpsEmail,
		},
		orderRepo,
		inventoryClient,
		resolver,
		reservation.NewRedisLocker(redisClient, logger),
		publisher,
		mailer,
		logger,
	)
	if err != nil {
		return nil, err
	}

	return &Application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		validator:      validator,
		mailer:         mailer,
		sessionManager: sessionManager,
		inventory:      inventoryClient,
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		aggregator:     aggregator,
		calendar: availability.NewPriceCalendar(
			inventoryClient, redisClient, allowList, cfg.Inventory.PropertyID, logger),
		guard:           availability.NewGuard(inventoryClient, logger),
		bookings:        bookings,
		cart:            cart,
		materializer:    checkout.NewMaterializer(bookings, cart, productRepo, cfg.Checkout.PlaceholderProductID, logger),
		synthesizer:     synthesizer,
		paymentProvider: paymentProvider,
	}, nil
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 45 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "version", version)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
