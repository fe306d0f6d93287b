package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/room-booking-bridge/internal/app"
	"github.com/metinatakli/room-booking-bridge/internal/catalog"
	"github.com/metinatakli/room-booking-bridge/internal/events"
	"github.com/metinatakli/room-booking-bridge/internal/inventory"
	"github.com/metinatakli/room-booking-bridge/internal/mailer"
	"github.com/metinatakli/room-booking-bridge/internal/payment"
	"github.com/metinatakli/room-booking-bridge/internal/repository"
	appvalidator "github.com/metinatakli/room-booking-bridge/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App         *app.Application
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	Mailer      *mailer.RecordingMailer
	Orders      *repository.PostgresOrderRepository
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewRecordingMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient, cfg.Env)

	inventoryClient, err := inventory.NewClient(inventory.Config{
		BaseURL:    cfg.Inventory.BaseURL,
		APIKey:     cfg.Inventory.APIKey,
		PropertyID: cfg.Inventory.PropertyID,
	}, logger)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	roomCatalog, err := catalog.LoadFile(cfg.Inventory.RoomCatalog)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	orderRepo := repository.NewPostgresOrderRepository(db)
	productRepo := repository.NewPostgresProductRepository(db)

	paymentProvider := payment.NewSandboxProvider(cfg.Stripe.SuccessUrl)

	application, err := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mailer,
		sessionManager,
		inventoryClient,
		roomCatalog,
		orderRepo,
		productRepo,
		paymentProvider,
		events.NewNoopPublisher(logger),
	)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	return &TestApp{
		App:         application,
		DB:          db,
		RedisClient: redisClient,
		Mailer:      mailer,
		Orders:      orderRepo,
	}, nil
}
