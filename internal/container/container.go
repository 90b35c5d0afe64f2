package container

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/travelmate-api/app/db"
	"github.com/FACorreiaa/travelmate-api/config"
	"github.com/FACorreiaa/travelmate-api/internal/api/auth"
	"github.com/FACorreiaa/travelmate-api/internal/api/chatbot"
	"github.com/FACorreiaa/travelmate-api/internal/api/completions"
	"github.com/FACorreiaa/travelmate-api/internal/api/packing"
	"github.com/FACorreiaa/travelmate-api/internal/api/tips"
	"github.com/FACorreiaa/travelmate-api/internal/api/trip"
	"github.com/FACorreiaa/travelmate-api/internal/api/weather"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	AuthHandler    *auth.HandlerImpl
	AuthMiddleware *auth.Middleware
	TripHandler    *trip.HandlerImpl
	WeatherHandler *weather.HandlerImpl
	PackingHandler *packing.HandlerImpl
	TipsHandler    *tips.HandlerImpl
	ChatHandler    *chatbot.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	// Initialize database
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.Any("error", err))
		return nil, err
	}

	// Completion provider, shared by every generator
	aiClient, err := completions.NewClient(cfg.AI, logger)
	if err != nil {
		logger.Error("Failed to initialize completion client", slog.Any("error", err))
		return nil, err
	}

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewService(authRepo, *cfg, logger)
	authHandler := auth.NewHandlerImpl(authService, logger)
	authMiddleware := auth.NewMiddleware(cfg.Auth.JWTSecret, logger)

	tripRepo := trip.NewPostgresTripRepo(pool, logger)
	tripService := trip.NewService(tripRepo, logger)
	tripHandler := trip.NewHandlerImpl(tripService, logger)

	weatherService := weather.NewService(cfg.Weather, logger)
	weatherHandler := weather.NewHandlerImpl(weatherService, tripService, logger)

	packingRepo := packing.NewPostgresPackingRepo(pool, logger)
	packingService := packing.NewService(packingRepo, tripRepo, weatherService, aiClient, logger)
	packingHandler := packing.NewHandlerImpl(packingService, logger)

	tipsRepo := tips.NewPostgresTipsRepo(pool, logger)
	tipsService := tips.NewService(tipsRepo, tripRepo, aiClient, logger)
	tipsHandler := tips.NewHandlerImpl(tipsService, logger)

	chatRepo := chatbot.NewPostgresChatRepo(pool, logger)
	chatService := chatbot.NewService(chatRepo, tripRepo, aiClient, logger)
	chatHandler := chatbot.NewHandlerImpl(chatService, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Pool:           pool,
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		TripHandler:    tripHandler,
		WeatherHandler: weatherHandler,
		PackingHandler: packingHandler,
		TipsHandler:    tipsHandler,
		ChatHandler:    chatHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
