package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"pocketlog/internal/config"
	"pocketlog/internal/database"
	"pocketlog/internal/handlers"
	"pocketlog/internal/metrics"
	"pocketlog/internal/middleware"
	"pocketlog/internal/repositories"
	"pocketlog/internal/services"
	"pocketlog/pkg/blobstore"
	"pocketlog/pkg/kakao"
	"pocketlog/pkg/rabbitmq"
)

// App is the HTTP server together with the resources it owns.
type App struct {
	*fiber.App

	db      *gorm.DB
	mq      *rabbitmq.Client
	watcher *services.BudgetWatcher
}

// NewApp wires storage, services and routes from cfg.
// RabbitMQ is optional: without a URL, or when the broker is unreachable, events are not published.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	store, err := blobstore.NewLocalStore(cfg.Storage.Path, cfg.Storage.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media storage: %w", err)
	}

	var mqClient *rabbitmq.Client
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, events disabled: %v", err)
		} else {
			publisher = mqClient
		}
	}

	tokens, err := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.KeyID, cfg.JWT.TTL, services.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		return nil, err
	}
	kakaoClient := kakao.NewClient(kakao.Config{
		ClientID:     cfg.Kakao.ClientID,
		ClientSecret: cfg.Kakao.ClientSecret,
		AuthURL:      cfg.Kakao.AuthURL,
		TokenURL:     cfg.Kakao.TokenURL,
		ProfileURL:   cfg.Kakao.ProfileURL,
		Timeout:      cfg.Kakao.Timeout,
	})

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	followRepo := repositories.NewGORMFollowRepository(db)
	spendingRepo := repositories.NewGORMSpendingRepository(db)
	goalRepo := repositories.NewGORMGoalRepository(db)
	reactionRepo := repositories.NewGORMReactionRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo, followRepo, store)
	spendingService := services.NewSpendingService(spendingRepo, followRepo, store, publisher, cfg.Feed.PageSize)
	goalService := services.NewGoalService(goalRepo, spendingService)
	reactionService := services.NewReactionService(reactionRepo)
	authService, err := services.NewAuthService(kakaoClient, userService, tokens, publisher)
	if err != nil {
		return nil, err
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, cfg.Kakao.RedirectLocal, cfg.Kakao.RedirectProd)
	userHandler := handlers.NewUserHandler(userService, spendingService)
	spendingHandler := handlers.NewSpendingHandler(spendingService, goalService)
	reactionHandler := handlers.NewReactionHandler(reactionService)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    32 << 20,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "disabled"
		if publisher != nil {
			status = "connected"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitMQ": status,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Static(cfg.Storage.PublicURL, store.BasePath())

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	userHandler.RegisterPublicRoutes(api)

	protected := api.Group("", middleware.AuthRequired(authService))
	userHandler.RegisterRoutes(protected)
	spendingHandler.RegisterRoutes(protected)
	reactionHandler.RegisterRoutes(protected)

	return &App{
		App:     app,
		db:      db,
		mq:      mqClient,
		watcher: services.NewBudgetWatcher(goalService),
	}, nil
}

// StartConsumers attaches the budget watcher to its queue. It is a no-op without a broker.
func (a *App) StartConsumers() error {
	if a.mq == nil {
		return nil
	}
	log.Printf("Starting RabbitMQ consumer on %s...", rabbitmq.BudgetQueue)
	return a.mq.Consume(rabbitmq.BudgetQueue, a.watcher.HandleDelivery)
}

// Close releases the broker connection and the database pool.
func (a *App) Close() {
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			log.Printf("Error closing RabbitMQ connection: %v", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}
