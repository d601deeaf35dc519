package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/tablebook/reservation-service/config"
	"github.com/tablebook/reservation-service/internal/consumer"
	"github.com/tablebook/reservation-service/internal/handler"
	"github.com/tablebook/reservation-service/internal/middleware"
	"github.com/tablebook/reservation-service/internal/repository"
	"github.com/tablebook/reservation-service/internal/service"
	"github.com/tablebook/reservation-service/pkg/cache"
	"github.com/tablebook/reservation-service/pkg/database"
	"github.com/tablebook/reservation-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ consumer: sync venues and tables from the venue service
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	venueConsumer := consumer.NewVenueConsumer(db)
	venueConsumer.Start(msgs)

	// RabbitMQ publisher: reservation lifecycle events
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ publisher: %v", err)
	}
	defer publisher.Close()

	// Repositories
	venueRepo := repository.NewVenueRepository(db)
	tableRepo := repository.NewTableRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	// Service
	reservationSvc := service.NewReservationService(reservationRepo, tableRepo, publisher)

	// Redis-backed rate limiting on the public booking surface; nil client
	// degrades to pass-through
	rdb := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Enabled: cfg.RateLimitEnabled,
		Max:     cfg.RateLimitMax,
		Window:  cfg.RateLimitWindow,
	}, rdb)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "reservation-service"})
	})

	handler.NewReservationHandler(reservationSvc, venueRepo).RegisterRoutes(e, limiter)

	log.Printf("Reservation Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
