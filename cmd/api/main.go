package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examind/examind-api/internal/config"
	"github.com/examind/examind-api/internal/database"
	"github.com/examind/examind-api/internal/events"
	"github.com/examind/examind-api/internal/grading"
	"github.com/examind/examind-api/internal/handler"
	"github.com/examind/examind-api/internal/middleware"
	"github.com/examind/examind-api/internal/models"
	"github.com/examind/examind-api/internal/repository"
	"github.com/examind/examind-api/internal/router"
	"github.com/examind/examind-api/internal/service"
	"github.com/examind/examind-api/pkg/grader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Course{},
		&models.Exam{},
		&models.Question{},
		&models.Choice{},
		&models.Submission{},
		&models.SubmissionAnswer{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	provider, err := grader.NewOpenAIProvider(grader.OpenAIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.GradingModel,
		Timeout:     cfg.GradingTimeout,
		MaxRetries:  cfg.GradingMaxRetries,
		BackoffBase: cfg.GradingBackoff,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to create grading provider: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	examRepo := repository.NewExamRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	gradingService := grading.NewService(provider, logger)
	publisher := events.NewNATSPublisher(natsConn, "", logger)

	examService := service.NewExamService(examRepo, redisClient, cfg.ExamCacheTTL, logger)
	submissionService := service.NewSubmissionService(submissionRepo, examRepo, gradingService, publisher, validate, logger)

	examHandler := handler.NewExamHandler(examService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ExamHandler:       examHandler,
		SubmissionHandler: submissionHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
