package main

import (
	"context"
	"fmt"
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

	"github.com/noah-isme/marktrack-api/internal/config"
	"github.com/noah-isme/marktrack-api/internal/database"
	"github.com/noah-isme/marktrack-api/internal/handler"
	"github.com/noah-isme/marktrack-api/internal/mailer"
	"github.com/noah-isme/marktrack-api/internal/middleware"
	"github.com/noah-isme/marktrack-api/internal/models"
	"github.com/noah-isme/marktrack-api/internal/repository"
	"github.com/noah-isme/marktrack-api/internal/router"
	"github.com/noah-isme/marktrack-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if !cfg.IsProduction() {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(models.AutoMigrateModels()...); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis not configured, failure alerts will not be deduplicated")
	}

	var (
		events   service.EventPublisher
		natsConn *nats.Conn
	)
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
		events = natsConn
	}

	mail, err := buildMailer(cfg, logger)
	if err != nil {
		log.Fatalf("failed to configure mailer: %v", err)
	}

	healthChecks := map[string]handler.HealthCheckFunc{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		healthChecks["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return fmt.Errorf("nats connection %s", natsConn.Status())
			}
			return nil
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	markRepo := repository.NewMarkRepository(db)
	notificationRepo := repository.NewNotificationLogRepository(db)

	reportService := service.NewReportService(studentRepo, subjectRepo, markRepo, cfg.DefaultExamType, cfg.AppName, logger)
	notificationService := service.NewNotificationService(reportService, studentRepo, notificationRepo, mail, redisClient, events, service.NotificationConfig{
		AppName:       cfg.AppName,
		DedupeTTL:     cfg.NotificationDedupe,
		SubjectPrefix: cfg.NATSSubjectPrefix,
	}, logger)
	markService := service.NewMarkService(markRepo, studentRepo, subjectRepo, notificationService, validate, cfg.DefaultExamType, logger)
	subjectService := service.NewSubjectService(subjectRepo, markRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		SubjectHandler:      handler.NewSubjectHandler(subjectService, logger),
		StudentHandler:      handler.NewStudentHandler(studentService, logger),
		MarkHandler:         handler.NewMarkHandler(markService, reportService, validate, logger),
		ReportHandler:       handler.NewReportHandler(reportService, validate, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, validate, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		RateLimiter:         middleware.RateLimit("api", cfg.RateLimitMax, cfg.RateLimitWindow),
		HealthChecks:        healthChecks,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildMailer(cfg config.Config, logger zerolog.Logger) (mailer.Mailer, error) {
	if cfg.MailProvider == config.MailProviderSendGrid {
		return mailer.NewSendGridMailer(mailer.SendGridConfig{
			APIKey:   cfg.SendGridAPIKey,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
			AppName:  cfg.AppName,
		}, logger)
	}
	return mailer.NewLogMailer(logger), nil
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
