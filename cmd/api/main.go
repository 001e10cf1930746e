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
	"github.com/rs/zerolog"

	"github.com/noah-isme/eventhub-api/internal/config"
	"github.com/noah-isme/eventhub-api/internal/database"
	"github.com/noah-isme/eventhub-api/internal/handler"
	"github.com/noah-isme/eventhub-api/internal/middleware"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/repository"
	"github.com/noah-isme/eventhub-api/internal/router"
	"github.com/noah-isme/eventhub-api/internal/service"
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
		&models.Company{},
		&models.User{},
		&models.ApprovalRequest{},
		&models.Event{},
		&models.Registration{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn := database.ConnectNATS(cfg.NATSURL, logger)
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	eventRepo := repository.NewEventRepository(db)
	requestRepo := repository.NewApprovalRequestRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	notifier := service.NewNotifier(natsConn, cfg.NATSSubjectBase, logger)
	activityService := service.NewActivityService(activityRepo, userRepo, logger)
	tokenService := service.NewTokenService(redisClient, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, logger)
	authService := service.NewAuthService(userRepo, companyRepo, tokenService, activityService, validate, logger)
	approvalService := service.NewApprovalService(userRepo, requestRepo, activityService, notifier, validate, logger)
	eventService := service.NewEventService(eventRepo, userRepo, registrationRepo, activityService, notifier, validate, logger)
	companyService := service.NewCompanyService(companyRepo, userRepo, activityService, redisClient, cfg.CompanyCacheTTL, validate, logger)
	profileService := service.NewProfileService(userRepo, registrationRepo, activityService, validate, logger)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := service.EnsureDean(seedCtx, userRepo, service.DeanSeed{
		Name:     cfg.DeanName,
		Email:    cfg.DeanEmail,
		Password: cfg.DeanPassword,
	}, logger); err != nil {
		log.Fatalf("failed to seed dean account: %v", err)
	}
	cancelSeed()

	authHandler := handler.NewAuthHandler(authService, logger)
	companyHandler := handler.NewCompanyHandler(companyService, logger)
	eventHandler := handler.NewEventHandler(eventService, logger)
	requestHandler := handler.NewRequestHandler(approvalService, logger)
	profileHandler := handler.NewProfileHandler(profileService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:     authHandler,
		CompanyHandler:  companyHandler,
		EventHandler:    eventHandler,
		RequestHandler:  requestHandler,
		ProfileHandler:  profileHandler,
		ActivityHandler: activityHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
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
