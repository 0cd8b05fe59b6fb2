package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"callpulse/internal/app"
	"callpulse/internal/cache"
	"callpulse/internal/config"
	"callpulse/internal/repository"
	"callpulse/internal/service"
	"callpulse/internal/transport/rest"
	"callpulse/internal/transport/ws"
	"callpulse/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	log.Info("starting survey decision engine")

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("failed to connect to MongoDB", "error", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("failed to ping MongoDB", "error", err)
	}
	log.Info("connected to MongoDB", "db", cfg.MongoDB)

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("failed to ping Redis", "error", err)
	}
	log.Info("connected to Redis", "addr", cfg.RedisAddr)

	// Storage layer
	a := &app.App{
		TemplateRepo:    repository.NewTemplateRepository(db),
		InstanceRepo:    repository.NewInstanceRepository(db),
		ResponseRepo:    repository.NewResponseRepository(db),
		EligibilityRepo: repository.NewEligibilityRepository(db),
		WebhookRepo:     repository.NewWebhookEventRepository(db),
		AnalyticsCache:  cache.NewAnalyticsCache(rdb),
	}

	// The ledger upsert relies on this unique index.
	if err := a.EligibilityRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to create ledger indexes", "error", err)
	}

	// WebSocket hub for supervisor alert streams
	wsHub := ws.NewHub(log)

	// Services
	authSvc := service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret)
	surveySvc := service.NewSurveyService(a.TemplateRepo, a.InstanceRepo)
	eligibilitySvc := service.NewEligibilityService(a.EligibilityRepo, a.InstanceRepo, cfg.MaxSurveysPerCaller, cfg.DefaultCooldownHours)
	alertSvc := service.NewAlertService(cfg.AlertKeywords)
	sentimentSvc := service.NewSentimentService(cfg.SentimentAPIURL, log)
	webhookSvc := service.NewWebhookService(a.WebhookRepo, cfg.WebhookURL, cfg.WebhookSecret, log)
	analyticsSvc := service.NewAnalyticsService(a.ResponseRepo, a.InstanceRepo, a.AnalyticsCache, log)
	offerSvc := service.NewOfferService(a.InstanceRepo, eligibilitySvc, log)
	transferCli := service.NewTransferClient(cfg.CalldURL, cfg.SurveyContext, cfg.SurveyExten, cfg.SurveyTimeout, log)
	responseSvc := service.NewResponseService(
		a.ResponseRepo, a.InstanceRepo,
		eligibilitySvc, alertSvc, sentimentSvc, webhookSvc, analyticsSvc,
		wsHub, log,
	)

	router := rest.NewRouter(&rest.Container{
		Config:             cfg,
		AuthService:        authSvc,
		SurveyService:      surveySvc,
		ResponseService:    responseSvc,
		OfferService:       offerSvc,
		EligibilityService: eligibilitySvc,
		AnalyticsService:   analyticsSvc,
		WebhookService:     webhookSvc,
		TransferClient:     transferCli,
		WSHub:              wsHub,
		Log:                log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Info("server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen and serve", "error", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
