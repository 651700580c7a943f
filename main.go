package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/stripe-bridge/common/auth"
	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
	"github.com/yashrajoria/stripe-bridge/common/logger"
	"github.com/yashrajoria/stripe-bridge/common/middleware"
	"github.com/yashrajoria/stripe-bridge/config"
	"github.com/yashrajoria/stripe-bridge/controllers"
	"github.com/yashrajoria/stripe-bridge/kafka"
	awspkg "github.com/yashrajoria/stripe-bridge/pkg/aws"
	"github.com/yashrajoria/stripe-bridge/routes"
	"github.com/yashrajoria/stripe-bridge/services"
	"github.com/yashrajoria/stripe-bridge/webhook"
)

const serviceName = "stripe-bridge"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Initialize("production").Fatal("Config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- AWS setup ---
	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		logger.Initialize(cfg.Env).Fatal("Failed to load AWS config", zap.Error(err))
	}

	var log *zap.Logger
	cwLogs, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, serviceName)
	if err == nil && cwLogs.IsEnabled() {
		log = logger.InitializeWithWriter(cfg.Env, cwLogs)
		go cwLogs.Run(ctx)
	} else {
		log = logger.Initialize(cfg.Env)
		if err != nil {
			log.Warn("CloudWatch logs disabled (non-fatal)", zap.Error(err))
		}
	}
	defer func() { _ = log.Sync() }()

	if cfg.AWSUseSecrets {
		cfg.UseSecretsManager(awspkg.NewSecretsClient(awsCfg))
		log.Info("Stripe credentials will be read from Secrets Manager", zap.String("secret", cfg.StripeSecretsName))
	}

	metricsClient := awspkg.NewMetricsClient(awsCfg)

	// --- Replay store ---
	replay, err := openReplayStore(ctx, cfg, awsCfg, log)
	if err != nil {
		log.Fatal("Replay store init failed", zap.String("store", cfg.ReplayStore), zap.Error(err))
	}
	defer replay.close()
	go replay.housekeep(ctx, time.Hour, log)

	// --- Stripe ---
	stripeClient := services.NewStripeClient(services.ClientConfig{
		Mode:    cfg.StripeMode,
		TestKey: cfg.StripeTestSecretKey,
		LiveKey: cfg.StripeLiveSecretKey,
		Logger:  log,
	})
	bridge := services.NewBridge(stripeClient, services.NewImageResolver(awspkg.NewS3Presigner(awsCfg), cfg.ImageURLExpiry))

	receiver := webhook.NewReceiver(webhook.ReceiverConfig{
		Verifier: webhook.NewVerifier(cfg.StripeWebhookSecret, cfg.WebhookTolerance, log),
		Store:    replay.store,
		TTL:      cfg.ReplayTTL,
		Metrics:  metricsClient,
		Logger:   log,
	})

	// --- Broadcast subscribers ---
	if cfg.SNSEventsTopicARN != "" {
		receiver.Subscribe(services.NewSNSForwarder(awspkg.NewSNSClient(awsCfg), cfg.SNSEventsTopicARN))
		log.Info("Forwarding events to SNS", zap.String("topic_arn", cfg.SNSEventsTopicARN))
	}
	if cfg.KafkaEventsTopic != "" {
		producer := kafka.NewEventProducer(cfg.KafkaBrokers, cfg.KafkaEventsTopic, log)
		defer func() { _ = producer.Close() }()
		receiver.Subscribe(producer)
	}

	// --- Event destination consumer ---
	if cfg.EventDestinationQueueURL != "" {
		consumer := services.NewEventDestinationConsumer(
			awspkg.NewSQSConsumer(awsCfg, cfg.EventDestinationQueueURL, log),
			receiver,
			log,
		)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Event destination consumer stopped", zap.Error(err))
			}
		}()
	}

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.SecurityHeaders(),
		middleware.MetricsMiddleware(metricsClient, serviceName),
		middleware.Timeout(cfg.RequestTimeout),
		middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitPerMinute/6+1),
		apperrors.ErrorMiddleware(),
	)

	ctrls := routes.Controllers{
		Webhook: controllers.NewWebhookController(receiver, cfg.MaxBodyBytes, log),
		Health:  controllers.NewHealthController(serviceName, replay.checks),
	}
	if cfg.JWTSecret != "" {
		ctrls.Admin = controllers.NewAdminController(bridge.Events, receiver, log)
		ctrls.AdminAuth = auth.AdminAuth(auth.NewTokenValidator(cfg.JWTSecret))
	} else {
		log.Warn("JWT_SECRET not set; admin endpoints disabled")
	}
	routes.RegisterRoutes(r, cfg.WebhookPath, ctrls)

	// --- HTTP server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Stripe bridge started",
			zap.String("port", cfg.Port),
			zap.String("webhook_path", cfg.WebhookPath),
			zap.String("replay_store", cfg.ReplayStore),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	log.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Stripe bridge stopped gracefully")
}
