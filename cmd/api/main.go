package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/leaseline/lease-concierge/internal/api/router"
	"github.com/leaseline/lease-concierge/internal/chat"
	appconfig "github.com/leaseline/lease-concierge/internal/config"
	"github.com/leaseline/lease-concierge/internal/db"
	"github.com/leaseline/lease-concierge/internal/inventory"
	"github.com/leaseline/lease-concierge/internal/notify"
	"github.com/leaseline/lease-concierge/internal/observability/metrics"
	"github.com/leaseline/lease-concierge/internal/webchat"
	"github.com/leaseline/lease-concierge/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lease-concierge API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"property", cfg.PropertyName,
	)

	handle, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer handle.Close()
	if err := db.Migrate(handle); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var sessionStore chat.SessionStore = chat.NewSQLSessionStore(handle)
	if cfg.RedisAddr != "" {
		redisOptions := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(redisOptions)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not available, running without session cache", "error", err)
		} else {
			sessionStore = chat.NewCachedSessionStore(sessionStore, redisClient, nil, logger)
			logger.Info("session cache enabled", "addr", cfg.RedisAddr)
		}
	}

	inv := inventory.NewStore(logger, inventory.WithUnavailabilityRate(cfg.UnavailabilityRate))

	sender := buildEmailSender(cfg, logger)
	notifier := notify.NewService(sender, cfg.EmailRetryMax, cfg.EmailRetryDelay, logger)

	var llm chat.LLMClient
	if cfg.OpenAIAPIKey != "" {
		llm = chat.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel,
			cfg.OpenAIMaxTokens, cfg.OpenAITemperature, logger)
		logger.Info("assistant replies enabled", "model", cfg.OpenAIModel)
	} else {
		logger.Warn("OPENAI_API_KEY not set, using canned assistant replies")
	}

	chatMetrics := metrics.NewChatMetrics(nil)

	engine := chat.NewEngine(sessionStore, inv, notifier, llm, chatMetrics, chat.EngineConfig{
		PropertyName:    cfg.PropertyName,
		PropertyAddress: cfg.PropertyAddress,
		OfficePhone:     cfg.LeasingOfficePhone,
	}, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chat.NewHandler(engine, logger),
		InventoryHandler:   inventory.NewHandler(inv, logger),
		WebchatHandler:     webchat.NewHandler(engine, webchat.WidgetJS, logger),
		MetricsHandler:     promhttp.Handler(),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
		PropertyName:       cfg.PropertyName,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch strings.ToLower(cfg.EmailProvider) {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender != nil {
			logger.Info("email delivery via sendgrid", "from", cfg.EmailFromAddress)
			return sender
		}
		logger.Warn("SENDGRID_API_KEY not set, falling back to stub sender")
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Warn("failed to load AWS config, falling back to stub sender", "error", err)
			break
		}
		client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
			if cfg.AWSEndpointOverride != "" {
				o.BaseEndpoint = &cfg.AWSEndpointOverride
			}
		})
		sender := notify.NewSESSender(client, notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender != nil {
			logger.Info("email delivery via SES", "region", cfg.AWSRegion)
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
