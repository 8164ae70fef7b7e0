// cmd/api-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"membership-backend/internal/api/admin"
	"membership-backend/internal/api/auth"
	"membership-backend/internal/api/membership"
	"membership-backend/internal/api/newsletter"
	"membership-backend/internal/api/notification"
	"membership-backend/internal/api/profile"
	commonauth "membership-backend/internal/common/auth"
	"membership-backend/internal/common/aws"
	"membership-backend/internal/common/config"
	"membership-backend/internal/common/database"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting api-server...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if err := database.Migrate(ctx, pg); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	zapLog.Info("Schema is up to date")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init External Service Clients ---
	var sesClient *aws.SESClient
	var snsClient *aws.SNSClient

	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err = aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		zapLog.Info("SES client initialized")
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err = aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		zapLog.Info("SNS client initialized")
	}

	tokens := commonauth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry())

	// --- Assemble Services & Handlers ---
	var dispatcher *notification.Dispatcher
	if sesClient != nil || snsClient != nil {
		// Interface values must stay nil when the concrete client is
		// disabled, so the conversion happens per branch.
		var ses notification.SESService
		var sns notification.SNSService
		if sesClient != nil {
			ses = sesClient
		}
		if snsClient != nil {
			sns = snsClient
		}
		dispatcher = notification.NewDispatcher(pg.DB, ses, sns, cfg.Notifications, log)
	}

	var mailer auth.Mailer
	if sesClient != nil {
		mailer = auth.NewSESMailer(sesClient, cfg.Integrations.AWS.SES.FromEmail, log)
	} else {
		mailer = auth.NewNoOpMailer(log)
	}

	otps := auth.NewOTPStore(rdb.GetClient(), cfg.Auth.OTPExpiry())

	notificationSvc := notification.NewService(notification.NewPostgresStore(pg.DB), dispatcher, log)
	authSvc := auth.NewService(cfg.Auth, auth.NewPostgresUserStore(pg.DB), otps, mailer, tokens, log)
	profileSvc := profile.NewService(profile.NewPostgresStore(pg.DB), log)
	membershipSvc := membership.NewService(membership.NewPostgresStore(pg.DB), log)
	newsletterSvc := newsletter.NewService(newsletter.NewPostgresStore(pg.DB), log)
	adminSvc := admin.NewService(admin.NewPostgresStore(pg.DB), notificationSvc, cfg.Auth, log)

	srv := server.New(cfg.Server, tokens, server.Handlers{
		Auth:         auth.NewHandler(authSvc, log),
		Profile:      profile.NewHandler(profileSvc, log),
		Membership:   membership.NewHandler(membershipSvc, log),
		Newsletter:   newsletter.NewHandler(newsletterSvc),
		Notification: notification.NewHandler(notificationSvc, log),
		Admin:        admin.NewHandler(adminSvc, log),
	}, log)

	httpServer := srv.HTTPServer()

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("api-server stopped gracefully")
}
