// cmd/claims-gateway/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"claims-gateway/internal/assistant"
	"claims-gateway/internal/chat"
	"claims-gateway/internal/claims"
	"claims-gateway/internal/claims/memstore"
	"claims-gateway/internal/claims/restapi"
	"claims-gateway/internal/claims/tablestore"
	"claims-gateway/internal/common/config"
	"claims-gateway/internal/common/database"
	"claims-gateway/internal/common/logger"
	"claims-gateway/internal/common/observability"
	"claims-gateway/internal/notify"
	"claims-gateway/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff.
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
			delay *= 2
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
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting claims gateway...",
		zap.String("environment", cfg.App.Environment),
		zap.String("primaryBackend", cfg.Backends.Primary),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Primary backend ---
	var primary claims.Primary
	switch cfg.Backends.Primary {
	case "postgres":
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		if err := tablestore.Migrate(ctx, pg.GetDB()); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
		primary = tablestore.New(pg.GetDB(), log)
		zapLog.Info("PostgreSQL table store ready")
	default:
		primary = memstore.NewSeeded(log)
		zapLog.Info("In-memory table store ready (seeded)")
	}

	// --- Secondary backend (REST fallback) ---
	secondary, err := restapi.NewClient(restapi.Config{
		BaseURL:        cfg.Backends.REST.BaseURL,
		Timeout:        config.GetDuration(cfg.Backends.REST.Timeout),
		CSRFCookieName: cfg.Backends.REST.CSRFCookieName,
	}, log)
	if err != nil {
		zapLog.Fatal("rest backend client failed", zap.Error(err))
	}

	// --- Redis (chat sessions) ---
	var sessionStore *chat.SessionStore
	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err == nil {
		err = redisClient.Ping(ctx)
	}
	if err != nil {
		zapLog.Warn("redis unavailable, chat transcripts will not be persisted", zap.Error(err))
	} else {
		defer redisClient.Close()
		sessionStore = chat.NewSessionStore(
			redisClient.Client,
			time.Duration(cfg.Chat.SessionTTL)*time.Second,
			log,
		)
		zapLog.Info("Redis connected successfully")
	}

	// --- Service wiring ---
	serviceOpts := []claims.Option{claims.WithObservability(obs)}

	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		notifier, err := notify.New(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("notifier init failed", zap.Error(err))
		}
		serviceOpts = append(serviceOpts, claims.WithNotifier(notifier))
		zapLog.Info("Decision notifications enabled")
	}

	service := claims.NewService(primary, secondary, log, serviceOpts...)

	resolverOpts := []chat.ResolverOption{chat.WithBotName(cfg.Chat.BotName)}
	if cfg.Database.Elasticsearch.Enabled {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch client failed", zap.Error(err))
		}
		index := assistant.NewIndex(esClient.Client, cfg.Database.Elasticsearch.Index, log)
		resolverOpts = append(resolverOpts, chat.WithSearcher(index))
		zapLog.Info("Assistant search index enabled")
	}

	resolver := chat.NewResolver(service, log, resolverOpts...)
	conversation := chat.NewConversation(resolver, sessionStore, log)

	// --- HTTP server ---
	srv := server.New(cfg.Server, service, conversation, log)
	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping gateway...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown error", zap.Error(err))
	}

	zapLog.Info("Claims gateway stopped")
}
