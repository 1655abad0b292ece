package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/internal/handler"
	"habittracker/internal/httpserver"
	"habittracker/internal/service"
	"habittracker/internal/store"
	"habittracker/internal/tmpl"
	"habittracker/pkg/config"
	"habittracker/pkg/logger"
	"habittracker/pkg/mq"
	redisclient "habittracker/pkg/redis"
	"habittracker/pkg/util"
)

const readinessTimeout = time.Second

func main() {
	// 1. Load config
	cfg, err := config.Load(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)
	logger := logger.ForMode(cfg.Server.Mode)
	defer logger.Sync()

	logger.Info("Starting habit tracker...",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.Bool("redis_enabled", cfg.Redis.Addr != ""),
		zap.Bool("mq_enabled", cfg.MQ.URL != ""),
	)

	// 2. Store: the only owner of habit state for this process
	habitStore := store.NewSeeded()

	// 3. Submission dedup: Redis when configured, in-memory otherwise
	readiness := map[string]httpserver.ReadinessCheck{}
	var dedup util.OnceGuard
	if cfg.Redis.Addr != "" {
		rdb, err := redisclient.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to init Redis", zap.Error(err))
		}
		defer rdb.Close()
		dedup = util.NewDeduperWithLogger(rdb, cfg.Dedup.TTL, logger)
		readiness["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
			defer cancel()
			return rdb.Ping(ctx).Err()
		}
		logger.Info("Redis deduper enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		dedup = util.NewMemoryDeduper(cfg.Dedup.TTL)
	}

	// 4. Optional snapshot events
	var publisher service.EventPublisher
	if cfg.MQ.URL != "" {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			logger.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer p.Close()
		publisher = p
		readiness["mq"] = func() error {
			if !p.IsConnected() {
				return errors.New("publisher connection closed")
			}
			return nil
		}
		logger.Info("MQ snapshot publisher enabled", zap.String("exchange", p.Exchange()))
	}
	progress := service.NewProgressService(publisher, logger,
		service.WithPublishTimeout(cfg.MQ.PublishTimeout),
	)
	unsubscribe := progress.Attach(habitStore)
	defer unsubscribe()

	// 5. Templates & handlers
	templates, err := tmpl.Load()
	if err != nil {
		logger.Fatal("Failed to load templates", zap.Error(err))
	}
	tokens := util.NewFormTokens(cfg.Form.Secret, cfg.Form.TokenTTL)
	if cfg.Form.Secret == "" {
		logger.Warn("form.secret not set, using a random per-process secret")
	}
	habitHandler := handler.NewHabitHandler(habitStore, templates, tokens, dedup, logger)
	router := httpserver.NewRouter(habitHandler, tokens, logger, readiness)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down habit tracker gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logger.Info("HTTP server stopped")
	}
	logger.Info("habit tracker shutdown complete")
}
