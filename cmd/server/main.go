package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zzy/curiosity-engine-go/internal/answer"
	"github.com/zzy/curiosity-engine-go/internal/api"
	"github.com/zzy/curiosity-engine-go/internal/backup"
	"github.com/zzy/curiosity-engine-go/internal/config"
	"github.com/zzy/curiosity-engine-go/internal/llm"
	"github.com/zzy/curiosity-engine-go/internal/logger"
	"github.com/zzy/curiosity-engine-go/internal/metrics"
	"github.com/zzy/curiosity-engine-go/internal/ratelimit"
	"github.com/zzy/curiosity-engine-go/internal/search"
	"github.com/zzy/curiosity-engine-go/internal/sentry"
	"github.com/zzy/curiosity-engine-go/internal/storage"
	"github.com/zzy/curiosity-engine-go/internal/suggest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithOptions(logger.Options{
		Level:            cfg.LogLevel,
		BetterstackToken: cfg.BetterstackToken,
	}, os.Stdout)
	log.Info("Starting Curiosity Engine Server")

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed, continuing without it")
	}
	defer sentry.Flush(2 * time.Second)

	// Optional snapshot client, used for restore on boot and periodic upload.
	var backupClient *backup.Client
	if cfg.BackupEnabled() {
		backupClient, err = backup.NewClient(context.Background(), backup.ClientConfig{
			Endpoint:    cfg.BackupEndpoint,
			AccessKeyID: cfg.BackupAccessKeyID,
			SecretKey:   cfg.BackupSecretKey,
			Bucket:      cfg.BackupBucket,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to create backup client")
		}
		if err := backup.RestoreIfMissing(context.Background(), backupClient, cfg.BackupKey, cfg.SQLitePath()); err != nil {
			log.WithError(err).Fatal("Failed to restore database snapshot")
		}
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Prometheus registry with runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	client, err := llm.NewClient(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to create chat client")
	}
	log.WithField("provider", client.Provider()).Info("Chat client created")

	svc := answer.NewService(db, db, client, m, cfg.MaxQuestionLength)

	// Search index over question history. Search degrades to substring
	// matching when the index cannot be built.
	index, err := search.NewIndex()
	if err != nil {
		log.WithError(err).Warn("Failed to create search index, BM25 search disabled")
		index = nil
	} else {
		questions, err := db.ListQuestions(context.Background())
		if err != nil {
			log.WithError(err).Warn("Failed to load questions for search index")
		} else if err := index.Rebuild(questions); err != nil {
			log.WithError(err).Warn("Failed to build search index")
		} else {
			log.WithField("questions", index.Size()).Info("Search index built")
		}
	}

	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Burst:         cfg.SubmitRateBurst,
		RefillRate:    cfg.SubmitRateRefill,
		CleanupPeriod: 5 * time.Minute,
		OnDrop:        func() { m.RateLimiterDropped.Inc() },
	})
	defer limiter.Stop()

	handler := api.NewHandler(svc, db, db, index, suggest.NewPool(), limiter, m, log)

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log, m))

	setupRoutes(router, handler, db, index, registry, cfg)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// The submit route waits on the chat completion, so write generously.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Periodic snapshot upload
	if backupClient != nil {
		manager := backup.NewManager(backupClient, db, backup.ManagerConfig{
			Key:      cfg.BackupKey,
			Interval: cfg.BackupInterval,
		}, m)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("Panic in backup goroutine")
				}
			}()
			manager.Run(ctx)
		}()
	}

	// Start HTTP server
	go func() {
		log.WithField("port", cfg.Port).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}

	cancel()
	wg.Wait()
	log.Info("Server stopped")
}
