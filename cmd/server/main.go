package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	checklisthandler "intake/internal/checklist/handler"
	checklistservice "intake/internal/checklist/service"
	checkliststore "intake/internal/checklist/store"
	"intake/internal/document/blob"
	docservice "intake/internal/document/service"
	docstore "intake/internal/document/store"
	httpapi "intake/internal/http"
	"intake/internal/notify"
	"intake/internal/platform/config"
	"intake/internal/platform/httpserver"
	"intake/internal/platform/logger"
	platformmetrics "intake/internal/platform/metrics"
	"intake/internal/platform/postgres"
	platformredis "intake/internal/platform/redis"
	submissionhandler "intake/internal/submission/handler"
	submissionmetrics "intake/internal/submission/metrics"
	submissionservice "intake/internal/submission/service"
	submissionstore "intake/internal/submission/store"
	uploadhandler "intake/internal/upload/handler"
	uploadmetrics "intake/internal/upload/metrics"
	uploadservice "intake/internal/upload/service"
	uploadstore "intake/internal/upload/store"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(config.RedisFromEnv())
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	// Memory stores back everything Postgres and Redis are not configured for,
	// which keeps local development a single binary.
	var (
		ruleStore       checkliststore.RuleStore
		submissionStore submissionstore.SubmissionStore
		documentStore   docstore.DocumentStore
		attemptStore    uploadstore.AttemptStore
	)
	if db != nil {
		ruleStore = checkliststore.NewPostgres(db)
		submissionStore = submissionstore.NewPostgres(db)
		documentStore = docstore.NewPostgres(db)
	} else {
		log.Warn("postgres not configured, using in-memory stores")
		ruleStore = checkliststore.NewMemory()
		submissionStore = submissionstore.NewMemory()
		documentStore = docstore.NewMemory()
	}
	if redisClient != nil {
		attemptStore = uploadstore.NewRedis(redisClient.Client)
	} else {
		attemptStore = uploadstore.NewMemory()
	}

	var dispatcher notify.Dispatcher = notify.NewLogDispatcher(log)
	if cfg.NotifyWebhookURL != "" {
		dispatcher = notify.NewWebhookDispatcher(cfg.NotifyWebhookURL)
	}

	var primary blob.ObjectStore
	if cfg.ObjectStoreBaseURL != "" {
		primary = blob.NewRemoteStore(cfg.ObjectStoreBaseURL, cfg.ObjectStoreAPIKey, cfg.ObjectStoreTimeout)
	} else {
		log.Warn("object store not configured, documents go to the local fallback")
	}
	fallback := blob.NewLocalStore(cfg.FallbackDir)

	checklistSvc, err := checklistservice.New(ruleStore)
	if err != nil {
		log.Error("failed to build checklist service", "error", err)
		os.Exit(1)
	}

	docOpts := []docservice.Option{docservice.WithLogger(log)}
	if primary != nil {
		docOpts = append(docOpts, docservice.WithPrimary(primary))
	}
	documentSvc, err := docservice.New(documentStore, fallback, docOpts...)
	if err != nil {
		log.Error("failed to build document service", "error", err)
		os.Exit(1)
	}

	submissionSvc, err := submissionservice.New(submissionStore, checklistSvc, documentSvc,
		submissionservice.WithLogger(log),
		submissionservice.WithDispatcher(dispatcher),
		submissionservice.WithMetrics(submissionmetrics.New()),
	)
	if err != nil {
		log.Error("failed to build submission service", "error", err)
		os.Exit(1)
	}

	uploadSvc, err := uploadservice.New(documentSvc, submissionSvc, attemptStore,
		uploadservice.WithLogger(log),
		uploadservice.WithDispatcher(dispatcher),
		uploadservice.WithMetrics(uploadmetrics.New()),
		uploadservice.WithMaxAttempts(cfg.UploadMaxAttempts),
	)
	if err != nil {
		log.Error("failed to build upload service", "error", err)
		os.Exit(1)
	}

	health := map[string]httpapi.HealthChecker{}
	if db != nil {
		health["postgres"] = db.Ping
	}
	if redisClient != nil {
		health["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		}
	}

	router := httpapi.NewRouter(log, platformmetrics.New(), health,
		checklisthandler.New(checklistSvc, log),
		submissionhandler.New(submissionSvc, documentSvc, log),
		uploadhandler.New(uploadSvc, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting intake server", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
