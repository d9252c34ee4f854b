// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal feature
// packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lockpass/internal/audit"
	businesshandler "lockpass/internal/business/handler"
	businessservice "lockpass/internal/business/service"
	businessstore "lockpass/internal/business/store"
	"lockpass/internal/jwtauth"
	"lockpass/internal/lockoracle"
	"lockpass/internal/platform/config"
	"lockpass/internal/platform/httpserver"
	"lockpass/internal/platform/logger"
	"lockpass/internal/platform/middleware"
	"lockpass/internal/platform/postgres"
	redisplatform "lockpass/internal/platform/redis"
	"lockpass/internal/ratelimit"
	sessionhandler "lockpass/internal/session/handler"
	sessionmetrics "lockpass/internal/session/metrics"
	sessionservice "lockpass/internal/session/service"
	sessionstore "lockpass/internal/session/store"
	"lockpass/pkg/platform/httputil"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when configured, in-memory otherwise.
	var (
		businesses businessservice.Store
		sessions   sessionservice.SessionStore
		auditStore audit.Store
		healthDB   func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		businesses = businessstore.NewPostgres(db)
		sessions = sessionstore.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
		healthDB = db.PingContext
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		businesses = businessstore.NewInMemory()
		sessions = sessionstore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
	}

	if err := businessstore.Seed(ctx, businesses, log); err != nil {
		log.Error("failed to seed businesses", "error", err)
		os.Exit(1)
	}

	// Audit trail, optionally mirrored to Kafka.
	var auditOpts []audit.PublisherOption
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.KafkaAuditTopic, log)
		if err != nil {
			log.Error("failed to connect kafka audit sink", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		go func() {
			if err := sink.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("kafka audit sink stopped", "error", err)
			}
		}()
		auditOpts = append(auditOpts, audit.WithSink(sink))
	}
	auditor := audit.NewPublisher(auditStore, auditOpts...)

	// Rate limit store: redis when configured, in-process otherwise.
	var limitStore ratelimit.Store = ratelimit.NewInMemory()
	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	var healthRedis func(context.Context) error
	if redisClient != nil {
		defer redisClient.Close()
		limitStore = ratelimit.NewRedis(redisClient.Client)
		healthRedis = redisClient.Health
	}
	limiter := ratelimit.NewMiddleware(limitStore, cfg.RateLimit, cfg.RateLimitWindow, log)

	// Lock oracle.
	evmClient, err := lockoracle.Dial(cfg.RPCEndpoint)
	if err != nil {
		log.Error("failed to dial evm rpc", "endpoint", cfg.RPCEndpoint, "error", err)
		os.Exit(1)
	}
	defer evmClient.Close()
	oracle := lockoracle.New(evmClient, common.HexToAddress(cfg.LockContract))

	registry := businessservice.New(businesses, businessservice.WithLogger(log))
	sessionSvc := sessionservice.New(sessions, registry, oracle, auditor, cfg.ChainID,
		sessionservice.WithLogger(log),
		sessionservice.WithMetrics(sessionmetrics.New()),
		sessionservice.WithOracleTimeout(cfg.OracleTimeout),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)

	sessionhandler.New(sessionSvc, log, sessionhandler.WithRateLimit(limiter.Handler)).Register(router)
	businesshandler.New(registry, log, jwtauth.New(cfg.AdminSigningKey)).Register(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", healthHandler(healthDB, healthRedis))

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting lockpass", "addr", cfg.Addr, "chain_id", cfg.ChainID, "lock_contract", cfg.LockContract)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// healthHandler reports liveness plus the state of attached backends.
func healthHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"error":  err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
