package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cinedex-cloud/cinedex/internal/auth"
	"github.com/cinedex-cloud/cinedex/internal/config"
	"github.com/cinedex-cloud/cinedex/internal/db"
	dbRedis "github.com/cinedex-cloud/cinedex/internal/db/redis"
	"github.com/cinedex-cloud/cinedex/internal/db/resilient"
	domcat "github.com/cinedex-cloud/cinedex/internal/domain/category"
	domcontrib "github.com/cinedex-cloud/cinedex/internal/domain/contributor"
	domwork "github.com/cinedex-cloud/cinedex/internal/domain/work"
	logpkg "github.com/cinedex-cloud/cinedex/internal/logger"
	"github.com/cinedex-cloud/cinedex/internal/metrics"
	"github.com/cinedex-cloud/cinedex/internal/repository/cache"
	"github.com/cinedex-cloud/cinedex/internal/repository/catalog"
	chiTransport "github.com/cinedex-cloud/cinedex/internal/transport/chi"
	categoryuc "github.com/cinedex-cloud/cinedex/internal/usecase/category"
	contributoruc "github.com/cinedex-cloud/cinedex/internal/usecase/contributor"
	workuc "github.com/cinedex-cloud/cinedex/internal/usecase/work"
	"github.com/cinedex-cloud/cinedex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting cinedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
		zap.Strings("search_addrs", cfg.Search.Addrs),
	)

	backoffCfg := resilient.Config{
		InitialInterval: time.Duration(cfg.Backoff.InitialIntervalMS) * time.Millisecond,
		Multiplier:      cfg.Backoff.Multiplier,
		MaxElapsedTime:  time.Duration(cfg.Backoff.MaxElapsedSec) * time.Second,
	}

	// Connection handles are owned here and passed down by injection;
	// nothing below this function holds a package-level client.
	ctx := context.Background()
	cacheStore := mustStore(ctx, "cache", cfg.Cache, backoffCfg, logger)
	defer cacheStore.Close()
	searchStore := mustStore(ctx, "search", cfg.Search, backoffCfg, logger)
	defer searchStore.Close()

	// Storage ports, one per entity family and index.
	workRepo := catalog.New[domwork.Work](searchStore, cfg.Indexes.Works.KeyPrefix, cfg.Indexes.Works.Name)
	categoryRepo := catalog.New[domcat.Category](
		searchStore, cfg.Indexes.Categories.KeyPrefix, cfg.Indexes.Categories.Name)
	contributorRepo := catalog.New[domcontrib.Contributor](
		searchStore, cfg.Indexes.Contributors.KeyPrefix, cfg.Indexes.Contributors.Name)

	// Cache ports, one per cached shape, each with its entity's TTL.
	workTTL := time.Duration(cfg.TTL.WorkSec) * time.Second
	categoryTTL := time.Duration(cfg.TTL.CategorySec) * time.Second
	contributorTTL := time.Duration(cfg.TTL.ContributorSec) * time.Second

	workCache := cache.New[domwork.Work](cacheStore, workTTL)
	previewCache := cache.New[domwork.Preview](cacheStore, workTTL)
	categoryCache := cache.New[domcat.Category](cacheStore, categoryTTL)
	contributorCache := cache.New[domcontrib.Contributor](cacheStore, contributorTTL)
	popularityCache := cache.NewCounter(cacheStore, time.Duration(cfg.TTL.PopularitySec)*time.Second)

	workSvc := workuc.New(workRepo, workCache, previewCache)
	categorySvc := categoryuc.New(categoryRepo, workRepo, categoryCache, categoryCache, popularityCache)
	contributorSvc := contributoruc.New(contributorRepo, workRepo, contributorCache, contributorCache)

	gate := auth.NewGate(auth.Config{
		URL:             cfg.Auth.URL,
		RequestTimeout:  time.Duration(cfg.Auth.RequestTimeoutSec) * time.Second,
		InitialInterval: backoffCfg.InitialInterval,
		Multiplier:      backoffCfg.Multiplier,
		MaxElapsedTime:  backoffCfg.MaxElapsedTime,
	}, logger)

	server := chiTransport.NewServer(
		workSvc, categorySvc, contributorSvc, gate,
		cfg.Paging.DefaultPageSize, cfg.Paging.MaxPageSize, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Mount(r)
	r.Get("/health", healthHandler(cacheStore, searchStore))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// mustStore connects one Redis store, waits for readiness, and wraps it in
// the retry decorator.
func mustStore(
	ctx context.Context, name string, cfg config.StoreConfig,
	backoffCfg resilient.Config, logger *zap.Logger,
) db.Store {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create store", zap.String("store", name), zap.Error(err))
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Store not ready", zap.String("store", name), zap.Error(err))
	}
	logger.Info("Connected to store", zap.String("store", name))

	return resilient.Wrap(store, backoffCfg, logger.With(zap.String("store", name)))
}

// healthHandler reports liveness of both backing stores.
func healthHandler(cacheStore, searchStore db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"cache": "ok", "search": "ok"}
		code := http.StatusOK

		if err := cacheStore.Ping(r.Context()); err != nil {
			status["cache"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		if err := searchStore.Ping(r.Context()); err != nil {
			status["search"] = "unreachable"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a
// plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"detail": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and
// propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
