package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lexivec/lexivec/internal/config"
	"github.com/lexivec/lexivec/internal/db"
	dbMemory "github.com/lexivec/lexivec/internal/db/memory"
	dbRedis "github.com/lexivec/lexivec/internal/db/redis"
	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/vector"
	logpkg "github.com/lexivec/lexivec/internal/logger"
	"github.com/lexivec/lexivec/internal/metrics"
	documentrepo "github.com/lexivec/lexivec/internal/repository/document"
	"github.com/lexivec/lexivec/internal/repository/embcache"
	searchrepo "github.com/lexivec/lexivec/internal/repository/search"
	chiTransport "github.com/lexivec/lexivec/internal/transport/chi"
	openaiEmb "github.com/lexivec/lexivec/internal/transport/openai"
	documentuc "github.com/lexivec/lexivec/internal/usecase/document"
	healthuc "github.com/lexivec/lexivec/internal/usecase/health"
	searchuc "github.com/lexivec/lexivec/internal/usecase/search"
	"github.com/lexivec/lexivec/internal/version"
)

const schemaName = "lexivec"

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

	logger.Info("Starting lexivec API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	var store db.Store
	switch cfg.Database.Driver {
	case "memory":
		store = dbMemory.NewStore()
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Database.Addrs,
			Username:  cfg.Database.Username,
			Password:  cfg.Database.Password,
			DB:        cfg.Database.DB,
			KeyPrefix: cfg.Database.KeyPrefix,
		})
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	if err := ensureSchema(ctx, store, cfg.Store); err != nil {
		logger.Fatal("Failed to ensure schema", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.Register()

	embedder := buildEmbedder(cfg.Embedding, cfg.Store.Dimensions, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Store.Dimensions),
	)

	storeCfg := domain.StoreConfig{
		Dimensions: cfg.Store.Dimensions,
		Metric:     vector.Metric(cfg.Store.Metric),
	}

	docRepo := documentrepo.New(store)
	searchRepo := searchrepo.New(store, storeCfg.Metric)

	docSvc := documentuc.New(docRepo, embedder, storeCfg, logger)
	searchSvc := searchuc.New(searchRepo, embedder, storeCfg, logger)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(docSvc, searchSvc, healthSvc, cfg.Store.MaxBatchSize, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
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

// ensureSchema creates the document schema, tolerating one that already exists.
func ensureSchema(ctx context.Context, store db.Store, sc config.StoreConfig) error {
	fields := make([]db.FieldDef, len(sc.FilterFields))
	for i, f := range sc.FilterFields {
		ft := db.FieldTag
		if f.Type == "numeric" {
			ft = db.FieldNumeric
		}
		fields[i] = db.FieldDef{Path: f.Path, Type: ft}
	}

	def := &db.SchemaDefinition{
		Name:       schemaName,
		Dimensions: sc.Dimensions,
		Metric:     vector.Metric(sc.Metric),
		Fields:     fields,
	}
	if err := store.CreateSchema(ctx, def); err != nil && !errors.Is(err, db.ErrSchemaExists) {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached.
func buildEmbedder(ec config.EmbeddingConfig, dimensions int, store db.Store, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: dimensions,
		Provider:   ec.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if ec.CacheTTLSec > 0 {
		ttl := time.Duration(ec.CacheTTLSec) * time.Second
		embedder = embcache.New(base, store, ec.Model, ttl, metrics.EmbeddingCacheTotal, logger)
	}
	return embedder
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
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
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
