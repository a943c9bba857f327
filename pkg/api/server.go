package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"kml_router/pkg/logger"
	"kml_router/pkg/metrics"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
	CORSOrigins    []string // empty allows every origin
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:           addr,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxConcurrent:  runtime.NumCPU() * 2,
	}
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers, log *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewHandler(cfg, handlers, log),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// NewHandler builds the routed handler wrapped with CORS and access logging.
func NewHandler(cfg ServerConfig, handlers *Handlers, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	r := mux.NewRouter()

	// Concurrency limiter.
	sem := make(chan struct{}, cfg.MaxConcurrent)

	// Routes.
	route := withMiddleware(handlers.HandleRoute, sem, cfg, log)
	r.HandleFunc("/calculate_shortest_path", route).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/route", route).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/health", withMiddleware(handlers.HandleHealth, sem, cfg, log)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/stats", withMiddleware(handlers.HandleStats, sem, cfg, log)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	})

	return logger.AccessMiddleware(log)(c.Handler(r))
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server, log *slog.Logger) error {
	// Graceful shutdown on SIGTERM/SIGINT.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("server_shutdown", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// withMiddleware wraps a handler with recovery, security headers,
// concurrency limiting and a request timeout.
func withMiddleware(handler http.HandlerFunc, sem chan struct{}, cfg ServerConfig, log *slog.Logger) http.HandlerFunc {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		// Security headers.
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		// Concurrency limiter.
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, "service_unavailable", "too many concurrent requests", "")
			return
		}

		// Recovery.
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic", "path", r.URL.Path, "panic", rec)
				writeError(w, http.StatusInternalServerError, "internal_error", "internal error", "")
			}
		}()

		// Request timeout.
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		handler(w, r.WithContext(ctx))
	}
}
