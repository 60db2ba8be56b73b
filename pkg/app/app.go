package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
)

// App bundles the router and the HTTP server lifecycle
type App struct {
	R      *chi.Mux
	Config AppConfig
}

type Option func(*App)

func WithConfig(config AppConfig) Option {
	return func(a *App) {
		a.Config = config
	}
}

// New creates the chi router with request logging, CORS and recovery
// installed, plus the health endpoints.
func New(opts ...Option) *App {
	a := &App{
		R: chi.NewRouter(),
		Config: AppConfig{
			Host: "localhost",
			Port: 8080,
		},
	}
	for _, opt := range opts {
		opt(a)
	}

	logger := httplog.NewLogger("sipe-auth", httplog.Options{
		JSON:            true,
		LogLevel:        slog.LevelInfo,
		Concise:         true,
		RequestHeaders:  false,
		ResponseHeaders: false,
	})

	a.R.Use(middleware.RequestID)
	a.R.Use(middleware.RealIP)
	a.R.Use(httplog.RequestLogger(logger))
	a.R.Use(middleware.Recoverer)
	a.R.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	RegisterHealthzRoutes(a.R)

	return a
}

// RegisterHealthzRoutes mounts liveness and readiness endpoints
func RegisterHealthzRoutes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "OK")
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "OK")
	})
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests
func (a *App) Run() {
	server := &http.Server{
		Addr:              a.Config.Addr(),
		Handler:           a.R,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "err", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
