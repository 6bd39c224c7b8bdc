// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/opskrifter/internal/api"
	"github.com/starford/opskrifter/internal/content"
	"github.com/starford/opskrifter/internal/mcpserver"
	"github.com/starford/opskrifter/internal/recipes"
	"github.com/starford/opskrifter/internal/sse"
	"github.com/starford/opskrifter/internal/watch"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(app.logOutput, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("locale", cfg.Content.Locale),
		slog.String("log_level", cfg.App.LogLevel.String()))

	loader, svc, err := newRecipeService(cfg, logger)
	if err != nil {
		return err
	}
	if err := loader.Check(); err != nil {
		// Listings return an empty result until the directory appears.
		logger.Warn("content directory unavailable", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRootRouter(cfg, loader, svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Content.Watch {
		g.Go(func() error {
			err := watch.Watch(gCtx, loader.Root(), logger, publishChanges(gCtx, svc, broker))
			if err != nil {
				// Live updates are optional; the API keeps serving.
				logger.Warn("content watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// SSE streams never finish on their own.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the recipe tools over MCP stdio until stdin closes.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(app.logOutput, cfg.App.LogLevel)
	slog.SetDefault(logger)

	_, svc, err := newRecipeService(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("content_path", cfg.Content.Path))
	if err := mcpserver.New(svc, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp serve: %w", err)
	}
	return nil
}

func newApplication(opts []Option, defaultLog io.Writer) (*application, error) {
	app := &application{version: "dev", logOutput: defaultLog}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func newRecipeService(cfg *Config, logger *slog.Logger) (*content.Loader, *recipes.Service, error) {
	loader, err := content.NewLoader(cfg.Content.Path,
		content.WithConcurrency(cfg.Content.Concurrency),
		content.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("init content loader: %w", err)
	}
	svc := recipes.NewService(loader,
		recipes.WithURLPrefix(cfg.Content.URLPrefix),
		recipes.WithLanguage(cfg.Content.Language()),
	)
	return loader, svc, nil
}

// publishChanges turns watcher callbacks into broker changes carrying the
// recipe's front-end path and, unless it was deleted, its current title.
func publishChanges(ctx context.Context, svc *recipes.Service, broker *sse.Broker) watch.Callback {
	return func(kind, slug string) {
		c := sse.Change{Kind: kind, Slug: slug, Path: svc.Path(slug)}
		if kind != sse.KindDeleted {
			if d, err := svc.Get(ctx, slug); err == nil {
				c.Title = d.Title
			}
		}
		broker.Publish(c)
	}
}

// newRootRouter mounts the API under /api next to the health checks.
func newRootRouter(cfg *Config, loader *content.Loader, svc *recipes.Service, broker *sse.Broker) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := loader.Check(); err != nil {
			writeHealth(w, http.StatusServiceUnavailable, "content unavailable")
			return
		}
		writeHealth(w, http.StatusOK, "ok")
	})

	r.Mount("/api", api.NewRouter(svc, cfg.CORS.AllowedOrigin, broker))

	return r
}

func writeHealth(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, msg)
}
