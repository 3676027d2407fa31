package app

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

	"github.com/PaulRosu01/PrivatePixel/internal/config"
	"github.com/PaulRosu01/PrivatePixel/internal/handlers"
	"github.com/PaulRosu01/PrivatePixel/internal/httpserver"
	"github.com/PaulRosu01/PrivatePixel/internal/logging"
	"github.com/PaulRosu01/PrivatePixel/internal/middleware"
)

// stdout receives command output; logs go to stderr for one-shot commands.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

const (
	uploadWriteTimeout = 10 * time.Minute
	apiVisitorTTL      = 10 * time.Minute
)

// Run bootstraps the PrivatePixel application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, migrate, scan, sync, upload, delete, timeline, albums, or seed")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx, args[1:])
	case "scan":
		return withComponents(ctx, runScan)
	case "sync":
		return withComponents(ctx, runSync)
	case "upload":
		return withComponents(ctx, func(ctx context.Context, c *components) error { return runUpload(ctx, c, args[1:]) })
	case "delete":
		return withComponents(ctx, func(ctx context.Context, c *components) error { return runDelete(ctx, c, args[1:]) })
	case "timeline":
		return withComponents(ctx, func(ctx context.Context, c *components) error { return runTimeline(ctx, c, args[1:]) })
	case "albums":
		return withComponents(ctx, runAlbums)
	case "seed":
		return withComponents(ctx, runSeed)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	comps, cleanup, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			logger.Error("cleanup failed", "error", err)
		}
	}()

	if err := comps.Sync.Start(logger, cfg.AutoSyncInterval); err != nil {
		return err
	}

	var limiter middleware.RateLimiter
	if cfg.APIRequestsPerMinute > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.APIRequestsPerMinute, time.Minute, cfg.APIRequestsPerMinute, apiVisitorTTL)
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.Dependencies{
		Library:   comps.Library,
		Sync:      comps.Sync,
		Persister: comps.Persister,
		Limiter:   limiter,
	})

	handler := middleware.RequestLogger(logger)(mux)

	srv := httpserver.New(cfg.AppPort, handler, httpserver.WithWriteTimeout(uploadWriteTimeout))

	logger.Info("starting http server", "port", cfg.AppPort, "backend", cfg.StateBackend, "remote", cfg.RemoteEnabled())

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// withComponents loads config, restores the library and runs fn with a
// logger scoped to the command.
func withComponents(ctx context.Context, fn func(context.Context, *components) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(stderr, cfg.LogLevel)
	ctx = logging.WithLogger(ctx, logger)

	comps, cleanup, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		_ = cleanup(shutdownCtx)
	}()

	return fn(ctx, comps)
}
