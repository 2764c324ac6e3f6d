package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/coffeetrack/coffeetrack/server/internal/api"
	"github.com/coffeetrack/coffeetrack/server/internal/config"
	"github.com/coffeetrack/coffeetrack/server/internal/metrics"
	"github.com/coffeetrack/coffeetrack/server/internal/store"
)

// logLevel is shared by the JSON handler and the config watcher.
var logLevel = new(slog.LevelVar)

func setupLogging() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

// loadConfig reads the dotenv file, if any, then the YAML config.
func loadConfig(f flags) (*config.Config, error) {
	if f.envFile != "" {
		if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %q: %w", f.envFile, err)
		}
	}
	return config.Load(f.configPath)
}

// openStore builds the store selected by cfg. The returned close func
// releases it.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, func(), error) {
	switch cfg.Driver {
	case "memory":
		slog.Warn("store: using in-memory store, data is lost on exit")
		return store.NewMemory(cfg.DatabaseName()), func() {}, nil

	case "mongo":
		url := cfg.URL()
		if url == "" {
			return nil, nil, fmt.Errorf("store: environment variable %s is not set", cfg.URLEnv)
		}
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		m, err := store.Connect(connectCtx, url, cfg.DatabaseName())
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
			defer cancel()
			if err := m.Close(closeCtx); err != nil {
				slog.Warn("store: disconnect failed", "err", err)
			}
		}
		return m, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

func serve(ctx context.Context, f flags) error {
	setupLogging()

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	logLevel.Set(level)

	slog.Info("coffeetrack starting",
		"version", Version,
		"config", f.configPath,
		"http_port", cfg.Server.HTTPPort,
		"driver", cfg.Database.Driver,
		"database", cfg.Database.DatabaseName(),
	)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	gin.SetMode(gin.ReleaseMode)
	srv := api.New(st, api.Options{
		Metrics:        metrics.New(),
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		ReadingsLimit:  cfg.Readings.DefaultLimit,
		URLEnv:         cfg.Database.URLEnv,
		NameEnv:        cfg.Database.NameEnv,
	})

	if f.configPath != "" {
		go func() {
			err := config.Watch(ctx, f.configPath, func(next *config.Config) {
				applyReload(srv, next)
			})
			if err != nil {
				slog.Error("config: watcher stopped", "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: srv,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.Info("coffeetrack shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// applyReload pushes the reloadable settings of next into the running
// process. Other changes need a restart.
func applyReload(srv *api.Server, next *config.Config) {
	if level, err := config.ParseLevel(next.Server.LogLevel); err == nil {
		logLevel.Set(level)
	}
	srv.SetAllowedOrigins(next.Server.CORS.AllowedOrigins)
	slog.Info("config: applied reload",
		"log_level", next.Server.LogLevel,
		"allowed_origins", next.Server.CORS.AllowedOrigins,
	)
}

func ping(ctx context.Context, out io.Writer, f flags) error {
	setupLogging()
	logLevel.Set(slog.LevelWarn)

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	st, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout)
	defer cancel()
	if err := st.Ping(pingCtx); err != nil {
		return err
	}
	names, err := st.Collections(pingCtx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "database %s reachable (%s driver)\n", st.Name(), cfg.Database.Driver)
	for _, n := range names {
		fmt.Fprintf(out, "  %s\n", n)
	}
	return nil
}
