package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/pulldeck/internal/adapter/driving/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sync daemon and JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	d, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("config loaded",
		"listen_addr", d.cfg.ListenAddr,
		"db_path", d.cfg.DBPath,
		"cache_path", d.cfg.CachePath,
		"refresh_interval", d.cfg.Settings.RefreshInterval,
		"tabs", len(d.cfg.Settings.EnabledTabs()),
	)

	// Cached snapshot first for instant state, then one immediate round.
	d.sync.LoadCachedIfNeeded(ctx)
	if err := d.sync.RefreshAll(ctx, false, d.cfg.Settings); err != nil {
		slog.Error("initial refresh failed", "error", err)
	}

	d.sync.Configure(ctx, d.cfg.Settings)
	defer d.sync.StopAutoRefresh()

	handler := httphandler.NewHandler(d.sync, d.cfg.Settings, slog.Default())
	srv := &http.Server{
		Addr:              d.cfg.ListenAddr,
		Handler:           httphandler.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", d.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
