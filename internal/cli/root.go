// Package cli implements the pulldeck command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/pulldeck/internal/adapter/driven/filecache"
	"github.com/ericfisherdev/pulldeck/internal/adapter/driven/github"
	"github.com/ericfisherdev/pulldeck/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/pulldeck/internal/application"
	"github.com/ericfisherdev/pulldeck/internal/config"
	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
)

// Execute runs the root command. It exits the process with status 1 on error.
func Execute() {
	root := &cobra.Command{
		Use:           "pulldeck",
		Short:         "Pull-request deck: a GitHub PR synchronization daemon",
		Long:          "pulldeck polls the GitHub GraphQL API for pull requests across configured tabs,\ncaches results locally, and serves them over a localhost JSON API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newRefreshCmd(),
		newCostCmd(),
		newTokenCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// deps bundles everything a command needs after wiring.
type deps struct {
	cfg   *config.Config
	creds *application.CredentialCache
	sync  *application.SyncService
}

// buildDeps loads configuration and wires the credential store, cache store
// and sync engine. The returned cleanup closes the database.
func buildDeps() (*deps, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}

	if err := sqlite.RunMigrations(db.Writer); err != nil {
		cleanup()
		return nil, nil, err
	}

	creds := application.NewCredentialCache(sqlite.NewCredentialRepo(db, cfg.SecretKey))
	cache := filecache.NewStore(cfg.CachePath)
	factory := driven.GitHubClientFactory(func(endpoint, token string) driven.GitHubClient {
		return github.NewClient(endpoint, token)
	})

	return &deps{
		cfg:   cfg,
		creds: creds,
		sync:  application.NewSyncService(creds, factory, cache),
	}, cleanup, nil
}
