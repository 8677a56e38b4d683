// Package config loads daemon configuration from environment variables and an
// optional tabs file, producing the immutable settings snapshot the engine
// consumes per operation.
package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/pulldeck/internal/domain/model"
)

const (
	defaultGraphQLURL      = "https://api.github.com/graphql"
	defaultWebURL          = "https://github.com"
	defaultRefreshInterval = 120 * time.Second
	defaultListenAddr      = "127.0.0.1:8690"
	defaultDBPath          = "pulldeck.db"
	defaultCachePath       = "pulldeck-cache.json"
)

// Config holds daemon-level configuration: where to listen, where state
// lives, and the encryption key for the credential store. Engine-facing
// settings live in the embedded model.Settings snapshot.
type Config struct {
	Settings   model.Settings
	ListenAddr string
	DBPath     string
	CachePath  string
	SecretKey  []byte
}

// Load reads configuration from PULLDECK_* environment variables and the
// optional tabs file, applies defaults, and validates. PULLDECK_SECRET_KEY is
// optional at load time; commands that touch the credential store fail later
// without it.
func Load() (*Config, error) {
	settings := model.Settings{
		GraphQLEndpoint:      envOr("PULLDECK_GRAPHQL_URL", defaultGraphQLURL),
		WebBaseURL:           envOr("PULLDECK_WEB_URL", defaultWebURL),
		RefreshInterval:      defaultRefreshInterval,
		SortOrder:            model.SortUpdatedDesc,
		NotifyReviewRequests: true,
		NotifyUnresolved:     true,
		CostThresholds:       model.DefaultCostThresholds(),
	}

	if v, ok := os.LookupEnv("PULLDECK_REFRESH_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PULLDECK_REFRESH_INTERVAL has invalid duration %q: %w", v, err)
		}
		settings.RefreshInterval = parsed
	}

	if v, ok := os.LookupEnv("PULLDECK_SORT_ORDER"); ok {
		order := model.SortOrder(v)
		if !order.Valid() {
			return nil, fmt.Errorf("PULLDECK_SORT_ORDER has unknown value %q", v)
		}
		settings.SortOrder = order
	}

	var err error
	if settings.NotifyReviewRequests, err = envBool("PULLDECK_NOTIFY_REVIEW_REQUESTS", true); err != nil {
		return nil, err
	}
	if settings.NotifyUnresolved, err = envBool("PULLDECK_NOTIFY_UNRESOLVED", true); err != nil {
		return nil, err
	}

	tabs, err := loadTabs(os.Getenv("PULLDECK_TABS_FILE"))
	if err != nil {
		return nil, err
	}
	settings.Tabs = tabs

	var secretKey []byte
	if v, ok := os.LookupEnv("PULLDECK_SECRET_KEY"); ok {
		secretKey, err = hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("PULLDECK_SECRET_KEY is not valid hex: %w", err)
		}
		if len(secretKey) != 32 {
			return nil, fmt.Errorf("PULLDECK_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(secretKey))
		}
	}

	return &Config{
		Settings:   settings,
		ListenAddr: envOr("PULLDECK_LISTEN_ADDR", defaultListenAddr),
		DBPath:     envOr("PULLDECK_DB_PATH", defaultDBPath),
		CachePath:  envOr("PULLDECK_CACHE_PATH", defaultCachePath),
		SecretKey:  secretKey,
	}, nil
}

// DefaultTabs returns the three built-in tabs, enabled, with empty query
// suffixes.
func DefaultTabs() []model.TabConfig {
	return []model.TabConfig{
		{ID: model.TabIDAssignedToMe, Title: "Assigned to me", Kind: model.BuiltinAssignedToMe, Enabled: true},
		{ID: model.TabIDReviewRequested, Title: "Review requested", Kind: model.BuiltinReviewRequested, Enabled: true},
		{ID: model.TabIDCreatedByMe, Title: "Created by me", Kind: model.BuiltinCreatedByMe, Enabled: true},
	}
}

// loadTabs reads the tabs file, or returns the built-in defaults when no file
// is configured.
func loadTabs(path string) ([]model.TabConfig, error) {
	if path == "" {
		return DefaultTabs(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tabs file: %w", err)
	}

	var tabs []model.TabConfig
	if err := json.Unmarshal(data, &tabs); err != nil {
		return nil, fmt.Errorf("parsing tabs file %s: %w", path, err)
	}

	if err := validateTabs(tabs); err != nil {
		return nil, fmt.Errorf("tabs file %s: %w", path, err)
	}
	return tabs, nil
}

func validateTabs(tabs []model.TabConfig) error {
	seen := make(map[string]bool, len(tabs))
	enabled := 0

	for i := range tabs {
		tab := &tabs[i]

		if tab.Kind != "" {
			fixed := model.BuiltinTabID(tab.Kind)
			if fixed == "" {
				return fmt.Errorf("tab %q has unknown kind %q", tab.Title, tab.Kind)
			}
			// Built-in tab IDs are fixed by kind.
			tab.ID = fixed
		}

		if tab.ID == "" {
			return fmt.Errorf("custom tab %q has no id", tab.Title)
		}
		if seen[tab.ID] {
			return fmt.Errorf("duplicate tab id %q", tab.ID)
		}
		seen[tab.ID] = true

		if tab.Kind == "" && strings.TrimSpace(tab.Query) == "" {
			return fmt.Errorf("custom tab %q has an empty query", tab.Title)
		}

		if tab.MatchMode != "" && tab.MatchMode != model.MatchAll && tab.MatchMode != model.MatchAny {
			return fmt.Errorf("tab %q has unknown match mode %q", tab.Title, tab.MatchMode)
		}
		for _, rule := range tab.Rules {
			switch rule.Field {
			case model.FilterTitle, model.FilterAuthor, model.FilterRepo:
			default:
				return fmt.Errorf("tab %q has a rule on unknown field %q", tab.Title, rule.Field)
			}
		}

		if tab.Enabled {
			enabled++
		}
	}

	if enabled > model.MaxTabs {
		return fmt.Errorf("%d tabs enabled, at most %d allowed", enabled, model.MaxTabs)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s has invalid boolean %q: %w", key, v, err)
	}
	return parsed, nil
}
