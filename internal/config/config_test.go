package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ericfisherdev/pulldeck/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every PULLDECK_ env var that Load() reads.
var allConfigKeys = []string{
	"PULLDECK_GRAPHQL_URL",
	"PULLDECK_WEB_URL",
	"PULLDECK_REFRESH_INTERVAL",
	"PULLDECK_SORT_ORDER",
	"PULLDECK_NOTIFY_REVIEW_REQUESTS",
	"PULLDECK_NOTIFY_UNRESOLVED",
	"PULLDECK_LISTEN_ADDR",
	"PULLDECK_DB_PATH",
	"PULLDECK_CACHE_PATH",
	"PULLDECK_SECRET_KEY",
	"PULLDECK_TABS_FILE",
}

// isolateConfigEnv saves and unsets all PULLDECK_ env vars so tests don't
// inherit values from the host environment. t.Cleanup restores original
// values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeTabsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tabs.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/graphql", cfg.Settings.GraphQLEndpoint)
	assert.Equal(t, "https://github.com", cfg.Settings.WebBaseURL)
	assert.Equal(t, 120*time.Second, cfg.Settings.RefreshInterval)
	assert.Equal(t, model.SortUpdatedDesc, cfg.Settings.SortOrder)
	assert.True(t, cfg.Settings.NotifyReviewRequests)
	assert.True(t, cfg.Settings.NotifyUnresolved)
	assert.Equal(t, "127.0.0.1:8690", cfg.ListenAddr)
	assert.Equal(t, "pulldeck.db", cfg.DBPath)
	assert.Equal(t, "pulldeck-cache.json", cfg.CachePath)
	assert.Nil(t, cfg.SecretKey)

	require.Len(t, cfg.Settings.Tabs, 3)
	assert.Equal(t, model.TabIDAssignedToMe, cfg.Settings.Tabs[0].ID)
	assert.Equal(t, model.TabIDReviewRequested, cfg.Settings.Tabs[1].ID)
	assert.Equal(t, model.TabIDCreatedByMe, cfg.Settings.Tabs[2].ID)
	for _, tab := range cfg.Settings.Tabs {
		assert.True(t, tab.Enabled)
	}
}

func TestLoad_Overrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PULLDECK_GRAPHQL_URL", "https://ghe.example.com/api/graphql")
	t.Setenv("PULLDECK_WEB_URL", "https://ghe.example.com")
	t.Setenv("PULLDECK_REFRESH_INTERVAL", "5m")
	t.Setenv("PULLDECK_SORT_ORDER", "created-asc")
	t.Setenv("PULLDECK_NOTIFY_UNRESOLVED", "false")
	t.Setenv("PULLDECK_LISTEN_ADDR", "0.0.0.0:9090")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/graphql", cfg.Settings.GraphQLEndpoint)
	assert.Equal(t, "https://ghe.example.com", cfg.Settings.WebBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Settings.RefreshInterval)
	assert.Equal(t, model.SortCreatedAsc, cfg.Settings.SortOrder)
	assert.True(t, cfg.Settings.NotifyReviewRequests)
	assert.False(t, cfg.Settings.NotifyUnresolved)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
}

func TestLoad_InvalidRefreshInterval(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PULLDECK_REFRESH_INTERVAL", "not-a-duration")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PULLDECK_REFRESH_INTERVAL")
}

func TestLoad_InvalidSortOrder(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PULLDECK_SORT_ORDER", "alphabetical")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PULLDECK_SORT_ORDER")
}

func TestLoad_SecretKey_Valid(t *testing.T) {
	isolateConfigEnv(t)
	// 64 hex chars = 32 bytes
	t.Setenv("PULLDECK_SECRET_KEY", "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Len(t, cfg.SecretKey, 32)
}

func TestLoad_SecretKey_TooShort(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PULLDECK_SECRET_KEY", "deadbeef")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PULLDECK_SECRET_KEY")
}

func TestLoad_SecretKey_NotHex(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PULLDECK_SECRET_KEY", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PULLDECK_SECRET_KEY")
}

func TestLoad_TabsFile(t *testing.T) {
	isolateConfigEnv(t)
	path := writeTabsFile(t, `[
		{"kind": "reviewRequested", "title": "Needs my review", "query": "org:acme", "enabled": true},
		{"id": "hotfixes", "title": "Hotfixes", "query": "is:open is:pr label:hotfix", "enabled": true,
		 "matchMode": "any", "rules": [{"field": "title", "pattern": "urgent"}]}
	]`)
	t.Setenv("PULLDECK_TABS_FILE", path)

	cfg, err := Load()

	require.NoError(t, err)
	require.Len(t, cfg.Settings.Tabs, 2)

	// Built-in tab IDs are fixed by kind regardless of the file.
	assert.Equal(t, model.TabIDReviewRequested, cfg.Settings.Tabs[0].ID)
	assert.Equal(t, "is:open is:pr archived:false review-requested:@me org:acme", cfg.Settings.Tabs[0].EffectiveQuery())

	assert.Equal(t, "hotfixes", cfg.Settings.Tabs[1].ID)
	assert.Equal(t, model.MatchAny, cfg.Settings.Tabs[1].MatchMode)
	require.Len(t, cfg.Settings.Tabs[1].Rules, 1)
}

func TestLoad_TabsFile_Missing(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PULLDECK_TABS_FILE", filepath.Join(t.TempDir(), "nope.json"))

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
}

func TestLoad_TabsFile_DuplicateID(t *testing.T) {
	isolateConfigEnv(t)
	path := writeTabsFile(t, `[
		{"id": "dup", "title": "One", "query": "is:pr", "enabled": true},
		{"id": "dup", "title": "Two", "query": "is:pr", "enabled": true}
	]`)
	t.Setenv("PULLDECK_TABS_FILE", path)

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate tab id")
}

func TestLoad_TabsFile_TooManyEnabled(t *testing.T) {
	isolateConfigEnv(t)
	path := writeTabsFile(t, `[
		{"id": "t1", "title": "1", "query": "q", "enabled": true},
		{"id": "t2", "title": "2", "query": "q", "enabled": true},
		{"id": "t3", "title": "3", "query": "q", "enabled": true},
		{"id": "t4", "title": "4", "query": "q", "enabled": true},
		{"id": "t5", "title": "5", "query": "q", "enabled": true},
		{"id": "t6", "title": "6", "query": "q", "enabled": true}
	]`)
	t.Setenv("PULLDECK_TABS_FILE", path)

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 5")
}

func TestLoad_TabsFile_UnknownRuleField(t *testing.T) {
	isolateConfigEnv(t)
	path := writeTabsFile(t, `[
		{"id": "t1", "title": "1", "query": "q", "enabled": true,
		 "rules": [{"field": "branch", "pattern": "main"}]}
	]`)
	t.Setenv("PULLDECK_TABS_FILE", path)

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}
