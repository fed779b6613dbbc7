package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stylehub/internal/ratelimit"
)

func TestLoadBudgetsOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
budgets:
  order.create: {window: 1h, max: 100}
  export.run: {window: 30s, max: 1}
`), 0o600))

	b, err := LoadBudgets(path)
	require.NoError(t, err)
	assert.Equal(t, ratelimit.Budget{Window: time.Hour, Max: 100}, b[ratelimit.OrderCreate])
	assert.Equal(t, ratelimit.Budget{Window: 30 * time.Second, Max: 1}, b["export.run"])
	assert.Equal(t, ratelimit.DefaultBudgets()[ratelimit.HuddleCreate], b[ratelimit.HuddleCreate])
}

func TestLoadBudgetsRejectsBadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("budgets:\n  order.create: {window: 1m, max: 0}\n"), 0o600))
	_, err := LoadBudgets(path)
	assert.Error(t, err)

	_, err = LoadBudgets(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	b, err := LoadBudgets("")
	require.NoError(t, err)
	assert.Equal(t, ratelimit.DefaultBudgets(), b)
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_LIMIT", "0")
	t.Setenv("RATE_LIMIT_WINDOW", "10ms")
	t.Setenv("RATE_LIMIT_ENABLED", "off")

	c := LoadRateLimitConfig()
	assert.False(t, c.Enabled)
	assert.Equal(t, 1, c.Limit)
	assert.Equal(t, time.Second, c.Window)
	assert.Equal(t, "ip_user_route", c.KeyStrategy)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "bogus")

	c := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
	assert.Equal(t, 30*time.Second, c.TTL)
	assert.Equal(t, 1<<20, c.MaxBodyBytes)
}
