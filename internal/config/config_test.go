package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/matcher")
	t.Setenv("GEMINI_API_KEYS", "key-1,key-2")
}

func TestLoad_Defaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"key-1", "key-2"}, cfg.GeminiAPIKeys)
	assert.Equal(t, 60, cfg.OracleLimit)
	assert.Equal(t, time.Minute, cfg.OracleWindow)
	assert.Equal(t, 100, cfg.TopK)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Cooldown)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	validEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REFINE_TOP_K", "50")
	t.Setenv("REFINE_COOLDOWN", "250ms")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("LOG_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 50, cfg.TopK)
	assert.Equal(t, 250*time.Millisecond, cfg.Cooldown)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.LogDebug)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GEMINI_API_KEYS", "key-1")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_MissingKeys(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/matcher")
	t.Setenv("GEMINI_API_KEYS", " , ")

	_, err := Load()
	assert.ErrorContains(t, err, "GEMINI_API_KEYS")
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitKeys("a, b ,c"))
	assert.Nil(t, splitKeys(""))
	assert.Nil(t, splitKeys(" , "))
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	validEnv(t)
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}
