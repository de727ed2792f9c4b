package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
	assert.Equal(t, "gym:rl", cfg.Prefix)
	assert.GreaterOrEqual(t, cfg.TTL, 5*cfg.RefillInterval)
}

func TestLoadRateLimitConfigClampsInvalidValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_ENABLED", "off")

	cfg := LoadRateLimitConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg := LoadCacheConfig()

	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, 1<<20, cfg.MaxBodyBytes)
}

func TestLoadRedisConfigHostPortWins(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("REDIS_TLS", "1")

	rc := LoadRedisConfig()

	assert.Equal(t, "redis:6379", rc.Addr)
	assert.True(t, rc.TLS)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a ,,http://b"))
	assert.Nil(t, splitList(""))
}
