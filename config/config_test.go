package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "INR", cfg.Currency.Code)
	assert.False(t, cfg.EMI.AllowZeroRate)
	assert.Equal(t, 5, cfg.RateLimit.Capacity)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Config)
		want string
	}{
		{"no addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is required"},
		{"no lead api", func(c *Config) { c.LeadAPI.BaseURL = "" }, "lead_api.base_url is required"},
		{"zero submit timeout", func(c *Config) { c.Form.SubmitTimeout = 0 }, "form.submit_timeout must be positive"},
		{"zero capacity", func(c *Config) { c.RateLimit.Capacity = 0 }, "rate_limit.capacity must be positive"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, `log.level "loud"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.edit(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loan-referral.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9090"
redis:
  addr: "localhost:6379"
emi:
  allow_zero_rate: true
  cache_ttl: 30s
form:
  submit_timeout: 5s
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.EMI.AllowZeroRate)
	assert.Equal(t, 30*time.Second, cfg.EMI.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Form.SubmitTimeout)
	// Untouched sections keep their defaults.
	assert.Equal(t, "en-IN", cfg.Currency.Locale)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFromFile(writeFile(t, "server: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{
		Redis:    RedisConfig{Addr: "redis:6379"},
		Currency: CurrencyConfig{Symbol: "Rs. "},
	})
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "Rs. ", cfg.Currency.Symbol)
	assert.Equal(t, "INR", cfg.Currency.Code)

	cfg.Merge(nil)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoaderEnvOverrides(t *testing.T) {
	env := map[string]string{
		"LOAN_REFERRAL_SERVER_ADDR":         ":7070",
		"LOAN_REFERRAL_FORM_SUBMIT_TIMEOUT": "2s",
		"LOAN_REFERRAL_RATE_LIMIT_CAPACITY": "20",
		"LOAN_REFERRAL_EMI_ALLOW_ZERO_RATE": "true",
	}
	l := NewLoader(nil)
	l.lookup = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	path := writeFile(t, "server:\n  addr: \":9090\"\n")
	cfg, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Form.SubmitTimeout)
	assert.Equal(t, 20, cfg.RateLimit.Capacity)
	assert.True(t, cfg.EMI.AllowZeroRate)
}

func TestLoaderRejectsBadEnv(t *testing.T) {
	l := NewLoader(nil)
	l.lookup = func(key string) (string, bool) {
		if key == "LOAN_REFERRAL_FORM_SUBMIT_TIMEOUT" {
			return "soon", true
		}
		return "", false
	}
	_, err := l.Load("")
	assert.ErrorContains(t, err, "LOAN_REFERRAL_FORM_SUBMIT_TIMEOUT")

	l.lookup = func(key string) (string, bool) {
		if key == "LOAN_REFERRAL_LOG_LEVEL" {
			return "verbose", true
		}
		return "", false
	}
	_, err = l.Load("")
	assert.ErrorContains(t, err, "invalid config")
}
