package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EnvPrefix namespaces the environment overrides, e.g. LOAN_REFERRAL_REDIS_ADDR.
const EnvPrefix = "LOAN_REFERRAL_"

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *zap.Logger
	lookup func(string) (string, bool)
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger, lookup: os.LookupEnv}
}

// Load applies, in order:
// 1. Default config
// 2. The YAML file at path, when path is not empty
// 3. LOAN_REFERRAL_* environment variables
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("loaded config file", zap.String("path", path))
		config.Merge(fileConfig)
	}

	if err := l.applyEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func (l *Loader) applyEnv(c *Config) error {
	strs := map[string]*string{
		"SERVER_ADDR":               &c.Server.Addr,
		"REDIS_ADDR":                &c.Redis.Addr,
		"REDIS_PASSWORD":            &c.Redis.Password,
		"REDIS_KEY_PREFIX":          &c.Redis.KeyPrefix,
		"LEAD_API_BASE_URL":         &c.LeadAPI.BaseURL,
		"LEAD_API_CUSTOMER_PATH":    &c.LeadAPI.CustomerPath,
		"LEAD_API_APPLICATION_PATH": &c.LeadAPI.ApplicationPath,
		"CURRENCY_LOCALE":           &c.Currency.Locale,
		"CURRENCY_CODE":             &c.Currency.Code,
		"CURRENCY_SYMBOL":           &c.Currency.Symbol,
		"LOG_LEVEL":                 &c.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := l.lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"LEAD_API_TIMEOUT":        &c.LeadAPI.Timeout,
		"EMI_CACHE_TTL":           &c.EMI.CacheTTL,
		"FORM_SUBMIT_TIMEOUT":     &c.Form.SubmitTimeout,
		"FORM_SESSION_TTL":        &c.Form.SessionTTL,
		"RATE_LIMIT_REFILL":       &c.RateLimit.Refill,
		"SERVER_SHUTDOWN_TIMEOUT": &c.Server.ShutdownTimeout,
	}
	for key, dst := range durations {
		v, ok := l.lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"REDIS_DB":            &c.Redis.DB,
		"RATE_LIMIT_CAPACITY": &c.RateLimit.Capacity,
	}
	for key, dst := range ints {
		v, ok := l.lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"EMI_ALLOW_ZERO_RATE": &c.EMI.AllowZeroRate,
		"LOG_DEVELOPMENT":     &c.Log.Development,
	}
	for key, dst := range bools {
		v, ok := l.lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
	}
	return nil
}
