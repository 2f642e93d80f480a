// Package config provides configuration loading for the loan referral service.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	LeadAPI   LeadAPIConfig   `yaml:"lead_api"`
	EMI       EMIConfig       `yaml:"emi"`
	Form      FormConfig      `yaml:"form"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Currency  CurrencyConfig  `yaml:"currency"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig selects the Redis-backed cache and session store. An empty
// Addr keeps both in memory.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// LeadAPIConfig points at the intake backend that receives leads.
type LeadAPIConfig struct {
	BaseURL         string        `yaml:"base_url"`
	CustomerPath    string        `yaml:"customer_path"`
	ApplicationPath string        `yaml:"application_path"`
	Timeout         time.Duration `yaml:"timeout"`
}

type EMIConfig struct {
	// AllowZeroRate computes a 0% loan as P/N instead of rejecting it.
	AllowZeroRate bool          `yaml:"allow_zero_rate"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

type FormConfig struct {
	SubmitTimeout time.Duration `yaml:"submit_timeout"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

// RateLimitConfig sizes the per-client token bucket.
type RateLimitConfig struct {
	Capacity int           `yaml:"capacity"`
	Refill   time.Duration `yaml:"refill"`
}

type CurrencyConfig struct {
	Locale string `yaml:"locale"`
	Code   string `yaml:"code"`
	Symbol string `yaml:"symbol"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			KeyPrefix: "loan-referral:",
		},
		LeadAPI: LeadAPIConfig{
			BaseURL:         "http://localhost:8000",
			CustomerPath:    "/api/customers/",
			ApplicationPath: "/api/applications/",
			Timeout:         10 * time.Second,
		},
		EMI: EMIConfig{
			CacheTTL: 10 * time.Minute,
		},
		Form: FormConfig{
			SubmitTimeout: 15 * time.Second,
			SessionTTL:    24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Capacity: 5,
			Refill:   time.Minute,
		},
		Currency: CurrencyConfig{
			Locale: "en-IN",
			Code:   "INR",
			Symbol: "₹",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.LeadAPI.BaseURL == "" {
		errs = append(errs, errors.New("lead_api.base_url is required"))
	}
	if c.LeadAPI.Timeout <= 0 {
		errs = append(errs, errors.New("lead_api.timeout must be positive"))
	}
	if c.Form.SubmitTimeout <= 0 {
		errs = append(errs, errors.New("form.submit_timeout must be positive"))
	}
	if c.Form.SessionTTL < 0 {
		errs = append(errs, errors.New("form.session_ttl must not be negative"))
	}
	if c.EMI.CacheTTL < 0 {
		errs = append(errs, errors.New("emi.cache_ttl must not be negative"))
	}
	if c.RateLimit.Capacity <= 0 {
		errs = append(errs, errors.New("rate_limit.capacity must be positive"))
	}
	if c.RateLimit.Refill <= 0 {
		errs = append(errs, errors.New("rate_limit.refill must be positive"))
	}
	if c.Currency.Code == "" {
		errs = append(errs, errors.New("currency.code is required"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.ReadTimeout != 0 {
		c.Server.ReadTimeout = other.Server.ReadTimeout
	}
	if other.Server.WriteTimeout != 0 {
		c.Server.WriteTimeout = other.Server.WriteTimeout
	}
	if other.Server.IdleTimeout != 0 {
		c.Server.IdleTimeout = other.Server.IdleTimeout
	}
	if other.Server.ShutdownTimeout != 0 {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}

	// Redis
	if other.Redis.Addr != "" {
		c.Redis.Addr = other.Redis.Addr
	}
	if other.Redis.Password != "" {
		c.Redis.Password = other.Redis.Password
	}
	if other.Redis.DB != 0 {
		c.Redis.DB = other.Redis.DB
	}
	if other.Redis.KeyPrefix != "" {
		c.Redis.KeyPrefix = other.Redis.KeyPrefix
	}

	// Lead API
	if other.LeadAPI.BaseURL != "" {
		c.LeadAPI.BaseURL = other.LeadAPI.BaseURL
	}
	if other.LeadAPI.CustomerPath != "" {
		c.LeadAPI.CustomerPath = other.LeadAPI.CustomerPath
	}
	if other.LeadAPI.ApplicationPath != "" {
		c.LeadAPI.ApplicationPath = other.LeadAPI.ApplicationPath
	}
	if other.LeadAPI.Timeout != 0 {
		c.LeadAPI.Timeout = other.LeadAPI.Timeout
	}

	// EMI
	if other.EMI.AllowZeroRate {
		c.EMI.AllowZeroRate = true
	}
	if other.EMI.CacheTTL != 0 {
		c.EMI.CacheTTL = other.EMI.CacheTTL
	}

	// Form
	if other.Form.SubmitTimeout != 0 {
		c.Form.SubmitTimeout = other.Form.SubmitTimeout
	}
	if other.Form.SessionTTL != 0 {
		c.Form.SessionTTL = other.Form.SessionTTL
	}

	// Rate limit
	if other.RateLimit.Capacity != 0 {
		c.RateLimit.Capacity = other.RateLimit.Capacity
	}
	if other.RateLimit.Refill != 0 {
		c.RateLimit.Refill = other.RateLimit.Refill
	}

	// Currency
	if other.Currency.Locale != "" {
		c.Currency.Locale = other.Currency.Locale
	}
	if other.Currency.Code != "" {
		c.Currency.Code = other.Currency.Code
	}
	if other.Currency.Symbol != "" {
		c.Currency.Symbol = other.Currency.Symbol
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Development {
		c.Log.Development = true
	}
}
