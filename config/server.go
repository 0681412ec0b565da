package config

import (
	"errors"
	"time"
)

// ServerConfig holds the HTTP service settings.
type ServerConfig struct {
	Address string `json:"address"`
	// RateLimitRPS caps accepted plan requests per second; 0 disables it.
	RateLimitRPS   float64 `json:"rate_limit_rps"`
	RateLimitBurst int     `json:"rate_limit_burst"`
	// CacheSize is the number of plan responses kept; 0 disables the cache.
	CacheSize            int    `json:"cache_size"`
	MaxBodyBytes         int64  `json:"max_body_bytes"`
	JournalToken         string `json:"journal_token"`
	PermissiveValidation bool   `json:"permissive_validation"`
	// PublishTimeoutSeconds bounds the MQTT delivery of one plan.
	PublishTimeoutSeconds  int `json:"publish_timeout_seconds"`
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8888"
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		c.RateLimitBurst = int(c.RateLimitRPS) + 1
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if c.PublishTimeoutSeconds <= 0 {
		c.PublishTimeoutSeconds = 10
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		c.ShutdownTimeoutSeconds = 10
	}
}

func (c ServerConfig) Validate() error {
	var errs []error
	if c.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, errors.New("server.rate_limit_rps must not be negative"))
	}
	if c.CacheSize < 0 {
		errs = append(errs, errors.New("server.cache_size must not be negative"))
	}
	return errors.Join(errs...)
}

func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c ServerConfig) PublishTimeout() time.Duration {
	return time.Duration(c.PublishTimeoutSeconds) * time.Second
}
