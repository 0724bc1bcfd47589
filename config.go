package authcore

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config controls session resolution and refresh behavior. Configure it
// once, pass it to the Builder, and treat it as immutable afterwards.
type Config struct {
	Refresh RefreshConfig
	Resolve ResolveConfig
	Metrics MetricsConfig
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig bounds the refresh exchange.
type RefreshConfig struct {
	// ExchangeTimeout caps one exchange with the identity backend. The
	// exchange runs detached from the triggering request's context, so
	// this is its only deadline.
	ExchangeTimeout time.Duration
}

/*
====================================
RESOLVE CONFIG
====================================
*/

// ResolveConfig tunes how stored credentials are judged.
type ResolveConfig struct {
	// ExpiryLeeway is tolerated clock skew when judging the access
	// token's expiry. A token is treated as live until expiry + leeway.
	ExpiryLeeway time.Duration
}

// MetricsConfig mirrors the metrics switchboard.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Refresh: RefreshConfig{
			ExchangeTimeout: 10 * time.Second,
		},
		Resolve: ResolveConfig{
			ExpiryLeeway: 0,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate rejects configurations that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.Refresh.ExchangeTimeout <= 0 {
		return errors.New("Refresh.ExchangeTimeout must be positive")
	}
	if c.Resolve.ExpiryLeeway < 0 {
		return errors.New("Resolve.ExpiryLeeway must not be negative")
	}
	if c.Resolve.ExpiryLeeway > 5*time.Minute {
		return errors.New("Resolve.ExpiryLeeway above 5m defeats expiry checking")
	}
	return nil
}

// ConfigFromEnv builds a Config from AUTHCORE_* environment variables,
// falling back to defaults for anything unset or unparseable:
//
//	AUTHCORE_REFRESH_TIMEOUT   Go duration, e.g. "10s"
//	AUTHCORE_EXPIRY_LEEWAY     Go duration, e.g. "30s"
//	AUTHCORE_METRICS_ENABLED   "true" / "false"
//	AUTHCORE_METRICS_LATENCY   "true" / "false"
func ConfigFromEnv() Config {
	cfg := defaultConfig()
	if v := os.Getenv("AUTHCORE_REFRESH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Refresh.ExchangeTimeout = d
		}
	}
	if v := os.Getenv("AUTHCORE_EXPIRY_LEEWAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Resolve.ExpiryLeeway = d
		}
	}
	if v := os.Getenv("AUTHCORE_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("AUTHCORE_METRICS_LATENCY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.EnableLatencyHistograms = b
		}
	}
	return cfg
}

func cloneConfig(c Config) Config {
	// All fields are value types today; the clone exists so a later
	// slice or map field cannot silently alias builder state.
	return c
}
