package config

import (
	"time"
)

// RateLimitConfig describes the fixed-window limiter applied to the whole
// API surface. Within each window a client IP may issue at most Limit
// requests; further requests are rejected with 429 until the window rolls
// over. The counters live in Redis so the limit holds across replicas.
type RateLimitConfig struct {
	Enabled bool
	Limit   int           // max requests per window per client
	Window  time.Duration // fixed window length
	Prefix  string        // key namespace in Redis
	Debug   bool          // expose the computed key in a response header
}

// LoadRateLimitConfig reads environment variables to build a RateLimitConfig.
// Defaults match the documented policy: 100 requests per 5 minutes.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Limit:   envInt("RATE_LIMIT_MAX", 100),
		Window:  envDur("RATE_LIMIT_WINDOW", 5*time.Minute),
		Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:   envBool("RATE_LIMIT_DEBUG", false),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Minute
	}
	return cfg
}
