package config

import (
	"time"
)

// RateLimitConfig carries the limiter settings shared by every
// route: whether limiting is on at all, how long idle buckets live
// in Redis, how keys are built, and the per-route thresholds for the
// sensitive auth endpoints.
type RateLimitConfig struct {
	Enabled     bool
	TTL         time.Duration
	KeyStrategy string
	Prefix      string
	Debug       bool

	RegisterPerMin int
	LoginPerMin    int
	RefreshPerMin  int
	PasswordPerMin int
}

// Bucket describes one token bucket: its burst capacity and refill
// rate. PerMinute buckets refill their full capacity every minute.
type Bucket struct {
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
}

// PerMinute returns a bucket allowing n requests per minute with a
// burst of n.
func PerMinute(n int) Bucket {
	if n < 1 {
		n = 1
	}
	return Bucket{Capacity: n, RefillTokens: n, RefillInterval: time.Minute}
}

// LoadRateLimitConfig reads limiter settings from the environment,
// with the per-route defaults: register 5/min, login 10/min,
// refresh 20/min, change-password 5/min.
func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
		RegisterPerMin: envInt("RATE_LIMIT_REGISTER_PER_MIN", 5),
		LoginPerMin:    envInt("RATE_LIMIT_LOGIN_PER_MIN", 10),
		RefreshPerMin:  envInt("RATE_LIMIT_REFRESH_PER_MIN", 20),
		PasswordPerMin: envInt("RATE_LIMIT_PASSWORD_PER_MIN", 5),
	}
	if def.TTL < 5*time.Minute {
		def.TTL = 5 * time.Minute
	}
	return def
}

func envDur(k string, d time.Duration) time.Duration {
	v := envStr(k, "")
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
