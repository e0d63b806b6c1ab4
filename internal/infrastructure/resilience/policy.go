package resilience

import "time"

// Config tunes one Executor. Each operation name gets its own breaker.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// BreakerOnly makes every call a single attempt. The breaker still trips
// on repeated failures.
func (c Config) BreakerOnly() Config {
	c.RetryMaxAttempts = 1
	return c
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	out := c

	out.RetryMaxAttempts = orDefault(out.RetryMaxAttempts <= 0, out.RetryMaxAttempts, def.RetryMaxAttempts)
	out.RetryInitialBackoff = orDefault(out.RetryInitialBackoff <= 0, out.RetryInitialBackoff, def.RetryInitialBackoff)
	out.RetryMaxBackoff = orDefault(out.RetryMaxBackoff <= 0, out.RetryMaxBackoff, def.RetryMaxBackoff)
	out.RetryMaxBackoff = max(out.RetryMaxBackoff, out.RetryInitialBackoff)
	out.RetryMultiplier = orDefault(out.RetryMultiplier < 1.0, out.RetryMultiplier, def.RetryMultiplier)

	out.BreakerMinRequests = orDefault(out.BreakerMinRequests == 0, out.BreakerMinRequests, def.BreakerMinRequests)
	out.BreakerFailureRatio = orDefault(out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1, out.BreakerFailureRatio, def.BreakerFailureRatio)
	out.BreakerOpenTimeout = orDefault(out.BreakerOpenTimeout <= 0, out.BreakerOpenTimeout, def.BreakerOpenTimeout)
	out.BreakerHalfOpenMaxCalls = orDefault(out.BreakerHalfOpenMaxCalls == 0, out.BreakerHalfOpenMaxCalls, def.BreakerHalfOpenMaxCalls)

	return out
}

func orDefault[T any](useDefault bool, value, def T) T {
	if useDefault {
		return def
	}
	return value
}
