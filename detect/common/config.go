package common

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type FailoverConfig struct {
	// Disable detector temporality for CooldownBaseSec * failureCount
	// if reached MaxFailures, set MaxFailures to 1
	// to disable a failed detector immediately
	MaxFailures     int `yaml:"max_failures"`
	CooldownBaseSec int `yaml:"cooldown_base_sec"`

	// Disable detector permanently if failure counts reached MaxDisableCycles
	MaxDisableCycles int `yaml:"max_disable_cycles"`
}

// DefaultFailoverConfig will disable detectors consistely fail for:
// 3  failures: 1 * 120 secs cooldown
// 6  failures: 2 * 120 secs cooldown
// ...
// 18 failures: disable it until next config reloading or restarting
func DefaultFailoverConfig() FailoverConfig {
	return FailoverConfig{
		MaxFailures:      3,
		CooldownBaseSec:  120,
		MaxDisableCycles: 6,
	}
}

// CheckAndMerge fills unset fields from dfc and validates the result.
func (fc *FailoverConfig) CheckAndMerge(dfc FailoverConfig) (err error) {
	if fc.MaxFailures < 1 {
		fc.MaxFailures = dfc.MaxFailures
	}
	if fc.MaxFailures < 1 {
		err = fmt.Errorf("the failover max failures must be positive")
		return
	}

	if fc.CooldownBaseSec <= 0 {
		fc.CooldownBaseSec = dfc.CooldownBaseSec
		if fc.CooldownBaseSec <= 0 {
			err = fmt.Errorf("the failover cooldown must be positive")
			return
		}
	}

	if fc.MaxDisableCycles < 1 {
		fc.MaxDisableCycles = dfc.MaxDisableCycles
	}
	if fc.MaxDisableCycles <= 1 {
		logrus.Warnf(
			"you set the failover max disable cycles as %d, which might causes detector will be DISABLED PERMANENTLY IF ANY FAILURE OCCURRED",
			fc.MaxDisableCycles)
	}
	return
}

// RateLimitConfig defines the parameters for the rate limiter.
type RateLimitConfig struct {
	Enabled    bool    `yaml:"enabled"`
	BucketSize int     `yaml:"bucket_size"`
	RefillTPS  float64 `yaml:"refill_token_per_sec"`
}

func (rlc RateLimitConfig) Check() (err error) {
	if !rlc.Enabled {
		return
	}
	if rlc.RefillTPS <= 0.0 {
		err = fmt.Errorf("limiter refill rate must be positive")
		return
	}
	if rlc.BucketSize <= 0 {
		err = fmt.Errorf("limiter bucket size must be positive")
		return
	}
	return
}

// NewLimiterFromConfig returns nil when rate limiting is disabled.
func (rlc RateLimitConfig) NewLimiterFromConfig(logger *logrus.Entry) *rate.Limiter {
	if !rlc.Enabled {
		return nil
	}
	logger.Debugf(
		"rate limiter refill: %.2f tokens/s, bucket size: %d",
		rlc.RefillTPS,
		rlc.BucketSize,
	)
	return rate.NewLimiter(rate.Limit(rlc.RefillTPS), rlc.BucketSize)
}
