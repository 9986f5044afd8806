package detect

import (
	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/sebastienrousseau/langweave/detect/detector"
	"github.com/sebastienrousseau/langweave/selector"
)

const (
	StrategyHybrid = detector.HYBRID
	StrategyLingua = detector.LINGUA
	StrategyPool   = detector.POOL
)

// ServiceConfig holds all configuration related to the detection service.
type ServiceConfig struct {
	// Detectors tried in order, the first success wins.
	Strategies []string     `yaml:"strategies"`
	Hybrid     HybridConfig `yaml:"hybrid"`
	Lingua     LinguaConfig `yaml:"lingua"`

	Pool detector.PoolConfig `yaml:"pool"`
}

type HybridConfig struct {
	// Optional. Restricts the statistical fallback to these ISO 639-1 or
	// ISO 639-3 codes.
	Whitelist []string `yaml:"whitelist"`
}

type LinguaConfig struct {
	// ISO 639-1 codes, at least two.
	Langs         []string `yaml:"langs"`
	MinConfidence float64  `yaml:"min_confidence"`
}

// NewServiceConfig returns the configuration of a hybrid-only service with
// the pool defaults filled in.
func NewServiceConfig() (c ServiceConfig) {
	c = ServiceConfig{
		Strategies: []string{StrategyHybrid},
		Hybrid: HybridConfig{
			Whitelist: make([]string, 0),
		},
		Lingua: LinguaConfig{
			Langs:         SupportedLanguages(),
			MinConfidence: 0.5,
		},
		Pool: detector.PoolConfig{
			Selector:      selector.FALLBACK,
			MaxRetry:      0,
			RetryCooldown: 1,
			Detectors:     make([]detector.DetectorConfig, 0),
		},
	}

	c.Pool.DefaultDetectorConfig.Weight = 1
	c.Pool.DefaultDetectorConfig.Timeout = 10
	c.Pool.DefaultDetectorConfig.DetectLangs = SupportedLanguages()
	c.Pool.DefaultDetectorConfig.SourceLangFilter = SupportedLanguages()
	c.Pool.DefaultDetectorConfig.Failover = common.DefaultFailoverConfig()
	return
}
