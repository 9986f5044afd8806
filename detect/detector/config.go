package detector

import (
	"fmt"
	"strings"

	"github.com/sebastienrousseau/langweave/detect/common"
	"golang.org/x/text/language"
)

type DefaultDetectorConfig struct {
	// Positive
	Weight int `yaml:"weight"`

	// A list of ISO 639-1 language codes that should be configured to detect.
	DetectLangs []string `yaml:"detect_langs"`

	// Minimum confidence score required for a detected language to be
	// considered valid by this detector.
	SourceLangConfidenceThreshold float64 `yaml:"source_lang_confidence_threshold"`

	// A list of ISO 639-1 language codes that this detector will report as valid.
	SourceLangFilter []string `yaml:"source_lang_filter"`

	// Optional. Failover
	Failover common.FailoverConfig `yaml:"failover,omitempty"`

	// Positive
	Timeout int64 `yaml:"timeout"`
}

type DetectorConfig struct {
	DefaultDetectorConfig `yaml:",inline"`

	// Required
	Name string `yaml:"name"`

	// Required
	Type string `yaml:"type"`

	// Optional, the API base URL of remote detectors
	Endpoint string `yaml:"endpoint"`

	// Optional
	Token string `yaml:"token"`

	// openai only
	Model        string `yaml:"model"`
	SystemPrompt string `yaml:"system_prompt"`

	// Optional
	RateLimit common.RateLimitConfig `yaml:"rate_limit"`
}

func (tic *DetectorConfig) CheckAndMergeDefaultConfig(dtc DefaultDetectorConfig) (err error) {
	if tic.Name == "" {
		err = fmt.Errorf("detector name is required")
		return
	}

	if tic.Type == "" {
		err = fmt.Errorf("%s: type is required", tic.Name)
		return
	}

	if tic.Weight <= 0 {
		if dtc.Weight <= 0 {
			err = fmt.Errorf("%s: weight must be positive", tic.Name)
			return
		}
		tic.Weight = dtc.Weight
	}

	if tic.Timeout <= 0 {
		tic.Timeout = dtc.Timeout
	}
	if tic.Timeout <= 0 {
		err = fmt.Errorf("%s: timeout must be positive", tic.Name)
		return
	}

	if len(tic.DetectLangs) == 0 {
		tic.DetectLangs = dtc.DetectLangs
	}
	if len(tic.DetectLangs) == 0 {
		err = fmt.Errorf("%s: no detect languages configured", tic.Name)
		return
	}
	tic.DetectLangs, err = canonicalLangs(tic.DetectLangs)
	if err != nil {
		err = fmt.Errorf("%s: detect languages: %w", tic.Name, err)
		return
	}

	if len(tic.SourceLangFilter) == 0 {
		tic.SourceLangFilter = dtc.SourceLangFilter
	}
	if len(tic.SourceLangFilter) == 0 {
		err = fmt.Errorf("%s: no source language filter configured", tic.Name)
		return
	}
	tic.SourceLangFilter, err = canonicalLangs(tic.SourceLangFilter)
	if err != nil {
		err = fmt.Errorf("%s: source language filter: %w", tic.Name, err)
		return
	}

	if tic.SourceLangConfidenceThreshold <= 0 {
		tic.SourceLangConfidenceThreshold = dtc.SourceLangConfidenceThreshold
	}
	if tic.SourceLangConfidenceThreshold < 0 || tic.SourceLangConfidenceThreshold > 1 {
		err = fmt.Errorf("%s: confidence threshold must in 0-1", tic.Name)
		return
	}

	// Failover
	err = tic.Failover.CheckAndMerge(dtc.Failover)
	if err != nil {
		err = fmt.Errorf("%s: %w", tic.Name, err)
		return
	}

	// Rate Limit
	err = tic.RateLimit.Check()
	if err != nil {
		err = fmt.Errorf("%s: %w", tic.Name, err)
	}
	return
}

// canonicalLangs lowercases codes and rejects anything that is not a base
// language, so "EN" and "en" are the same filter entry.
func canonicalLangs(codes []string) (out []string, err error) {
	out = make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if _, perr := language.ParseBase(c); perr != nil {
			err = common.NewUnsupportedLanguage(c)
			return
		}
		out = append(out, c)
	}
	return
}
