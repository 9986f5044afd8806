package detect

import (
	"context"
	"fmt"
	"slices"

	"github.com/sebastienrousseau/langweave/detect/detector"
	"github.com/sirupsen/logrus"
)

// Service chains the configured detection strategies.
type Service struct {
	chain *detector.Composite
}

func NewService(conf ServiceConfig) (s *Service, err error) {
	if len(conf.Strategies) == 0 {
		err = fmt.Errorf("no detection strategy configured")
		return
	}

	s = &Service{
		chain: detector.NewComposite(),
	}

	seen := []string{}
	for _, name := range conf.Strategies {
		if slices.Contains(seen, name) {
			return nil, fmt.Errorf("duplicated strategy: %s", name)
		}
		seen = append(seen, name)

		var d detector.LanguageDetector
		d, err = newStrategy(name, conf)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", name, err)
		}
		s.chain.Add(d)
	}
	logrus.Infof("detection service ready with strategies: %v", conf.Strategies)
	return
}

func newStrategy(name string, conf ServiceConfig) (detector.LanguageDetector, error) {
	switch name {
	case StrategyHybrid:
		opts := []detector.HybridOption{}
		if len(conf.Hybrid.Whitelist) > 0 {
			langs, err := detector.WhatlangLangs(conf.Hybrid.Whitelist...)
			if err != nil {
				return nil, err
			}
			opts = append(opts, detector.WithClassifier(detector.NewWhatlangClassifierWithWhitelist(langs...)))
		}
		return detector.TryNewHybrid(opts...)
	case StrategyLingua:
		return detector.NewLinguaDetector(conf.Lingua.Langs, conf.Lingua.MinConfidence)
	case StrategyPool:
		return detector.NewPool(conf.Pool)
	}
	return nil, fmt.Errorf("unrecognized strategy: %s", name)
}

// Detect blocks until a language is found or every strategy failed.
func (s *Service) Detect(text string) (string, error) {
	return s.chain.Detect(text)
}

func (s *Service) DetectAsync(ctx context.Context, text string) <-chan detector.Result {
	return s.chain.DetectAsync(ctx, text)
}

func (s *Service) Strategies() int {
	return s.chain.Len()
}
