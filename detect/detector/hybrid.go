package detector

import (
	"context"
	"strings"
	"unicode"

	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/sebastienrousseau/langweave/metrics"
	"github.com/sirupsen/logrus"
)

const (
	HYBRID = "hybrid"

	// FallbackConfidenceThreshold is the confidence a statistical guess must
	// strictly exceed to be accepted when the classifier does not flag it
	// as reliable.
	FallbackConfidenceThreshold = 0.3

	hybridStageRejected    = "rejected"
	hybridStageHeuristic   = "heuristic"
	hybridStageStatistical = "statistical"
	hybridStageExhausted   = "exhausted"
)

var (
	allHybridStages = []string{
		hybridStageRejected,
		hybridStageHeuristic,
		hybridStageStatistical,
		hybridStageExhausted,
	}
)

func init() {
	for _, stage := range allHybridStages {
		metrics.MetricHybridStages.WithLabelValues(stage).Add(0)
	}
}

// Hybrid detects languages with an ordered heuristic rule set and falls back
// to a per-word statistical classifier.
//
// A Hybrid holds no mutable state: copies share the rule set and classifier,
// and concurrent calls need no locking.
type Hybrid struct {
	rules      *RuleSet
	ruleDefs   []RuleDef
	classifier Classifier
	logger     *logrus.Entry
}

type HybridOption func(*Hybrid)

// WithRuleSet replaces the default rule set.
func WithRuleSet(rs *RuleSet) HybridOption {
	return func(h *Hybrid) {
		h.rules = rs
	}
}

// WithRuleDefs compiles defs instead of using the default rule set.
func WithRuleDefs(defs []RuleDef) HybridOption {
	return func(h *Hybrid) {
		h.ruleDefs = defs
	}
}

// WithClassifier replaces the whatlanggo classifier. A nil classifier
// disables the statistical pass.
func WithClassifier(c Classifier) HybridOption {
	return func(h *Hybrid) {
		h.classifier = c
	}
}

func WithLogger(logger *logrus.Entry) HybridOption {
	return func(h *Hybrid) {
		h.logger = logger
	}
}

// TryNewHybrid builds a detector and reports rule compilation failures as an
// error of kind common.KindUnexpected.
func TryNewHybrid(opts ...HybridOption) (*Hybrid, error) {
	h := &Hybrid{
		classifier: NewWhatlangClassifier(),
		logger:     logrus.WithField("detector_name", HYBRID),
	}
	for _, opt := range opts {
		opt(h)
	}

	var err error
	switch {
	case h.rules != nil:
	case h.ruleDefs != nil:
		h.rules, err = NewRuleSet(h.ruleDefs)
	default:
		h.rules, err = DefaultRuleSet()
	}
	if err != nil {
		return nil, err
	}
	h.ruleDefs = nil
	return h, nil
}

// NewHybrid is like TryNewHybrid but panics on failure.
func NewHybrid(opts ...HybridOption) *Hybrid {
	h, err := TryNewHybrid(opts...)
	if err != nil {
		panic(err)
	}
	return h
}

// Clone returns a detector sharing h's rule set and classifier.
func (h *Hybrid) Clone() *Hybrid {
	c := *h
	return &c
}

func (h *Hybrid) GetName() string {
	return HYBRID
}

func (h *Hybrid) RuleSet() *RuleSet {
	return h.rules
}

// Detect returns the canonical code of text's language.
//
// Text that is empty after trimming or carries no letter always fails.
// Otherwise the first matching rule decides; if none matches, the first
// word the classifier is confident about decides. Failure is an expected
// outcome for short or ambiguous input.
func (h *Hybrid) Detect(text string) (lang string, err error) {
	normalized := strings.TrimSpace(text)
	if normalized == "" || !strings.ContainsFunc(normalized, unicode.IsLetter) {
		h.onStage(hybridStageRejected)
		return "", common.NewDetectionFailed(nil)
	}

	if rule, ok := h.rules.Match(normalized); ok {
		h.logger.Debugf("heuristic rule matched pattern '%s' for language '%s'", rule.Pattern(), rule.Lang())
		h.onStage(hybridStageHeuristic)
		return rule.Lang(), nil
	}

	if h.classifier != nil {
		for _, word := range strings.Fields(normalized) {
			cl, ok := h.classifier.Classify(word)
			if !ok {
				continue
			}
			if cl.Reliable || cl.Confidence > FallbackConfidenceThreshold {
				lang = NormalizeCode(cl.Language)
				h.logger.Debugf("detected language '%s' for word '%s' (confidence: %.2f)", lang, word, cl.Confidence)
				h.onStage(hybridStageStatistical)
				return lang, nil
			}
		}
	}

	h.onStage(hybridStageExhausted)
	return "", common.NewDetectionFailed(nil)
}

// DetectAsync runs Detect on a worker goroutine.
func (h *Hybrid) DetectAsync(ctx context.Context, text string) <-chan Result {
	worker := h.Clone()
	return Offload(ctx, func() (string, error) {
		return worker.Detect(text)
	})
}

func (h *Hybrid) onStage(stage string) {
	metrics.MetricHybridStages.WithLabelValues(stage).Inc()
}
