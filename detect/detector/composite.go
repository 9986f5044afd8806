package detector

import (
	"context"

	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/sirupsen/logrus"
)

// Composite chains detectors and returns the first successful result, in
// registration order. Populate it before sharing it between goroutines.
type Composite struct {
	detectors []LanguageDetector
	logger    *logrus.Entry
}

func NewComposite() *Composite {
	return &Composite{
		detectors: make([]LanguageDetector, 0),
		logger:    logrus.WithField("detector_name", "composite"),
	}
}

// Add appends d to the chain.
func (c *Composite) Add(d LanguageDetector) {
	c.detectors = append(c.detectors, d)
	c.logger.Debugf("added detector '%s' at position %d", nameOf(d), len(c.detectors))
}

func (c *Composite) Len() int {
	return len(c.detectors)
}

func (c *Composite) Detect(text string) (string, error) {
	for _, d := range c.detectors {
		lang, err := d.Detect(text)
		if err == nil {
			return lang, nil
		}
		c.logger.Tracef("detector '%s' failed: %v", nameOf(d), err)
	}
	return "", common.NewDetectionFailed(nil)
}

// DetectAsync awaits each detector's non-blocking form in turn.
func (c *Composite) DetectAsync(ctx context.Context, text string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		for _, d := range c.detectors {
			r := <-d.DetectAsync(ctx, text)
			if r.Err == nil {
				out <- r
				return
			}
			c.logger.Tracef("detector '%s' failed: %v", nameOf(d), r.Err)
		}
		out <- Result{Err: common.NewDetectionFailed(ctx.Err())}
	}()
	return out
}
