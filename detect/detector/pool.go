package detector

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/sebastienrousseau/langweave/selector"
	"github.com/sirupsen/logrus"
)

const (
	POOL = "pool"
)

type PoolConfig struct {
	// "fallback" or "wrr"
	Selector string `yaml:"selector"`

	// set to negative or zero to disable retry
	MaxRetry int `yaml:"max_retry"`

	// Seconds between two attempts
	RetryCooldown int `yaml:"retry_cooldown"`

	DefaultDetectorConfig DefaultDetectorConfig `yaml:"default_detector_config"`

	Detectors []DetectorConfig `yaml:"detectors"`
}

// Pool spreads requests over managed detector instances picked by a
// selector, retrying on failure. It is a LanguageDetector.
type Pool struct {
	maxRetry      int
	retryCooldown time.Duration
	selector      selector.Selector[*Managed]
	traceSeq      atomic.Uint64
	logger        *logrus.Entry
}

// NewPool validates conf and initializes every configured instance.
func NewPool(conf PoolConfig) (p *Pool, err error) {
	var s selector.Selector[*Managed]
	s, err = selector.New[*Managed](conf.Selector)
	if err != nil {
		return
	}

	if conf.MaxRetry > 0 && conf.RetryCooldown < 0 {
		err = fmt.Errorf("retry cooldown must not be negative")
		return
	}

	p = &Pool{
		maxRetry:      conf.MaxRetry,
		retryCooldown: time.Duration(conf.RetryCooldown) * time.Second,
		selector:      s,
		logger:        logrus.WithField("detector_name", POOL),
	}

	err = p.initDetectors(conf.DefaultDetectorConfig, conf.Detectors)
	if err != nil {
		p = nil
	}
	return
}

// newPoolWith builds a pool from ready managed detectors.
func newPoolWith(s selector.Selector[*Managed], maxRetry int, cooldown time.Duration, items ...*Managed) *Pool {
	p := &Pool{
		maxRetry:      maxRetry,
		retryCooldown: cooldown,
		selector:      s,
		logger:        logrus.WithField("detector_name", POOL),
	}
	for _, m := range items {
		p.selector.AddItem(m)
	}
	return p
}

func (p *Pool) initDetectors(dtc DefaultDetectorConfig, confs []DetectorConfig) (err error) {
	if len(confs) == 0 {
		err = fmt.Errorf("no detector configured")
		return
	}

	names := []string{}
	for _, dc := range confs {
		err = dc.CheckAndMergeDefaultConfig(dtc)
		if err != nil {
			return
		}

		var m *Managed
		m, err = NewManaged(dc)
		if err != nil {
			return
		}

		if slices.Contains(names, m.GetName()) {
			err = fmt.Errorf("duplicated detector name: %s", m.GetName())
			return
		}

		names = append(names, m.GetName())
		p.selector.AddItem(m)
	}
	p.logger.Debugf("%s selector with %d detectors, total weight: %d",
		p.selector.GetType(), p.selector.Len(), p.selector.TotalConfigWeight())
	return
}

func (p *Pool) GetName() string {
	return POOL
}

func (p *Pool) Detect(text string) (string, error) {
	return p.DetectContext(context.Background(), text)
}

func (p *Pool) DetectAsync(ctx context.Context, text string) <-chan Result {
	return Offload(ctx, func() (string, error) {
		return p.DetectContext(ctx, text)
	})
}

// DetectContext asks the selected detectors until one answers, the retries
// are exhausted or ctx is done. Weak answers are not retried.
func (p *Pool) DetectContext(ctx context.Context, text string) (lang string, err error) {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return "", common.NewDetectionFailed(nil)
	}

	req := DetectRequest{
		Text:    normalized,
		TraceId: strconv.FormatUint(p.traceSeq.Add(1), 16),
	}
	logger := p.logger.WithField("trace_id", req.TraceId)

	retry := 0
	for {
		var name string
		var resp *DetectResponse
		resp, name, err = p.detect(ctx, req)
		if err == nil {
			return resp.Language, nil
		}

		if CheckWeakError(err) {
			logger.Debugf("%v", err)
			return "", common.NewDetectionFailed(err)
		}

		if retry >= p.maxRetry {
			logger.Errorf("no more retries: maximum retries exceeded after %d attempts", retry)
			return "", common.NewDetectionFailed(err)
		}
		retry += 1
		if name != "" {
			logger = logger.WithField("detector_instance", name)
		}
		logger.Warnf("%v. Retry attempt %d/%d in %s", err, retry, p.maxRetry, p.retryCooldown)

		select {
		case <-ctx.Done():
			return "", common.NewDetectionFailed(ctx.Err())
		case <-time.After(p.retryCooldown):
		}
	}
}

func (p *Pool) detect(ctx context.Context, req DetectRequest) (resp *DetectResponse, name string, err error) {
	m, err := p.selector.Select()
	if err != nil {
		err = fmt.Errorf("error on select detector: %w", err)
		return
	}
	name = m.GetName()

	resp, err = m.Detect(ctx, req)
	return
}
