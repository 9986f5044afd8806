package detector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/sebastienrousseau/langweave/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	detectStatePending    = "pending"
	detectStateProcessing = "processing"
	detectStateSuccess    = "success"
	detectStateWeak       = "weak"
	detectStateFailed     = "failed"
)

var (
	allDetectStates = []string{
		detectStatePending,
		detectStateProcessing,
		detectStateSuccess,
		detectStateWeak,
		detectStateFailed,
	}
)

type ManagedOptions struct {
	Instance Instance
	Timeout  int64

	// Failover
	FailoverConfig  common.FailoverConfig
	RateLimitConfig common.RateLimitConfig

	// WRR
	Weight int
}

// Managed wraps an Instance with a timeout, a rate limiter, failover and
// metrics. It is safe for concurrent use.
type Managed struct {
	instance        Instance
	logger          *logrus.Entry
	limiter         *rate.Limiter
	timeout         time.Duration
	failoverHandler common.FailoverHandler

	// Weighted
	configWeight  int
	currentWeight int
	weightedMu    *sync.Mutex
}

// NewManaged builds the instance described by conf and wraps it.
func NewManaged(conf DetectorConfig) (*Managed, error) {
	instance, err := NewDetectorInstance(conf)
	if err != nil {
		return nil, err
	}

	return newManaged(ManagedOptions{
		Instance:        instance,
		Timeout:         conf.Timeout,
		FailoverConfig:  conf.Failover,
		RateLimitConfig: conf.RateLimit,
		Weight:          conf.Weight,
	}), nil
}

func newManaged(opts ManagedOptions) (m *Managed) {
	m = &Managed{
		instance: opts.Instance,
		timeout:  time.Duration(opts.Timeout) * time.Second,
		logger:   logrus.WithField("detector_name", opts.Instance.Name()),

		// Weighted
		configWeight:  opts.Weight,
		currentWeight: 0,
		weightedMu:    new(sync.Mutex),
	}
	m.failoverHandler = common.NewGeneralFailoverHandler(opts.FailoverConfig, m.logger)
	m.limiter = opts.RateLimitConfig.NewLimiterFromConfig(m.logger)

	// Initialize metrics
	metrics.MetricDetectorUp.WithLabelValues(m.GetName()).Set(1)
	metrics.MetricDetectorSelectionTotal.WithLabelValues(m.GetName()).Add(0)
	for _, state := range allDetectStates {
		metrics.MetricDetectorTasks.WithLabelValues(state, m.GetName()).Add(0)
	}
	return
}

// Detect asks the wrapped instance. Weak errors (filtered or low confidence
// answers) are returned as is but do not count as failures.
func (m *Managed) Detect(ctx context.Context, req DetectRequest) (resp *DetectResponse, err error) {
	metrics.MetricDetectorSelectionTotal.WithLabelValues(m.GetName()).Inc()

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	logger := m.logger.WithField("trace_id", req.TraceId)

	logger.Trace("waiting for limiter")
	metrics.MetricDetectorTasks.WithLabelValues(detectStatePending, m.GetName()).Inc()
	err = m.wait(ctx)
	metrics.MetricDetectorTasks.WithLabelValues(detectStatePending, m.GetName()).Dec()
	if err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	logger.Trace("acquired limiter")

	metrics.MetricDetectorTasks.WithLabelValues(detectStateProcessing, m.GetName()).Inc()
	defer metrics.MetricDetectorTasks.WithLabelValues(detectStateProcessing, m.GetName()).Dec()

	logger.Debug("waiting for detect response")
	resp, err = m.instance.Detect(ctx, req)
	if err != nil {
		if CheckWeakError(err) {
			logger.Debugf("weak detect response: %v", err)
			metrics.MetricDetectorTasks.WithLabelValues(detectStateWeak, m.GetName()).Inc()
			return
		}
		var httpErr *common.HTTPError
		if logger.Logger.IsLevelEnabled(logrus.TraceLevel) && errors.As(err, &httpErr) {
			logger.Tracef("failed request:\n%s", httpErr.DumpRequest(true))
			logger.Tracef("failed response:\n%s", httpErr.DumpResponse(true))
		}
		m.onFailure()
		return
	}
	m.onSuccess()
	return
}

func (m *Managed) wait(ctx context.Context) (err error) {
	if m.limiter != nil {
		err = m.limiter.Wait(ctx)
	}
	return
}

func (m *Managed) GetName() string {
	return m.instance.Name()
}

func (m *Managed) onSuccess() {
	metrics.MetricDetectorTasks.WithLabelValues(detectStateSuccess, m.GetName()).Inc()
	metrics.MetricDetectorUp.WithLabelValues(m.GetName()).Set(1)
	m.failoverHandler.OnSuccess()
}

func (m *Managed) onFailure() {
	metrics.MetricDetectorTasks.WithLabelValues(detectStateFailed, m.GetName()).Inc()
	if m.failoverHandler.OnFailure() {
		metrics.MetricDetectorUp.WithLabelValues(m.GetName()).Set(0)
	}
}

func (m *Managed) IsDisabled() bool {
	return m.failoverHandler.IsDisabled()
}

func (m *Managed) GetConfigWeight() int {
	m.weightedMu.Lock()
	defer m.weightedMu.Unlock()
	return m.configWeight
}

func (m *Managed) GetCurrentWeight() int {
	m.weightedMu.Lock()
	defer m.weightedMu.Unlock()
	return m.currentWeight
}

func (m *Managed) SetCurrentWeight(s int) {
	m.weightedMu.Lock()
	m.currentWeight = s
	m.weightedMu.Unlock()
}
