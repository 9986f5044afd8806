package main

import (
	"crypto/md5"
	"fmt"

	"github.com/sebastienrousseau/langweave/metrics"
	"github.com/sirupsen/logrus"
)

const (
	lineStatePending    = "pending"
	lineStateProcessing = "processing"
	lineStateFailed     = "failed"
	lineStateProcessed  = "processed"
)

var (
	allLineStates = []string{
		lineStatePending,
		lineStateProcessing,
		lineStateProcessed,
		lineStateFailed,
	}
)

func init() {
	for _, state := range allLineStates {
		metrics.MetricLines.WithLabelValues(state).Add(0)
	}
}

// Line is one input line of the stream command.
type Line struct {
	Number  int
	Content string
	TraceId string
	logger  *logrus.Entry
}

func newLine(number int, content string) *Line {
	l := &Line{
		Number:  number,
		Content: content,
	}
	l.TraceId = l.traceId()
	l.logger = logrus.WithFields(logrus.Fields{
		"line":     number,
		"trace_id": l.TraceId,
	})
	return l
}

func (l *Line) traceId() string {
	h := md5.New()
	var b []byte
	h.Write(fmt.Appendf(b, "%d%s", l.Number, l.Content))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (l *Line) onPending() {
	metrics.MetricLines.WithLabelValues(lineStatePending).Inc()
}

func (l *Line) onProcessing() {
	metrics.MetricLines.WithLabelValues(lineStatePending).Dec()
	metrics.MetricLines.WithLabelValues(lineStateProcessing).Inc()
}

func (l *Line) onFailed(err error) {
	metrics.MetricLines.WithLabelValues(lineStateFailed).Inc()
	l.logger.Debugf("no language detected: %v", err)
	l.onProcessed()
}

func (l *Line) onSuccess(lang string) {
	metrics.MetricLines.WithLabelValues(lineStateProcessed).Inc()
	l.logger.Tracef("detected language '%s'", lang)
	l.onProcessed()
}

func (l *Line) onProcessed() {
	metrics.MetricLines.WithLabelValues(lineStateProcessing).Dec()
}
