package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	namespace = "langweave"
)

type MetricConfig struct {
	Listen string `yaml:"listen"`
}

var (
	// Stages: "rejected" (empty or letterless input),
	//         "heuristic" (a rule matched),
	//         "statistical" (a word was classified with enough confidence),
	//         "exhausted" (both passes failed).
	MetricHybridStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hybrid_stage_total",
			Help:      "Hybrid detections by the stage that decided them.",
		},
		[]string{"stage"},
	)

	// States: "pending" (waiting for rate limiter),
	//         "processing" (waiting for detector response),
	//         "success" (a language was reported),
	//         "weak" (the response was below threshold or filtered),
	//         "failed" (request error).
	MetricDetectorTasks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "detector_tasks_total",
			Help:      "Total number of detection tasks, by state.",
		},
		[]string{"state", "detector_name"},
	)

	// Value is 1 if the detector is up, 0 if it is disabled.
	MetricDetectorUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "detector_up",
			Help:      "Indicates if a detector is currently up and operational. 1 for up, 0 for disabled.",
		},
		[]string{"detector_name"},
	)

	MetricDetectorSelectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detector_selection_total",
			Help:      "Times of detector instance was chosen.",
		},
		[]string{"detector_name"},
	)

	// States: "pending" (in the stream worker queue), "processing",
	//         "failed" (no language detected), "processed".
	MetricLines = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_lines",
			Help:      "Lines handled by the stream command, by state.",
		},
		[]string{"state"},
	)
)

func InitMetricServer(conf MetricConfig) {
	if conf.Listen == "" {
		logrus.Debug("metrics server disabled")
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logrus.Infof("metrics server listening on %s", conf.Listen)
		if err := http.ListenAndServe(conf.Listen, mux); err != nil {
			logrus.Errorf("metrics server stopped: %v", err)
		}
	}()
}
