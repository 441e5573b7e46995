package internal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shravanasati/tck/internal/bench"
)

// Metrics records case runs into a private Prometheus registry, which can be
// dumped in the text exposition format for the node_exporter textfile
// collector.
type Metrics struct {
	registry *prometheus.Registry

	trialSeconds *prometheus.HistogramVec
	trialsTotal  *prometheus.CounterVec
	skipsTotal   *prometheus.CounterVec
	timeRatio    *prometheus.GaugeVec
	score        *prometheus.GaugeVec
	quality      *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,

		// Labels: case, candidate
		trialSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tck",
			Subsystem: "trial",
			Name:      "exec_seconds",
			Help:      "Execution time of successful trials in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 14),
		}, []string{"case", "candidate"}),

		// Labels: case, candidate, status (success, failure)
		trialsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tck",
			Subsystem: "trial",
			Name:      "total",
			Help:      "Trials attempted",
		}, []string{"case", "candidate", "status"}),

		skipsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tck",
			Subsystem: "version",
			Name:      "skipped_total",
			Help:      "Variants skipped because no trial succeeded",
		}, []string{"case", "candidate"}),

		timeRatio: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tck",
			Subsystem: "version",
			Name:      "time_ratio",
			Help:      "Baseline time divided by variant time",
		}, []string{"case", "candidate"}),

		// Labels: case, candidate, component (time, cpu, memory, io, quality, practicality, total)
		score: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tck",
			Subsystem: "version",
			Name:      "score",
			Help:      "Performance score components on a 0 to 100 scale",
		}, []string{"case", "candidate", "component"}),

		// Labels: case, candidate, metric (complexity, maintainability, sloc)
		quality: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tck",
			Subsystem: "version",
			Name:      "quality",
			Help:      "Static code quality metrics",
		}, []string{"case", "candidate", "metric"}),
	}
}

func (m *Metrics) CandidateStarted(string, string, int) {}

func (m *Metrics) TrialDone(caseName, candidate string, _ int, res bench.TrialResult) {
	status := "failure"
	if res.Success {
		status = "success"
		m.trialSeconds.WithLabelValues(caseName, candidate).Observe(res.ExecTime.Seconds())
	}
	m.trialsTotal.WithLabelValues(caseName, candidate, status).Inc()
}

func (m *Metrics) VersionDone(caseName string, v *bench.VersionResult) {
	if v.Quality.Valid() {
		m.quality.WithLabelValues(caseName, v.Name, "complexity").Set(float64(v.Quality.Complexity))
		m.quality.WithLabelValues(caseName, v.Name, "maintainability").Set(v.Quality.Maintainability)
		m.quality.WithLabelValues(caseName, v.Name, "sloc").Set(float64(v.Quality.SLOC))
	}
	if v.Comparison != nil {
		m.timeRatio.WithLabelValues(caseName, v.Name).Set(v.Comparison.TimeRatio)
	}
	if s := v.Score; s != nil {
		for component, value := range map[string]float64{
			"time":         s.Time,
			"cpu":          s.CPU,
			"memory":       s.Memory,
			"io":           s.IO,
			"quality":      s.Quality,
			"practicality": s.Practicality,
			"total":        s.Total,
		} {
			m.score.WithLabelValues(caseName, v.Name, component).Set(value)
		}
	}
}

func (m *Metrics) VersionSkipped(caseName, candidate string, _ error) {
	m.skipsTotal.WithLabelValues(caseName, candidate).Inc()
}

// WriteFile dumps every collected metric to path.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
