package bench

import (
	"encoding/json"
	"math"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
	"go.uber.org/zap"

	"github.com/shravanasati/tck/internal/equiv"
)

// SentinelRatio replaces a ratio whose denominator is effectively zero.
const SentinelRatio = 9999.9

const divisionEpsilon = 1e-9

// The time ratio is halved when a slow baseline barely got faster. Both
// thresholds are heuristics and may be tuned.
var (
	MarginalSavingSeconds   = 0.01
	MarginalBaselineSeconds = 0.1
)

const maxMismatchLen = 4096

// SafeDiv is n/d, or SentinelRatio when |d| is below epsilon.
func SafeDiv(n, d float64) float64 {
	if math.Abs(d) < divisionEpsilon || math.IsNaN(d) {
		return SentinelRatio
	}
	r := n / d
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return SentinelRatio
	}
	return r
}

// IOStats are the I/O count deltas of one candidate's representative trial.
type IOStats struct {
	ReadCount  int64 `json:"read_count"`
	WriteCount int64 `json:"write_count"`
}

// ComparisonMetrics relate a candidate to its baseline.
type ComparisonMetrics struct {
	TimeRatio float64 `json:"time_ratio"`
	// Marginal is set when the time ratio was halved.
	Marginal      bool    `json:"marginal,omitempty"`
	CPURatio      float64 `json:"cpu_ratio"`
	MemoryDeltaMB float64 `json:"memory_delta_mb"`
	BaselineIO    IOStats `json:"baseline_io"`
	CandidateIO   IOStats `json:"candidate_io"`
	Correct       bool    `json:"correct"`
	// Mismatch is a textual diff of the two results when they differ.
	Mismatch string `json:"mismatch,omitempty"`
}

// ReadReduction is how many fewer reads the candidate made than the baseline.
func (m ComparisonMetrics) ReadReduction() int64 {
	return m.BaselineIO.ReadCount - m.CandidateIO.ReadCount
}

// Comparer computes ComparisonMetrics. The zero value compares at precision 0,
// use NewComparer for the default.
type Comparer struct {
	Precision int
	Logger    *zap.Logger
}

// NewComparer creates a Comparer at equiv.DefaultPrecision.
func NewComparer(logger *zap.Logger) *Comparer {
	return &Comparer{Precision: equiv.DefaultPrecision, Logger: logger}
}

func (c *Comparer) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Compare never fails. A comparison that blows up counts as incorrect.
func (c *Comparer) Compare(baseline, candidate TrialAggregate) ComparisonMetrics {
	base := baseline.ExecTime.Seconds()
	cand := candidate.ExecTime.Seconds()

	m := ComparisonMetrics{
		TimeRatio:     SafeDiv(base, cand),
		CPURatio:      SafeDiv(baseline.CPUTime.Seconds(), candidate.CPUTime.Seconds()),
		MemoryDeltaMB: candidate.After.MemoryMB - candidate.Before.MemoryMB,
		BaselineIO:    ioDelta(baseline.TrialResult),
		CandidateIO:   ioDelta(candidate.TrialResult),
	}
	if base-cand < MarginalSavingSeconds && base > MarginalBaselineSeconds {
		m.TimeRatio /= 2
		m.Marginal = true
	}

	ok, err := equiv.Compare(baseline.Value, candidate.Value, c.Precision)
	if err != nil {
		c.logger().Warn("result comparison failed, treating as incorrect", zap.Error(err))
	}
	m.Correct = ok
	if !ok {
		m.Mismatch = describeMismatch(baseline.Value, candidate.Value)
	}
	return m
}

func ioDelta(t TrialResult) IOStats {
	return IOStats{
		ReadCount:  t.After.ReadCount - t.Before.ReadCount,
		WriteCount: t.After.WriteCount - t.Before.WriteCount,
	}
}

// describeMismatch renders a JSON diff of the two results, or "" when they
// have no JSON form or encode identically.
func describeMismatch(baseline, candidate any) string {
	left, err := json.Marshal(map[string]any{"result": baseline})
	if err != nil {
		return ""
	}
	right, err := json.Marshal(map[string]any{"result": candidate})
	if err != nil {
		return ""
	}

	diff, err := gojsondiff.New().Compare(left, right)
	if err != nil || !diff.Modified() {
		return ""
	}

	var leftObj map[string]any
	if err := json.Unmarshal(left, &leftObj); err != nil {
		return ""
	}
	out, err := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{ShowArrayIndex: true}).Format(diff)
	if err != nil {
		return ""
	}
	if len(out) > maxMismatchLen {
		out = out[:maxMismatchLen] + "\n..."
	}
	return out
}
