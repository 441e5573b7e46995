package bench

import (
	"sort"
	"time"

	"github.com/shravanasati/tck/internal/quality"
)

// VersionResult is everything measured about one candidate of a case.
type VersionResult struct {
	Name    string          `json:"name"`
	Metrics TrialAggregate  `json:"metrics"`
	Quality quality.Metrics `json:"quality"`
	Source  quality.Source  `json:"source"`
	// Comparison and Score are nil for the baseline.
	Comparison *ComparisonMetrics `json:"comparison,omitempty"`
	Score      *ScoreBreakdown    `json:"score,omitempty"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Fingerprint uint64         `json:"fingerprint"`
	Baseline    *VersionResult `json:"baseline"`
	// Variants holds the scored variants in declaration order.
	Variants []*VersionResult `json:"variants"`
	// Skipped maps variants that never succeeded to the reason.
	Skipped  map[string]string `json:"skipped,omitempty"`
	Started  time.Time         `json:"started"`
	Finished time.Time         `json:"finished"`
}

// Versions maps the baseline and every scored variant by name.
func (r *CaseResult) Versions() map[string]*VersionResult {
	out := make(map[string]*VersionResult, len(r.Variants)+1)
	if r.Baseline != nil {
		out[BaselineName] = r.Baseline
	}
	for _, v := range r.Variants {
		out[v.Name] = v
	}
	return out
}

// Ranked returns the scored variants, best total first.
func (r *CaseResult) Ranked() []*VersionResult {
	ranked := append([]*VersionResult(nil), r.Variants...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Total > ranked[j].Score.Total
	})
	return ranked
}

// Best is the highest scoring variant, nil when none was scored.
func (r *CaseResult) Best() *VersionResult {
	ranked := r.Ranked()
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0]
}

// Duration is how long the whole case took.
func (r *CaseResult) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
