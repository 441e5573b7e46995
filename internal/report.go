package internal

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/shravanasati/tck/internal/bench"
	"github.com/shravanasati/tck/internal/quality"
)

// VersionReport is the persisted view of one candidate. Raw results and
// resource snapshots are left out.
type VersionReport struct {
	Name        string  `json:"name"`
	ExecTime    float64 `json:"exec_time_s"`
	TotalTime   float64 `json:"total_time_s"`
	CPUTime     float64 `json:"cpu_time_s"`
	StartupTime float64 `json:"startup_time_s"`
	IQR         float64 `json:"iqr_s"`
	Mean        float64 `json:"mean_s"`
	StdDev      float64 `json:"stddev_s"`
	// Times are the successful trial times in seconds.
	Times     []float64 `json:"times_s"`
	Attempts  int       `json:"attempts"`
	Successes int       `json:"successes"`
	Noisy     bool      `json:"noisy"`

	MemoryMB   float64 `json:"memory_mb"`
	CPUPercent float64 `json:"cpu_percent"`
	GPUCount   int     `json:"gpu_count"`
	Platform   string  `json:"platform"`
	CPUCores   int     `json:"cpu_cores"`
	SourceFile string  `json:"source_file,omitempty"`
	SourceLine int     `json:"source_line,omitempty"`
	Language   string  `json:"language,omitempty"`

	Quality    quality.Metrics          `json:"quality"`
	Comparison *bench.ComparisonMetrics `json:"comparison,omitempty"`
	Score      *bench.ScoreBreakdown    `json:"score,omitempty"`
	GradeLabel string                   `json:"grade_label,omitempty"`
}

// Report is everything exported about one case run.
type Report struct {
	RunID       string                    `json:"run_id"`
	Case        string                    `json:"case"`
	Description string                    `json:"description,omitempty"`
	Fingerprint uint64                    `json:"fingerprint"`
	Started     time.Time                 `json:"started"`
	Ended       time.Time                 `json:"ended"`
	Versions    map[string]*VersionReport `json:"versions"`
	// Order lists the baseline then the scored variants as declared.
	Order   []string          `json:"order"`
	Skipped map[string]string `json:"skipped,omitempty"`
	Best    string            `json:"best,omitempty"`
}

// NewReport converts res, tagging it with a fresh run ID.
func NewReport(res *bench.CaseResult) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		Case:        res.Name,
		Description: res.Description,
		Fingerprint: res.Fingerprint,
		Started:     res.Started,
		Ended:       res.Finished,
		Versions:    map[string]*VersionReport{},
		Skipped:     res.Skipped,
	}
	if res.Baseline != nil {
		r.add(res.Baseline)
	}
	for _, v := range res.Variants {
		r.add(v)
	}
	if best := res.Best(); best != nil {
		r.Best = best.Name
	}
	return r
}

func (r *Report) add(v *bench.VersionResult) {
	m := v.Metrics
	vr := &VersionReport{
		Name:        v.Name,
		ExecTime:    m.ExecTime.Seconds(),
		TotalTime:   m.TotalTime.Seconds(),
		CPUTime:     m.CPUTime.Seconds(),
		StartupTime: m.StartupTime.Seconds(),
		IQR:         m.IQR.Seconds(),
		Mean:        m.Mean.Seconds(),
		StdDev:      m.StdDev.Seconds(),
		Times:       lo.Map(m.Times, func(d time.Duration, _ int) float64 { return d.Seconds() }),
		Attempts:    m.Attempts,
		Successes:   m.Successes,
		Noisy:       m.Noisy,
		MemoryMB:    roundFloat(m.After.MemoryMB, 3),
		CPUPercent:  m.After.CPUPercent,
		GPUCount:    m.After.GPUCount,
		Platform:    m.After.Platform,
		CPUCores:    m.After.CPUCores,
		SourceFile:  v.Source.File,
		SourceLine:  v.Source.Line,
		Language:    string(v.Source.Language),
		Quality:     v.Quality,
		Comparison:  v.Comparison,
		Score:       v.Score,
	}
	if v.Score != nil {
		vr.GradeLabel = v.Score.Grade.Label()
	}
	r.Versions[v.Name] = vr
	r.Order = append(r.Order, v.Name)
}

// Variants returns the scored variants in declaration order.
func (r *Report) Variants() []*VersionReport {
	return lo.FilterMap(r.Order, func(name string, _ int) (*VersionReport, bool) {
		v := r.Versions[name]
		return v, v != nil && v.Score != nil
	})
}

// Baseline returns the baseline entry, nil if the report has none.
func (r *Report) Baseline() *VersionReport {
	return r.Versions[bench.BaselineName]
}
