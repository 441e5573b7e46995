package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shravanasati/tck/internal/quality"
)

var plainQuality = quality.Metrics{Complexity: 3, Maintainability: 70, SLOC: 8, Dependencies: 0, TechWeight: 1}

func TestTimeScore(t *testing.T) {
	tests := []struct {
		ratio, want float64
	}{
		{-3, 0},
		{0, 0},
		{1, 20},
		{1.49, 29.8},
		{1.5, 45},
		{2, 60},
		{6, 70},
		{10, 80},
		{30, 90},
		{50, 100},
		{SentinelRatio, 100},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, TimeScore(tt.ratio), 1e-9, "ratio %g", tt.ratio)
	}
}

func TestTimeScoreMonotonic(t *testing.T) {
	prev := TimeScore(1.0)
	for ratio := 1.0; ratio <= 100.0; ratio += 0.01 {
		s := TimeScore(ratio)
		assert.GreaterOrEqual(t, s, prev, "ratio %g", ratio)
		prev = s
	}
}

func TestCPUScore(t *testing.T) {
	tests := []struct {
		ratio, want float64
	}{
		{0.5, 17.5},
		{1, 35},
		{2, 70},
		{5, 80},
		{10, 90},
		{999, 100},
		{SentinelRatio, 100},
		{-1, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, CPUScore(tt.ratio), 1e-9, "ratio %g", tt.ratio)
	}
}

func TestMemoryScore(t *testing.T) {
	tests := []struct {
		delta, want float64
	}{
		{-20, 100},
		{0, 100},
		{5, 80},
		{10, 70},
		{30, 40},
		{50, 10},
		{60, 40},
		{200, 10},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, MemoryScore(tt.delta), 1e-9, "delta %g", tt.delta)
	}
}

func TestIOScore(t *testing.T) {
	tests := []struct {
		reduction int64
		want      float64
	}{
		{-10, 50},
		{0, 50},
		{1, 62},
		{9, 78},
		{10, 80},
		{50, 90},
		{100, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IOScore(tt.reduction), "reduction %d", tt.reduction)
	}
}

func TestQualityScore(t *testing.T) {
	assert.InDelta(t, 70*0.4+100*0.3+100*0.3, QualityScore(plainQuality), 1e-9)

	complex := quality.Metrics{Complexity: 25, Maintainability: -5, SLOC: 100}
	assert.InDelta(t, 30*0.3+30*0.3, QualityScore(complex), 1e-9)
}

func TestPracticalityScore(t *testing.T) {
	tests := []struct {
		name     string
		q        quality.Metrics
		baseline quality.Metrics
		want     float64
	}{
		{"plain", plainQuality, plainQuality, 100},
		{"two deps, numeric stack", quality.Metrics{SLOC: 8, Dependencies: 2, TechWeight: 2}, plainQuality, 80*0.3 + 80*0.3 + 100*0.2 + 80*0.2},
		{"compiled stack, doubled size", quality.Metrics{SLOC: 16, Dependencies: 1, TechWeight: 3}, plainQuality, 80*0.3 + 60*0.3 + 80*0.2 + 60*0.2},
		{"many deps, huge", quality.Metrics{SLOC: 80, Dependencies: 8, TechWeight: 4}, plainQuality, 30*0.3 + 40*0.3 + 35*0.2 + 60*0.2},
		{"unknown baseline size", quality.Metrics{SLOC: 80}, quality.Failed(quality.ErrEmptySource), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PracticalityScore(tt.q, tt.baseline), 1e-9)
		})
	}
}

func TestScoreCorrectnessHalving(t *testing.T) {
	ratios := []float64{0.5, 1.2, 3, 12, 80, SentinelRatio}
	for _, r := range ratios {
		m := ComparisonMetrics{TimeRatio: r, CPURatio: r, MemoryDeltaMB: 3, Correct: true}
		good := Score(m, plainQuality, plainQuality)
		m.Correct = false
		bad := Score(m, plainQuality, plainQuality)

		assert.Equal(t, 0.5*good.Total, bad.Total, "ratio %g", r)
		assert.True(t, bad.CorrectnessPenalty)
		assert.False(t, good.CorrectnessPenalty)
	}
}

func TestScoreInvalidQuality(t *testing.T) {
	m := ComparisonMetrics{TimeRatio: 60, CPURatio: 1000, Correct: true}
	s := Score(m, quality.Failed(quality.ErrEmptySource), plainQuality)

	assert.Zero(t, s.Quality)
	assert.Zero(t, s.Practicality)
	want := 100*ScoreWeights.Time + 100*ScoreWeights.CPU + 100*ScoreWeights.Memory + 50*ScoreWeights.IO
	assert.InDelta(t, want, s.Total, 1e-9)
	assert.Equal(t, GradeC, s.Grade)
}

func TestScoreWeightsSumToOne(t *testing.T) {
	w := ScoreWeights
	assert.InDelta(t, 1.0, w.Time+w.CPU+w.Memory+w.IO+w.Quality+w.Practicality, 1e-12)
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		total, practicality float64
		want                Grade
	}{
		{100, 100, GradeAPlus},
		{95, 60, GradeAPlus},
		{95, 59.9, GradeA},
		{98, 0, GradeAPlus},
		{85, 80, GradeA},
		{89, 40, GradeBPlus},
		{75, 80, GradeBPlus},
		{65, 80, GradeB},
		{69, 10, GradeCPlus},
		{55, 80, GradeCPlus},
		{45, 80, GradeC},
		{49, 10, GradeD},
		{0, 100, GradeD},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.total, tt.practicality), "total %g practicality %g", tt.total, tt.practicality)
	}
}

func TestGradeLabel(t *testing.T) {
	assert.Equal(t, "A+ (excellent)", GradeAPlus.Label())
	assert.Equal(t, "D (needs work)", GradeD.Label())
	assert.Equal(t, "Z", Grade("Z").Label())
}
