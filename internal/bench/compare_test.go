package bench

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shravanasati/tck/internal/sampler"
)

func aggregateOf(exec, cpu time.Duration, value any) TrialAggregate {
	return TrialAggregate{TrialResult: TrialResult{ExecTime: exec, CPUTime: cpu, Value: value, Success: true}}
}

func TestSafeDiv(t *testing.T) {
	for _, d := range []float64{0, 1e-10, -1e-10, 9.99e-10, math.Copysign(0, -1)} {
		got := SafeDiv(5, d)
		assert.Equal(t, SentinelRatio, got, "d=%g", d)
		assert.False(t, math.IsInf(got, 0) || math.IsNaN(got))
	}
	assert.Equal(t, 2.5, SafeDiv(5, 2))
	assert.Equal(t, -5.0, SafeDiv(5, -1))
	assert.Equal(t, SentinelRatio, SafeDiv(math.Inf(1), 1))
}

func TestCompareRatios(t *testing.T) {
	c := NewComparer(nil)
	m := c.Compare(
		aggregateOf(40*time.Millisecond, 20*time.Millisecond, 10),
		aggregateOf(10*time.Millisecond, 0, 10),
	)
	assert.InDelta(t, 4.0, m.TimeRatio, 1e-9)
	assert.Equal(t, SentinelRatio, m.CPURatio)
	assert.False(t, m.Marginal)
	assert.True(t, m.Correct)
	assert.Empty(t, m.Mismatch)
}

func TestCompareMarginalImprovement(t *testing.T) {
	c := NewComparer(nil)

	slow := c.Compare(aggregateOf(500*time.Millisecond, 0, 1), aggregateOf(495*time.Millisecond, 0, 1))
	fast := c.Compare(aggregateOf(50*time.Millisecond, 0, 1), aggregateOf(49500*time.Microsecond, 0, 1))

	assert.True(t, slow.Marginal)
	assert.False(t, fast.Marginal)
	assert.InDelta(t, fast.TimeRatio/2, slow.TimeRatio, 1e-9)
	assert.Less(t, TimeScore(slow.TimeRatio), TimeScore(fast.TimeRatio))
}

func TestCompareResources(t *testing.T) {
	base := aggregateOf(time.Millisecond, time.Millisecond, nil)
	base.Before = sampler.ResourceSnapshot{ReadCount: 10, WriteCount: 1}
	base.After = sampler.ResourceSnapshot{ReadCount: 130, WriteCount: 4}

	cand := aggregateOf(time.Millisecond, time.Millisecond, nil)
	cand.Before = sampler.ResourceSnapshot{ReadCount: 10, MemoryMB: 100}
	cand.After = sampler.ResourceSnapshot{ReadCount: 30, MemoryMB: 112.5}

	m := NewComparer(nil).Compare(base, cand)
	assert.Equal(t, IOStats{ReadCount: 120, WriteCount: 3}, m.BaselineIO)
	assert.Equal(t, IOStats{ReadCount: 20}, m.CandidateIO)
	assert.Equal(t, int64(100), m.ReadReduction())
	assert.InDelta(t, 12.5, m.MemoryDeltaMB, 1e-9)
	assert.True(t, m.Correct, "nil results are equivalent")
}

func TestCompareCorrectness(t *testing.T) {
	tests := []struct {
		name     string
		base     any
		cand     any
		want     bool
		wantDiff bool
	}{
		{"float drift", 0.1 + 0.2, 0.3, true, false},
		{"int vs float", 45, 45.0, true, false},
		{"list vs tuple-like array", []int{1, 2, 3}, [3]int{1, 2, 3}, true, false},
		{"different values", []int{1, 2, 3}, []int{1, 2, 4}, false, true},
		{"one nil", nil, 3, false, true},
		{"different maps", map[string]int{"a": 1}, map[string]int{"a": 2}, false, true},
		{"unencodable", func() {}, 1, false, false},
	}

	c := NewComparer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := c.Compare(aggregateOf(time.Millisecond, 0, tt.base), aggregateOf(time.Millisecond, 0, tt.cand))
			assert.Equal(t, tt.want, m.Correct)
			assert.Equal(t, tt.wantDiff, m.Mismatch != "", m.Mismatch)
		})
	}
}
