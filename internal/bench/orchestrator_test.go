package bench

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shravanasati/tck/internal/quality"
	"github.com/shravanasati/tck/internal/sampler"
)

func newTestOrchestrator() *Orchestrator {
	return NewOrchestrator(&Runner{Sampler: sampler.Static{}}, nil)
}

func sumRangeLoop(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += i
	}
	return total
}

func sumRangeClosedForm(n int) int {
	return n * (n - 1) / 2
}

func TestScenarioClosedFormSum(t *testing.T) {
	c := Case{
		Name:     "SUM_RANGE",
		Setup:    func() ([]any, error) { return []any{10_000_000}, nil },
		Baseline: Of1(BaselineName, sumRangeLoop),
		Variants: []Candidate{Of1("CLOSED_FORM", sumRangeClosedForm)},
	}

	res, err := newTestOrchestrator().RunCase(c)
	require.NoError(t, err)
	require.Len(t, res.Variants, 1)

	v := res.Variants[0]
	assert.Equal(t, "CLOSED_FORM", v.Name)
	assert.True(t, v.Comparison.Correct)
	assert.GreaterOrEqual(t, v.Comparison.TimeRatio, 50.0)
	assert.Equal(t, 100.0, v.Score.Time)
	assert.Equal(t, 10_000_000*(10_000_000-1)/2, v.Metrics.Value)

	// source lookup goes through the typed function, not the adapter
	require.True(t, v.Quality.Valid(), v.Quality.Error)
	assert.Equal(t, 1, v.Quality.Complexity)
	require.True(t, res.Baseline.Quality.Valid(), res.Baseline.Quality.Error)
	assert.Equal(t, 2, res.Baseline.Quality.Complexity)
	assert.NotZero(t, res.Fingerprint)
}

func listMembership(data, search []int) int {
	found := 0
	for _, item := range search {
		for _, d := range data {
			if d == item {
				found++
				break
			}
		}
	}
	return found
}

func setMembership(data, search []int) int {
	set := make(map[int]struct{}, len(data))
	for _, d := range data {
		set[d] = struct{}{}
	}
	found := 0
	for _, item := range search {
		if _, ok := set[item]; ok {
			found++
		}
	}
	return found
}

func TestScenarioSetLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("quadratic baseline")
	}

	c := Case{
		Name: "LIST_LOOKUP",
		Setup: func() ([]any, error) {
			data := make([]int, 100_000)
			for i := range data {
				data[i] = i
			}
			search := make([]int, 10_000)
			for i := range search {
				search[i] = (i * 7919) % 200_000
			}
			return []any{data, search}, nil
		},
		Baseline: Of2(BaselineName, listMembership),
		Variants: []Candidate{Of2("SET_LOOKUP", setMembership)},
	}

	res, err := newTestOrchestrator().RunCase(c)
	require.NoError(t, err)
	require.Len(t, res.Variants, 1)

	v := res.Variants[0]
	assert.True(t, v.Comparison.Correct)
	assert.Greater(t, v.Comparison.TimeRatio, 10.0)
	assert.Equal(t, 50.0, v.Score.IO)
}

type recordingObserver struct {
	NopObserver
	mu      sync.Mutex
	trials  map[string]int
	done    []string
	skipped []string
}

func (r *recordingObserver) TrialDone(_, candidate string, _ int, _ TrialResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.trials == nil {
		r.trials = map[string]int{}
	}
	r.trials[candidate]++
}

func (r *recordingObserver) VersionDone(_ string, v *VersionResult) {
	r.done = append(r.done, v.Name)
}

func (r *recordingObserver) VersionSkipped(_, candidate string, _ error) {
	r.skipped = append(r.skipped, candidate)
}

func TestScenarioFailingVariantIsSkipped(t *testing.T) {
	cleanups := 0
	obs := &recordingObserver{}
	o := newTestOrchestrator()
	o.Observer = obs

	c := Case{
		Name:     "SUM_RANGE",
		Setup:    func() ([]any, error) { return []any{1000}, nil },
		Baseline: Of1(BaselineName, sumRangeLoop),
		Variants: []Candidate{
			{Name: "BROKEN", Fn: failing},
			Of1("CLOSED_FORM", sumRangeClosedForm),
		},
		Cleanup: func(args []any) {
			assert.Equal(t, []any{1000}, args)
			cleanups++
		},
	}

	res, err := o.RunCase(c)
	require.NoError(t, err)

	assert.Contains(t, res.Skipped, "BROKEN")
	assert.Contains(t, res.Skipped["BROKEN"], "always fails")
	require.Len(t, res.Variants, 1)
	assert.Equal(t, "CLOSED_FORM", res.Variants[0].Name)
	assert.NotNil(t, res.Variants[0].Score)
	assert.NotContains(t, res.Versions(), "BROKEN")
	assert.Contains(t, res.Versions(), BaselineName)

	assert.Equal(t, 1, cleanups)
	assert.Equal(t, []string{BaselineName, "CLOSED_FORM"}, obs.done)
	assert.Equal(t, []string{"BROKEN"}, obs.skipped)
	assert.Equal(t, 3, obs.trials["BROKEN"])
	assert.Equal(t, 2, obs.trials[BaselineName])
}

func TestRunCaseBaselineFailure(t *testing.T) {
	cleanups := 0
	c := Case{
		Name:     "BROKEN_BASELINE",
		Baseline: Candidate{Name: BaselineName, Fn: failing},
		Variants: []Candidate{Of0("CONST", func() int { return 1 })},
		Cleanup:  func([]any) { cleanups++ },
	}

	res, err := newTestOrchestrator().RunCase(c)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrBaselineFailed)
	assert.ErrorIs(t, err, ErrNoSuccessfulTrials)
	assert.Equal(t, 1, cleanups)
}

func TestRunCaseSetupFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func() ([]any, error)
	}{
		{"error", func() ([]any, error) { return nil, errors.New("no fixture") }},
		{"panic", func() ([]any, error) { panic("fixture exploded") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned := false
			c := Case{
				Name:     "BAD_SETUP",
				Setup:    tt.setup,
				Baseline: Of0(BaselineName, func() int { return 1 }),
				Cleanup:  func([]any) { cleaned = true },
			}
			res, err := newTestOrchestrator().RunCase(c)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrSetupFailed)
			assert.False(t, cleaned, "cleanup needs a successful setup")
		})
	}
}

func TestRunCaseCleanupPanicIsContained(t *testing.T) {
	c := Case{
		Name:     "NOISY_CLEANUP",
		Baseline: Of0(BaselineName, func() int { return 1 }),
		Cleanup:  func([]any) { panic("cleanup exploded") },
	}
	assert.NotPanics(t, func() {
		res, err := newTestOrchestrator().RunCase(c)
		require.NoError(t, err)
		assert.Empty(t, res.Variants)
	})
}

func TestRunCaseExplicitSource(t *testing.T) {
	c := Case{
		Name:     "PY",
		Baseline: Candidate{Name: BaselineName, Fn: func(...any) (any, error) { return 1, nil }, Source: quality.Source{Language: quality.Python, Text: "def f():\n    return 1\n"}},
		Variants: []Candidate{{
			Name:   "NO_SOURCE",
			Fn:     func(...any) (any, error) { return 1, nil },
			Locate: func() (quality.Source, error) { return quality.Source{}, quality.ErrEmptySource },
		}},
	}

	res, err := newTestOrchestrator().RunCase(c)
	require.NoError(t, err)
	assert.True(t, res.Baseline.Quality.Valid())
	assert.Equal(t, 2, res.Baseline.Quality.SLOC)

	v := res.Variants[0]
	assert.False(t, v.Quality.Valid())
	assert.Zero(t, v.Score.Quality)
	assert.Zero(t, v.Score.Practicality)
}

func TestCaseResultRanking(t *testing.T) {
	res := &CaseResult{
		Baseline: &VersionResult{Name: BaselineName},
		Variants: []*VersionResult{
			{Name: "A", Score: &ScoreBreakdown{Total: 40}},
			{Name: "B", Score: &ScoreBreakdown{Total: 75}},
			{Name: "C", Score: &ScoreBreakdown{Total: 60}},
		},
	}
	names := []string{}
	for _, v := range res.Ranked() {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"B", "C", "A"}, names)
	assert.Equal(t, "B", res.Best().Name)
	assert.Equal(t, "A", res.Variants[0].Name, "ranking must not reorder the result")
	assert.Len(t, res.Versions(), 4)

	assert.Nil(t, (&CaseResult{}).Best())
}
