package bench

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failing(args ...any) (any, error) {
	return nil, errors.New("always fails")
}

func TestAggregateRequiresSuccess(t *testing.T) {
	calls := 0
	fn := func(args ...any) (any, error) {
		calls++
		return failing(args...)
	}

	agg, err := newTestRunner().Aggregate(fn, nil, AggregateOptions{Trials: 3, MinSuccesses: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSuccessfulTrials)
	assert.Contains(t, err.Error(), "always fails")
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, agg.Attempts)
	assert.Zero(t, agg.Successes)
}

func TestAggregateStopsEarly(t *testing.T) {
	calls := 0
	fn := func(args ...any) (any, error) {
		calls++
		return calls, nil
	}

	var seen []int
	opts := DefaultAggregateOptions()
	opts.OnTrial = func(trial int, res TrialResult) { seen = append(seen, trial) }

	agg, err := newTestRunner().Aggregate(fn, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, 2, agg.Successes)
	assert.Equal(t, 2, agg.Attempts)
	assert.Len(t, agg.Times, 2)
	// the representative fields come from the first success
	assert.Equal(t, 1, agg.Value)
}

func TestAggregateSkipsFailures(t *testing.T) {
	calls := 0
	fn := func(args ...any) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("cold start")
		}
		time.Sleep(time.Millisecond)
		return "warm", nil
	}

	agg, err := newTestRunner().Aggregate(fn, nil, DefaultAggregateOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, agg.Attempts)
	assert.Equal(t, 2, agg.Successes)
	assert.Equal(t, "warm", agg.Value)
	assert.GreaterOrEqual(t, agg.ExecTime, time.Millisecond)
	assert.GreaterOrEqual(t, agg.IQR, time.Duration(0))
}

func TestAggregateSingleSuccessHasNoSpread(t *testing.T) {
	agg, err := newTestRunner().Aggregate(func(args ...any) (any, error) { return 1, nil }, nil, AggregateOptions{Trials: 1, MinSuccesses: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Successes)
	assert.Zero(t, agg.IQR)
	assert.Zero(t, agg.StdDev)
	assert.Equal(t, agg.Times[0], agg.ExecTime)
}

func TestAggregateOptionsNormalized(t *testing.T) {
	tests := []struct {
		in, want AggregateOptions
	}{
		{AggregateOptions{}, AggregateOptions{Trials: 1, MinSuccesses: 1}},
		{AggregateOptions{Trials: 3, MinSuccesses: 5}, AggregateOptions{Trials: 3, MinSuccesses: 3}},
		{AggregateOptions{Trials: 5, MinSuccesses: 2}, AggregateOptions{Trials: 5, MinSuccesses: 2}},
	}
	for _, tt := range tests {
		got := tt.in.normalized()
		assert.Equal(t, tt.want.Trials, got.Trials)
		assert.Equal(t, tt.want.MinSuccesses, got.MinSuccesses)
	}
}
