package bench

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNoSuccessfulTrials means a candidate never ran successfully. It is distinct
// from a candidate that ran but did poorly.
var ErrNoSuccessfulTrials = errors.New("no successful trials")

// AggregateOptions bounds how often a candidate is run.
type AggregateOptions struct {
	// Trials is the maximum number of attempts.
	Trials int `json:"trials" yaml:"trials"`
	// MinSuccesses stops the attempts early once reached.
	MinSuccesses int `json:"min_successes" yaml:"min_successes"`
	// OnTrial, when set, is called after every attempt.
	OnTrial func(trial int, res TrialResult) `json:"-" yaml:"-"`
}

// DefaultAggregateOptions runs up to three trials and stops after two successes.
func DefaultAggregateOptions() AggregateOptions {
	return AggregateOptions{Trials: 3, MinSuccesses: 2}
}

func (o AggregateOptions) normalized() AggregateOptions {
	o.Trials = max(o.Trials, 1)
	o.MinSuccesses = min(max(o.MinSuccesses, 1), o.Trials)
	return o
}

// TrialAggregate is the robust summary of a candidate's successful trials.
// Fields of the embedded TrialResult come from the first success, except
// ExecTime which is the median.
type TrialAggregate struct {
	TrialResult
	// IQR of the pure execution time, zero for a single success.
	IQR       time.Duration   `json:"iqr_ns"`
	Mean      time.Duration   `json:"mean_ns"`
	StdDev    time.Duration   `json:"stddev_ns"`
	Times     []time.Duration `json:"times_ns"`
	Attempts  int             `json:"attempts"`
	Successes int             `json:"successes"`
	// Noisy is set when a trial time is a statistical outlier.
	Noisy bool `json:"noisy"`
}

// Aggregate runs fn for up to opts.Trials trials and reduces the successful
// ones. It returns ErrNoSuccessfulTrials when none succeeded.
func (r *Runner) Aggregate(fn Func, args []any, opts AggregateOptions) (TrialAggregate, error) {
	opts = opts.normalized()

	var (
		successes []TrialResult
		lastErr   string
		attempts  int
	)
	for attempts < opts.Trials && len(successes) < opts.MinSuccesses {
		res := r.RunTrial(fn, args...)
		attempts++
		if opts.OnTrial != nil {
			opts.OnTrial(attempts, res)
		}
		if res.Success {
			successes = append(successes, res)
		} else {
			lastErr = res.Error
		}
	}

	if len(successes) == 0 {
		return TrialAggregate{Attempts: attempts}, fmt.Errorf("%w after %d attempts: %s", ErrNoSuccessfulTrials, attempts, lastErr)
	}

	times := make([]time.Duration, len(successes))
	for i, s := range successes {
		times[i] = s.ExecTime
	}
	secs := seconds(times)
	mean, stddev := meanStdDev(secs)

	agg := TrialAggregate{
		TrialResult: successes[0],
		IQR:         fromSeconds(interquartileRange(secs)),
		Mean:        fromSeconds(mean),
		StdDev:      fromSeconds(stddev),
		Times:       times,
		Attempts:    attempts,
		Successes:   len(successes),
		Noisy:       hasOutliers(secs),
	}
	agg.ExecTime = fromSeconds(calculateMedian(secs))

	if agg.Noisy {
		r.logger().Warn("statistical outliers in trial times", zap.Durations("times", times))
	}
	return agg, nil
}
