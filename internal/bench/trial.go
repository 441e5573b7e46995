package bench

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/shravanasati/tck/internal/sampler"
)

// DefaultSettle is the pause between cleanup and a measured call.
const DefaultSettle = 100 * time.Millisecond

var errNilFunc = errors.New("candidate has no function")

// TrialResult holds the measurements of one call.
type TrialResult struct {
	// ExecTime strictly brackets the call.
	ExecTime time.Duration `json:"exec_time_ns"`
	// TotalTime also covers both snapshots.
	TotalTime time.Duration `json:"total_time_ns"`
	CPUTime   time.Duration `json:"cpu_time_ns"`
	// StartupTime is the bookkeeping before the call.
	StartupTime time.Duration            `json:"startup_time_ns"`
	Before      sampler.ResourceSnapshot `json:"before"`
	After       sampler.ResourceSnapshot `json:"after"`
	Value       any                      `json:"-"`
	Success     bool                     `json:"success"`
	Error       string                   `json:"error,omitempty"`
}

// Runner executes candidates one trial at a time.
type Runner struct {
	Sampler sampler.Sampler
	// Settle is slept after the collection pass, before measuring.
	Settle time.Duration
	Logger *zap.Logger
}

// NewRunner creates a Runner with the default settle delay.
func NewRunner(s sampler.Sampler, logger *zap.Logger) *Runner {
	return &Runner{Sampler: s, Settle: DefaultSettle, Logger: logger}
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) sample() sampler.ResourceSnapshot {
	if r.Sampler == nil {
		return sampler.ResourceSnapshot{}
	}
	return r.Sampler.Sample()
}

// RunTrial calls fn once with args and measures it. Failures of fn, returned
// or panicked, are recorded in the result and never propagate.
func (r *Runner) RunTrial(fn Func, args ...any) TrialResult {
	runtime.GC()
	debug.FreeOSMemory()
	if r.Settle > 0 {
		time.Sleep(r.Settle)
	}

	start := time.Now()
	before := r.sample()
	startup := time.Since(start)

	cpuStart := sampler.ProcessCPUTime()
	callStart := time.Now()
	value, err := invoke(fn, args)
	exec := time.Since(callStart)
	cpu := sampler.ProcessCPUTime() - cpuStart

	after := r.sample()

	res := TrialResult{
		ExecTime:    exec,
		TotalTime:   time.Since(start),
		CPUTime:     max(cpu, 0),
		StartupTime: startup,
		Before:      before,
		After:       after,
		Success:     err == nil,
	}
	if err != nil {
		res.Error = err.Error()
		if res.Error == "" {
			res.Error = fmt.Sprintf("%T", err)
		}
		r.logger().Debug("trial failed", zap.String("error", res.Error))
		return res
	}
	res.Value = value
	return res
}

// invoke converts a panic into an error.
func invoke(fn Func, args []any) (value any, err error) {
	if fn == nil {
		return nil, errNilFunc
	}
	defer func() {
		if rec := recover(); rec != nil {
			value = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	value, err = fn(args...)
	if err != nil {
		value = nil
	}
	return value, err
}
