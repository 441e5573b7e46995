package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"go.uber.org/zap"

	"github.com/shravanasati/tck/internal/quality"
)

var (
	// ErrSetupFailed means a case could not build its arguments.
	ErrSetupFailed = errors.New("case setup failed")
	// ErrBaselineFailed means the baseline never ran successfully and the
	// case was abandoned.
	ErrBaselineFailed = errors.New("baseline failed")
)

// Observer is notified of progress while a case runs.
type Observer interface {
	CandidateStarted(caseName, candidate string, trials int)
	TrialDone(caseName, candidate string, trial int, res TrialResult)
	VersionDone(caseName string, v *VersionResult)
	VersionSkipped(caseName, candidate string, err error)
}

// NopObserver ignores everything. Embed it to implement part of Observer.
type NopObserver struct{}

func (NopObserver) CandidateStarted(string, string, int) {}
func (NopObserver) TrialDone(string, string, int, TrialResult) {}
func (NopObserver) VersionDone(string, *VersionResult) {}
func (NopObserver) VersionSkipped(string, string, error) {}

// Orchestrator runs whole cases: baseline first, then every variant.
type Orchestrator struct {
	Runner    *Runner
	Comparer  *Comparer
	Inspector *quality.Inspector
	Options   AggregateOptions
	Logger    *zap.Logger
	Observer  Observer
}

// NewOrchestrator wires an Orchestrator around runner with default options.
func NewOrchestrator(runner *Runner, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		Runner:    runner,
		Comparer:  NewComparer(logger),
		Inspector: quality.NewInspector(logger),
		Options:   DefaultAggregateOptions(),
		Logger:    logger,
	}
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Orchestrator) observer() Observer {
	if o.Observer == nil {
		return NopObserver{}
	}
	return o.Observer
}

// RunCase measures and scores every candidate of c. It fails only when the
// setup or the baseline fails; variants that never succeed are listed in
// CaseResult.Skipped.
func (o *Orchestrator) RunCase(c Case) (*CaseResult, error) {
	log := o.logger().With(zap.String("case", c.Name))
	res := &CaseResult{
		Name:        c.Name,
		Description: c.Description,
		Skipped:     map[string]string{},
		Started:     time.Now(),
	}

	args, err := setup(c)
	if err != nil {
		log.Error("setup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrSetupFailed, c.Name, err)
	}
	if c.Cleanup != nil {
		defer cleanup(c, args, log)
	}

	baseAgg, err := o.aggregate(c.Name, BaselineName, c.Baseline.Fn, args)
	if err != nil {
		log.Error("baseline never succeeded, abandoning case", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrBaselineFailed, c.Name, err)
	}
	baseSrc, baseQuality := o.inspect(c.Baseline, log)
	res.Baseline = &VersionResult{
		Name:    BaselineName,
		Metrics: baseAgg,
		Quality: baseQuality,
		Source:  baseSrc,
	}
	o.observer().VersionDone(c.Name, res.Baseline)
	sources := []quality.Source{baseSrc}

	for _, v := range c.Variants {
		agg, err := o.aggregate(c.Name, v.Name, v.Fn, args)
		if err != nil {
			log.Warn("skipping variant", zap.String("variant", v.Name), zap.Error(err))
			res.Skipped[v.Name] = err.Error()
			o.observer().VersionSkipped(c.Name, v.Name, err)
			continue
		}

		cmp := o.comparer().Compare(baseAgg, agg)
		src, q := o.inspect(v, log)
		score := Score(cmp, q, baseQuality)
		vr := &VersionResult{
			Name:       v.Name,
			Metrics:    agg,
			Quality:    q,
			Source:     src,
			Comparison: &cmp,
			Score:      &score,
		}
		res.Variants = append(res.Variants, vr)
		sources = append(sources, src)
		o.observer().VersionDone(c.Name, vr)
		log.Debug("variant scored",
			zap.String("variant", v.Name),
			zap.Float64("total", score.Total),
			zap.String("grade", string(score.Grade)),
		)
	}

	res.Fingerprint = fingerprint(c, sources, log)
	res.Finished = time.Now()
	return res, nil
}

func (o *Orchestrator) comparer() *Comparer {
	if o.Comparer == nil {
		return NewComparer(o.Logger)
	}
	return o.Comparer
}

func (o *Orchestrator) aggregate(caseName, candidate string, fn Func, args []any) (TrialAggregate, error) {
	opts := o.Options.normalized()
	o.observer().CandidateStarted(caseName, candidate, opts.Trials)
	userHook := opts.OnTrial
	opts.OnTrial = func(trial int, res TrialResult) {
		o.observer().TrialDone(caseName, candidate, trial, res)
		if userHook != nil {
			userHook(trial, res)
		}
	}
	return o.Runner.Aggregate(fn, args, opts)
}

// inspect never fails; a candidate without readable source gets sentinel quality.
func (o *Orchestrator) inspect(c Candidate, log *zap.Logger) (quality.Source, quality.Metrics) {
	src, err := c.ResolveSource()
	if err != nil {
		log.Warn("source unavailable", zap.String("candidate", c.Name), zap.Error(err))
		return src, quality.Failed(err)
	}
	return src, o.Inspector.Inspect(src)
}

func setup(c Case) (args []any, err error) {
	if c.Setup == nil {
		return nil, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			args = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return c.Setup()
}

func cleanup(c Case, args []any, log *zap.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("cleanup panicked", zap.Any("panic", rec))
		}
	}()
	c.Cleanup(args)
}

type fingerprintInput struct {
	Name       string
	Candidates []string
	Sources    []string
}

// fingerprint identifies a case by its candidates and their source text, so
// history entries from edited code can be told apart.
func fingerprint(c Case, sources []quality.Source, log *zap.Logger) uint64 {
	in := fingerprintInput{Name: key(c.Name), Candidates: []string{BaselineName}}
	for _, v := range c.Variants {
		in.Candidates = append(in.Candidates, v.Name)
	}
	for _, s := range sources {
		in.Sources = append(in.Sources, s.Text)
	}
	h, err := hashstructure.Hash(in, hashstructure.FormatV2, nil)
	if err != nil {
		log.Warn("cannot fingerprint case", zap.Error(err))
		return 0
	}
	return h
}
