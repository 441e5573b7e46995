// Package config loads case files: YAML documents declaring cases whose
// candidates are external commands, plus the defaults a run should use.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/imdario/mergo"
	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/shravanasati/tck/internal/bench"
	"github.com/shravanasati/tck/internal/equiv"
)

// SupportedMajor is the only case file major version understood.
const SupportedMajor = "v1"

// ErrUnsupportedVersion is returned for case files of another major version.
var ErrUnsupportedVersion = errors.New("unsupported case file version")

// Defaults are run settings a case file may declare.
type Defaults struct {
	Trials       int           `yaml:"trials"`
	MinSuccesses int           `yaml:"min_successes"`
	Settle       time.Duration `yaml:"settle"`
	// Precision is in decimal places, zero means the default.
	Precision int `yaml:"precision"`
}

// BuiltinDefaults are used for every setting a case file leaves out.
func BuiltinDefaults() Defaults {
	opts := bench.DefaultAggregateOptions()
	return Defaults{
		Trials:       opts.Trials,
		MinSuccesses: opts.MinSuccesses,
		Settle:       bench.DefaultSettle,
		Precision:    equiv.DefaultPrecision,
	}
}

// AggregateOptions converts d for the runner.
func (d Defaults) AggregateOptions() bench.AggregateOptions {
	return bench.AggregateOptions{Trials: d.Trials, MinSuccesses: d.MinSuccesses}
}

// CandidateSpec declares one command candidate.
type CandidateSpec struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
	// Source and Function locate the code inspected for quality.
	Source   string `yaml:"source"`
	Function string `yaml:"function"`
}

// CaseSpec declares one case.
type CaseSpec struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Setup       string          `yaml:"setup"`
	Cleanup     string          `yaml:"cleanup"`
	Baseline    CandidateSpec   `yaml:"baseline"`
	Variants    []CandidateSpec `yaml:"variants"`
}

// File is a parsed case file.
type File struct {
	Version  string     `yaml:"version"`
	Defaults Defaults   `yaml:"defaults"`
	Cases    []CaseSpec `yaml:"cases"`

	// Dir is the directory relative paths and commands resolve against.
	Dir string `yaml:"-"`
}

// Parse decodes and validates a case file read from dir.
func Parse(data []byte, dir string) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Version == "" {
		f.Version = SupportedMajor + ".0.0"
	}
	if !semver.IsValid(f.Version) {
		return nil, fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, f.Version)
	}
	if semver.Major(f.Version) != SupportedMajor {
		return nil, fmt.Errorf("%w: %s, expected %s.x.x", ErrUnsupportedVersion, f.Version, SupportedMajor)
	}
	if err := mergo.Merge(&f.Defaults, BuiltinDefaults()); err != nil {
		return nil, err
	}
	f.Dir = dir
	return &f, nil
}

// Loader reads case files through a Cache.
type Loader struct {
	Cache  *Cache
	Logger *zap.Logger
}

// NewLoader creates a Loader. A nil cache gets a private one.
func NewLoader(cache *Cache, logger *zap.Logger) *Loader {
	if cache == nil {
		cache = NewCache(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Cache: cache, Logger: logger}
}

// Load reads and parses the case file at path.
func (l *Loader) Load(path string) (*File, error) {
	dir := filepath.Dir(path)
	v, err := l.Cache.Load(path, func(data []byte) (any, error) {
		return Parse(data, dir)
	})
	if err != nil {
		return nil, err
	}
	return v.(*File), nil
}

// Register loads path and adds every case it declares to reg.
func (l *Loader) Register(path string, reg *bench.Registry) (Defaults, error) {
	f, err := l.Load(path)
	if err != nil {
		return Defaults{}, err
	}
	for _, spec := range f.Cases {
		c, err := f.build(spec, l.Logger)
		if err != nil {
			return f.Defaults, fmt.Errorf("%s: case %q: %w", path, spec.Name, err)
		}
		if err := reg.Register(c); err != nil {
			return f.Defaults, fmt.Errorf("%s: %w", path, err)
		}
	}
	return f.Defaults, nil
}

func (f *File) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.Dir, p)
}

func (f *File) build(spec CaseSpec, logger *zap.Logger) (bench.Case, error) {
	c := bench.Case{Name: strings.TrimSpace(spec.Name), Description: spec.Description}

	if spec.Baseline.Command == "" {
		return c, errors.New("baseline has no command")
	}
	spec.Baseline.Name = bench.BaselineName
	base, err := f.candidate(spec.Baseline)
	if err != nil {
		return c, err
	}
	c.Baseline = base

	for _, vs := range spec.Variants {
		v, err := f.candidate(vs)
		if err != nil {
			return c, fmt.Errorf("variant %q: %w", vs.Name, err)
		}
		c.Variants = append(c.Variants, v)
	}

	if spec.Setup != "" {
		setup, err := f.command(spec.Setup)
		if err != nil {
			return c, fmt.Errorf("setup: %w", err)
		}
		c.Setup = setup.setupArgs
	}
	if spec.Cleanup != "" {
		cleanup, err := f.command(spec.Cleanup)
		if err != nil {
			return c, fmt.Errorf("cleanup: %w", err)
		}
		c.Cleanup = func(args []any) {
			if _, err := cleanup.run(args); err != nil {
				logger.Warn("cleanup command failed", zap.String("case", c.Name), zap.Error(err))
			}
		}
	}
	return c, nil
}

func (f *File) candidate(spec CandidateSpec) (bench.Candidate, error) {
	cmd, err := f.command(spec.Command)
	if err != nil {
		return bench.Candidate{}, err
	}
	return bench.Candidate{
		Name:   strings.TrimSpace(spec.Name),
		Fn:     cmd.call,
		Locate: sourceLocator(f.resolve(spec.Source), spec.Function),
	}, nil
}
