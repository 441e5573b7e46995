package bench

import (
	"fmt"

	"github.com/shravanasati/tck/internal/quality"
)

// BaselineName is the key the baseline is reported under.
const BaselineName = "baseline"

// Func is one interchangeable implementation under test.
type Func func(args ...any) (any, error)

// Candidate is either the baseline or a named variant of a case.
type Candidate struct {
	Name string
	Fn   Func
	// Impl is the function whose source is inspected. Defaults to Fn.
	Impl any
	// Source, when set, is inspected as is.
	Source quality.Source
	// Locate resolves the source lazily when Source is empty.
	Locate func() (quality.Source, error)
}

// ResolveSource returns the source text to inspect for c.
func (c Candidate) ResolveSource() (quality.Source, error) {
	if !c.Source.Empty() {
		return c.Source, nil
	}
	if c.Locate != nil {
		return c.Locate()
	}
	if c.Impl != nil {
		return quality.SourceOf(c.Impl)
	}
	return quality.SourceOf(c.Fn)
}

// Case is one logical operation: a setup, a baseline and its variants.
type Case struct {
	Name        string
	Description string
	// Setup builds the arguments every candidate is called with.
	Setup    func() ([]any, error)
	Baseline Candidate
	Variants []Candidate
	// Cleanup, when set, runs once after all candidates were measured.
	Cleanup func(args []any)
}

// Of0 builds a candidate from a function without arguments.
func Of0[R any](name string, f func() R) Candidate {
	return Candidate{
		Name: name,
		Impl: f,
		Fn: func(args ...any) (any, error) {
			return f(), nil
		},
	}
}

// Of1 builds a candidate from a one argument function.
func Of1[A, R any](name string, f func(A) R) Candidate {
	return Candidate{
		Name: name,
		Impl: f,
		Fn: func(args ...any) (any, error) {
			if err := wantArgs(args, 1); err != nil {
				return nil, err
			}
			a, err := argAs[A](args, 0)
			if err != nil {
				return nil, err
			}
			return f(a), nil
		},
	}
}

// Of2 builds a candidate from a two argument function.
func Of2[A, B, R any](name string, f func(A, B) R) Candidate {
	return Candidate{
		Name: name,
		Impl: f,
		Fn: func(args ...any) (any, error) {
			if err := wantArgs(args, 2); err != nil {
				return nil, err
			}
			a, err := argAs[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := argAs[B](args, 1)
			if err != nil {
				return nil, err
			}
			return f(a, b), nil
		},
	}
}

// OfE1 builds a candidate from a one argument function that can fail.
func OfE1[A, R any](name string, f func(A) (R, error)) Candidate {
	return Candidate{
		Name: name,
		Impl: f,
		Fn: func(args ...any) (any, error) {
			if err := wantArgs(args, 1); err != nil {
				return nil, err
			}
			a, err := argAs[A](args, 0)
			if err != nil {
				return nil, err
			}
			return f(a)
		},
	}
}

// OfE2 builds a candidate from a two argument function that can fail.
func OfE2[A, B, R any](name string, f func(A, B) (R, error)) Candidate {
	return Candidate{
		Name: name,
		Impl: f,
		Fn: func(args ...any) (any, error) {
			if err := wantArgs(args, 2); err != nil {
				return nil, err
			}
			a, err := argAs[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := argAs[B](args, 1)
			if err != nil {
				return nil, err
			}
			return f(a, b)
		},
	}
}

func wantArgs(args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d arguments, got %d", n, len(args))
	}
	return nil
}

func argAs[T any](args []any, i int) (T, error) {
	v, ok := args[i].(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("argument %d: expected %T, got %T", i, zero, args[i])
	}
	return v, nil
}
