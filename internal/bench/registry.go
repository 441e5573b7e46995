package bench

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
)

var (
	// ErrUnknownCase is returned when looking up a case that was never registered.
	ErrUnknownCase = errors.New("unknown case")
	// ErrInvalidCase is returned by Register for malformed cases.
	ErrInvalidCase = errors.New("invalid case")
)

// Registry maps case names, compared case-insensitively, to cases.
type Registry struct {
	mu    sync.RWMutex
	cases map[string]Case
}

func NewRegistry() *Registry {
	return &Registry{cases: map[string]Case{}}
}

func key(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Register adds c, refusing duplicates and malformed cases.
func (r *Registry) Register(c Case) error {
	if err := validate(c); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(c.Name)
	if _, ok := r.cases[k]; ok {
		return fmt.Errorf("%w: %s is already registered", ErrInvalidCase, c.Name)
	}
	r.cases[k] = c
	return nil
}

func validate(c Case) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCase)
	}
	if c.Baseline.Fn == nil {
		return fmt.Errorf("%w: %s has no baseline", ErrInvalidCase, c.Name)
	}
	seen := map[string]bool{}
	for _, v := range c.Variants {
		name := strings.TrimSpace(v.Name)
		switch {
		case name == "":
			return fmt.Errorf("%w: %s has a variant without a name", ErrInvalidCase, c.Name)
		case strings.EqualFold(name, BaselineName):
			return fmt.Errorf("%w: %s: variant name %q is reserved", ErrInvalidCase, c.Name, BaselineName)
		case seen[name]:
			return fmt.Errorf("%w: %s: duplicate variant %s", ErrInvalidCase, c.Name, name)
		case v.Fn == nil:
			return fmt.Errorf("%w: %s: variant %s has no function", ErrInvalidCase, c.Name, name)
		}
		seen[name] = true
	}
	return nil
}

// Get looks a case up by name.
func (r *Registry) Get(name string) (Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cases[key(name)]
	if !ok {
		return Case{}, fmt.Errorf("%w: %s", ErrUnknownCase, name)
	}
	return c, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return lo.Map(r.Cases(), func(c Case, _ int) string { return c.Name })
}

// Cases returns the registered cases sorted by name.
func (r *Registry) Cases() []Case {
	r.mu.RLock()
	cases := lo.Values(r.cases)
	r.mu.RUnlock()
	sort.Slice(cases, func(i, j int) bool { return key(cases[i].Name) < key(cases[j].Name) })
	return cases
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cases)
}
