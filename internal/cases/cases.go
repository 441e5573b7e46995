// Package cases holds the built-in cases: Go ports of common optimizations,
// each pairing a straightforward baseline with faster variants.
package cases

import (
	"math/rand/v2"

	"github.com/shravanasati/tck/internal/bench"
	"github.com/shravanasati/tck/internal/config"
)

// seed keeps generated inputs identical across runs.
const seed = 20240601

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed>>1))
}

// Builtins returns every built-in case. The config cache is used by the
// CONFIG_LOAD case.
func Builtins(cache *config.Cache) []bench.Case {
	return []bench.Case{
		listLookup(),
		sumRange(),
		stringConcatenation(),
		configLoad(cache),
		dictionaryLookup(),
	}
}

// Register adds every built-in case to reg.
func Register(reg *bench.Registry, cache *config.Cache) error {
	for _, c := range Builtins(cache) {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
