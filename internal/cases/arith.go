package cases

import (
	"strings"

	"github.com/shravanasati/tck/internal/bench"
)

func sumRange() bench.Case {
	return bench.Case{
		Name:        "SUM_RANGE",
		Description: "sum of 0..n-1: loop vs closed form",
		Setup:       func() ([]any, error) { return []any{10_000_000}, nil },
		Baseline:    bench.Of1(bench.BaselineName, sumLoop),
		Variants: []bench.Candidate{
			bench.Of1("CLOSED_FORM", sumClosedForm),
		},
	}
}

func sumLoop(n int) int {
	total := 0
	for i := range n {
		total += i
	}
	return total
}

func sumClosedForm(n int) int {
	return n * (n - 1) / 2
}

var baseWords = []string{"hello", "world", "golang", "optimization", "performance", "string", "concatenation"}

func stringConcatenation() bench.Case {
	return bench.Case{
		Name:        "STRING_CONCATENATION",
		Description: "joining 1400 words: repeated += vs a single allocation",
		Setup: func() ([]any, error) {
			words := make([]string, 0, len(baseWords)*200)
			for range 200 {
				words = append(words, baseWords...)
			}
			return []any{words}, nil
		},
		Baseline: bench.Of1(bench.BaselineName, concatPlus),
		Variants: []bench.Candidate{
			bench.Of1("JOIN", concatJoin),
			bench.Of1("BUILDER", concatBuilder),
		},
	}
}

func concatPlus(words []string) string {
	result := ""
	for _, w := range words {
		result += w + " "
	}
	return strings.TrimSpace(result)
}

func concatJoin(words []string) string {
	return strings.Join(words, " ")
}

func concatBuilder(words []string) string {
	size := 0
	for _, w := range words {
		size += len(w) + 1
	}
	var b strings.Builder
	b.Grow(size)
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	return b.String()
}
