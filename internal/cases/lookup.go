package cases

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shravanasati/tck/internal/bench"
)

func listLookup() bench.Case {
	return bench.Case{
		Name:        "LIST_LOOKUP",
		Description: "membership tests: linear scan of a slice vs a hash set",
		Setup:       listLookupData,
		Baseline:    bench.Of2(bench.BaselineName, linearLookup),
		Variants: []bench.Candidate{
			bench.Of2("SET_LOOKUP", setLookup),
			bench.Of2("BINARY_SEARCH", binarySearchLookup),
		},
	}
}

func listLookupData() ([]any, error) {
	data := make([]int, 100_000)
	for i := range data {
		data[i] = i
	}
	search := newRand().Perm(len(data))[:10_000]
	return []any{data, search}, nil
}

func linearLookup(data, search []int) []int {
	var results []int
	for _, item := range search {
		if slices.Contains(data, item) {
			results = append(results, item)
		}
	}
	return results
}

func setLookup(data, search []int) []int {
	set := make(map[int]struct{}, len(data))
	for _, d := range data {
		set[d] = struct{}{}
	}
	var results []int
	for _, item := range search {
		if _, ok := set[item]; ok {
			results = append(results, item)
		}
	}
	return results
}

func binarySearchLookup(data, search []int) []int {
	sorted := slices.Clone(data)
	slices.Sort(sorted)
	var results []int
	for _, item := range search {
		if _, ok := slices.BinarySearch(sorted, item); ok {
			results = append(results, item)
		}
	}
	return results
}

const missingValue = "default_value"

var errMissingKey = errors.New("missing key")

func dictionaryLookup() bench.Case {
	return bench.Case{
		Name:        "DICTIONARY_LOOKUP",
		Description: "lookups with 80% misses: error values vs comma-ok",
		Setup:       dictionaryData,
		Baseline:    bench.Of2(bench.BaselineName, lookupWithErrors),
		Variants: []bench.Candidate{
			bench.Of2("COMMA_OK", lookupCommaOK),
			bench.Of2("PREALLOCATED", lookupPreallocated),
		},
	}
}

func dictionaryData() ([]any, error) {
	dict := make(map[string]string, 10_000)
	keys := make([]string, 0, 10_000)
	for i := range 10_000 {
		k := fmt.Sprintf("key_%d", i)
		dict[k] = fmt.Sprintf("value_%d", i)
		keys = append(keys, k)
	}

	r := newRand()
	lookups := make([]string, 0, 10_000)
	for _, i := range r.Perm(len(keys))[:2_000] {
		lookups = append(lookups, keys[i])
	}
	for i := range 8_000 {
		lookups = append(lookups, fmt.Sprintf("missing_%d", i))
	}
	r.Shuffle(len(lookups), func(i, j int) { lookups[i], lookups[j] = lookups[j], lookups[i] })
	return []any{dict, lookups}, nil
}

func get(dict map[string]string, key string) (string, error) {
	v, ok := dict[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", errMissingKey, key)
	}
	return v, nil
}

func lookupWithErrors(dict map[string]string, keys []string) []string {
	var results []string
	for _, key := range keys {
		v, err := get(dict, key)
		if errors.Is(err, errMissingKey) {
			results = append(results, missingValue)
			continue
		}
		results = append(results, v)
	}
	return results
}

func lookupCommaOK(dict map[string]string, keys []string) []string {
	var results []string
	for _, key := range keys {
		if v, ok := dict[key]; ok {
			results = append(results, v)
		} else {
			results = append(results, missingValue)
		}
	}
	return results
}

func lookupPreallocated(dict map[string]string, keys []string) []string {
	results := make([]string, len(keys))
	for i, key := range keys {
		v, ok := dict[key]
		if !ok {
			v = missingValue
		}
		results[i] = v
	}
	return results
}
