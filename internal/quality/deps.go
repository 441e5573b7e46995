package quality

import (
	"path"
	"regexp"
	"sort"
	"strings"
)

var pythonImport = regexp.MustCompile(`(?m)^\s*(?:import|from)\s+(\w+)`)

// pythonStdlib is deliberately short: anything not listed counts as external.
var pythonStdlib = newSet(
	"os", "sys", "re", "math", "time", "datetime", "json", "collections",
	"itertools", "functools", "operator", "pathlib", "typing", "inspect",
	"gc", "platform", "threading", "multiprocessing", "subprocess",
)

var pythonTech = map[string]int{
	"numpy": 2, "numba": 3, "pandas": 2, "scipy": 2,
	"torch": 3, "tensorflow": 3, "jax": 3, "cython": 3,
	"multiprocessing": 2, "concurrent": 2, "asyncio": 2,
}

// goTech maps import path prefixes to their stack weight.
var goTech = map[string]int{
	"C":                            3,
	"gonum.org/v1/gonum":           2,
	"golang.org/x/sync":            2,
	"github.com/klauspost/cpuid":   3,
	"github.com/minio/simdjson-go": 3,
	"github.com/alitto/pond":       2,
}

var goVersionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// scanDependencies returns the distinct external dependencies the source uses.
func scanDependencies(src Source) []string {
	var deps []string
	switch src.Language {
	case Python:
		deps = pythonDependencies(src.Text)
	case Go:
		deps = goDependencies(src.Text, src.Imports)
	}
	sort.Strings(deps)
	return deps
}

func pythonDependencies(text string) []string {
	seen := map[string]bool{}
	var deps []string
	for _, m := range pythonImport.FindAllStringSubmatch(text, -1) {
		mod := m[1]
		if pythonStdlib[mod] || seen[mod] {
			continue
		}
		seen[mod] = true
		deps = append(deps, mod)
	}
	return deps
}

// goDependencies keeps the non-stdlib imports whose package name the function
// body actually references.
func goDependencies(text string, imports []Import) []string {
	seen := map[string]bool{}
	var deps []string
	for _, imp := range imports {
		if isGoStdlib(imp.Path) || seen[imp.Path] {
			continue
		}
		name := imp.Name
		if name == "" {
			name = goPackageName(imp.Path)
		}
		if name == "_" || name == "." {
			continue
		}
		ref := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\.`)
		if !ref.MatchString(text) {
			continue
		}
		seen[imp.Path] = true
		deps = append(deps, imp.Path)
	}
	return deps
}

func isGoStdlib(importPath string) bool {
	if importPath == "C" {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}

// goPackageName guesses the package name of an import path the way it is
// usually declared: the last element, minus major version and go- affixes.
func goPackageName(importPath string) string {
	base := path.Base(importPath)
	if goVersionSuffix.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(base, ".v"); i > 0 {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	base = strings.TrimSuffix(base, "-go")
	return strings.ReplaceAll(base, "-", "_")
}

// techWeight is the heaviest stack weight among deps; 1 means plain code.
func techWeight(lang Language, deps []string) int {
	weight := 1
	for _, dep := range deps {
		var w int
		switch lang {
		case Python:
			w = pythonTech[dep]
		case Go:
			for prefix, pw := range goTech {
				if dep == prefix || strings.HasPrefix(dep, prefix+"/") {
					w = max(w, pw)
				}
			}
		}
		weight = max(weight, w)
	}
	return weight
}
