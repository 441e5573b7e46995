// Package quality computes static quality facts about one function's source:
// cyclomatic complexity, maintainability index, source lines, external
// dependencies and how heavy the technology stack behind them is.
//
// Parsing is done with tree-sitter, so both Go and Python sources are supported.
// Analysis never fails loudly: any problem collapses the numeric fields to -1
// and fills Metrics.Error.
package quality

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"go.uber.org/zap"
)

// Sentinel is the value of every numeric field when analysis failed.
const Sentinel = -1

var (
	// ErrEmptySource is returned for candidates without any source text.
	ErrEmptySource = errors.New("no source text available")
	// ErrUnsupportedLanguage is returned for languages without a grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Language identifies the grammar used to analyze a Source.
type Language string

const (
	Go     Language = "go"
	Python Language = "python"
)

// Import is one import of the file a Go function lives in.
type Import struct {
	// Name is the explicit package name, empty when the default is used.
	Name string `json:"name,omitempty"`
	Path string `json:"path"`
}

// Source is the text of one candidate function.
type Source struct {
	Language Language `json:"language"`
	Text     string   `json:"-"`
	// File and Line locate the function, when known.
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	// Imports of the enclosing file. Only used for Go, where imports never
	// appear inside a function body.
	Imports []Import `json:"-"`
}

// Empty reports whether there is no text to analyze.
func (s Source) Empty() bool {
	return s.Text == ""
}

// Metrics are the static facts about one function.
type Metrics struct {
	Complexity      int     `json:"cyclomatic_complexity"`
	Maintainability float64 `json:"maintainability_index"`
	SLOC            int     `json:"sloc"`
	Dependencies    int     `json:"dependencies"`
	TechWeight      int     `json:"tech_weight"`
	Error           string  `json:"error,omitempty"`
}

// Valid reports whether analysis succeeded.
func (m Metrics) Valid() bool {
	return m.Error == ""
}

// Failed builds the sentinel Metrics for err.
func Failed(err error) Metrics {
	return Metrics{
		Complexity:      Sentinel,
		Maintainability: Sentinel,
		SLOC:            Sentinel,
		Dependencies:    Sentinel,
		TechWeight:      Sentinel,
		Error:           err.Error(),
	}
}

// Inspector analyzes sources. The zero value is usable.
type Inspector struct {
	Logger *zap.Logger
}

// NewInspector creates an Inspector that reports problems to logger.
func NewInspector(logger *zap.Logger) *Inspector {
	return &Inspector{Logger: logger}
}

func (in *Inspector) logger() *zap.Logger {
	if in == nil || in.Logger == nil {
		return zap.NewNop()
	}
	return in.Logger
}

// Inspect analyzes src. It never returns an error; failures produce the
// sentinel Metrics with Error set.
func (in *Inspector) Inspect(src Source) Metrics {
	m, err := analyze(context.Background(), src)
	if err != nil {
		in.logger().Warn("quality analysis unavailable", zap.String("file", src.File), zap.Error(err))
		return Failed(err)
	}
	return m
}

func grammar(lang Language) (*sitter.Language, error) {
	switch lang {
	case Go:
		return golang.GetLanguage(), nil
	case Python:
		return python.GetLanguage(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}

// parse builds a tree for content. A new parser is created on every call.
func parse(ctx context.Context, lang Language, content []byte) (*sitter.Tree, error) {
	g, err := grammar(lang)
	if err != nil {
		return nil, err
	}
	parser := sitter.NewParser()
	parser.SetLanguage(g)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	return tree, nil
}

func analyze(ctx context.Context, src Source) (Metrics, error) {
	if src.Empty() {
		return Metrics{}, ErrEmptySource
	}
	rules, err := rulesFor(src.Language)
	if err != nil {
		return Metrics{}, err
	}

	tree, content, err := parseSnippet(ctx, src)
	if err != nil {
		return Metrics{}, err
	}
	defer tree.Close()

	// metrics cover the function itself, not the wrapper parseSnippet may add
	fn := firstFunction(tree.RootNode(), rules)
	if fn == nil {
		fn = tree.RootNode()
	}

	lines := countLines(fn, rules)
	complexity := 1 + rules.decisions(fn)
	volume := halsteadVolume(fn, content, rules)
	deps := scanDependencies(src)

	return Metrics{
		Complexity:      complexity,
		Maintainability: maintainabilityIndex(volume, complexity, lines.sloc, lines.commentPercent()),
		SLOC:            lines.sloc,
		Dependencies:    len(deps),
		TechWeight:      techWeight(src.Language, deps),
	}, nil
}

// parseSnippet parses a function's text. Go functions are not valid files on
// their own, so they are retried inside a package clause and, for function
// literals, inside a variable declaration.
func parseSnippet(ctx context.Context, src Source) (*sitter.Tree, []byte, error) {
	candidates := []string{src.Text}
	if src.Language == Go && !strings.HasPrefix(strings.TrimSpace(src.Text), "package ") {
		candidates = []string{
			"package snippet\n" + src.Text,
			"package snippet\nvar _ = " + src.Text,
		}
	}

	var lastErr error
	for _, text := range candidates {
		content := []byte(text)
		tree, err := parse(ctx, src.Language, content)
		if err != nil {
			return nil, nil, err
		}
		root := tree.RootNode()
		if root == nil {
			tree.Close()
			lastErr = errors.New("tree-sitter returned nil root node")
			continue
		}
		if root.HasError() {
			tree.Close()
			lastErr = errors.New("source contains syntax errors")
			continue
		}
		return tree, content, nil
	}
	return nil, nil, lastErr
}

// maintainabilityIndex is the radon variant of the SEI formula, scaled to 0..100.
func maintainabilityIndex(volume float64, complexity, sloc int, commentPercent float64) float64 {
	if volume <= 0 || sloc <= 0 {
		return 100
	}
	commentsScale := math.Sqrt(2.46 * commentPercent * math.Pi / 180)
	raw := 171 - 5.2*math.Log(volume) - 0.23*float64(complexity) - 16.2*math.Log(float64(sloc)) + 50*math.Sin(commentsScale)
	return math.Min(math.Max(0, raw*100/171), 100)
}
