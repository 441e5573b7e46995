package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"github.com/shravanasati/tck/internal/quality"
)

// command is an external program invoked once per call, with the case
// arguments appended to its argv.
type command struct {
	argv []string
	dir  string
}

func (f *File) command(line string) (*command, error) {
	argv, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parsing command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	return &command{argv: argv, dir: f.Dir}, nil
}

func (c *command) run(args []any) ([]byte, error) {
	argv := append([]string(nil), c.argv...)
	for _, a := range args {
		argv = append(argv, fmt.Sprint(a))
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = c.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return nil, fmt.Errorf("%s: %w", argv[0], err)
	}
	return out, nil
}

// call runs the command; its value is stdout decoded as JSON, or the trimmed
// text when stdout is not JSON.
func (c *command) call(args ...any) (any, error) {
	out, err := c.run(args)
	if err != nil {
		return nil, err
	}
	return decodeOutput(out), nil
}

// setupArgs turns every non-empty stdout line into one argument.
func (c *command) setupArgs() ([]any, error) {
	out, err := c.run(nil)
	if err != nil {
		return nil, err
	}
	var args []any
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			args = append(args, line)
		}
	}
	return args, nil
}

func decodeOutput(out []byte) any {
	var v any
	if err := json.Unmarshal(out, &v); err == nil {
		return v
	}
	return strings.TrimSpace(string(out))
}

// sourceLocator finds the inspected source lazily. Only Python files are
// supported; an empty function selects the whole file.
func sourceLocator(path, function string) func() (quality.Source, error) {
	return func() (quality.Source, error) {
		if path == "" {
			return quality.Source{}, quality.ErrEmptySource
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".py":
			return quality.PythonFunction(path, function)
		}
		return quality.Source{}, fmt.Errorf("%w: %s", quality.ErrUnsupportedLanguage, path)
	}
}
