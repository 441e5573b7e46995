package quality

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

var (
	// ErrNotAFunction is returned by SourceOf for values that are not functions.
	ErrNotAFunction = errors.New("value is not a function")
	// ErrFunctionNotFound is returned when the requested function is not in the file.
	ErrFunctionNotFound = errors.New("function not found in source file")
)

// SourceOf locates the Go source of fn through the runtime's symbol table and
// extracts the declaration or literal that starts on fn's entry line.
// It fails for functions whose source file is not readable, like binaries
// built elsewhere or compiler generated wrappers.
func SourceOf(fn any) (Source, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Source{}, ErrNotAFunction
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return Source{}, fmt.Errorf("%w: no symbol for pc", ErrFunctionNotFound)
	}
	file, line := rf.FileLine(rf.Entry())
	return GoFunction(file, line)
}

// GoFunction extracts the innermost Go function spanning line (1-based) of file.
func GoFunction(file string, line int) (Source, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return Source{}, err
	}
	tree, err := parse(context.Background(), Go, content)
	if err != nil {
		return Source{}, err
	}
	defer tree.Close()

	root := tree.RootNode()
	row := uint32(max(line-1, 0))
	var best *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		if n.StartPoint().Row > row || n.EndPoint().Row < row {
			return false
		}
		if goRules.functionTypes[n.Type()] {
			if best == nil || n.EndByte()-n.StartByte() < best.EndByte()-best.StartByte() {
				best = n
			}
		}
		return true
	})
	if best == nil {
		return Source{}, fmt.Errorf("%w: %s:%d", ErrFunctionNotFound, file, line)
	}

	return Source{
		Language: Go,
		Text:     best.Content(content),
		File:     file,
		Line:     line,
		Imports:  goImports(root, content),
	}, nil
}

func goImports(root *sitter.Node, content []byte) []Import {
	var imports []Import
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "source_file", "import_declaration", "import_spec_list":
			return true
		case "import_spec":
			pathNode := n.ChildByFieldName("path")
			if pathNode == nil {
				return false
			}
			p, err := strconv.Unquote(pathNode.Content(content))
			if err != nil {
				return false
			}
			imp := Import{Path: p}
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				imp.Name = nameNode.Content(content)
			}
			imports = append(imports, imp)
		}
		return false
	})
	return imports
}

// PythonFunction extracts the def called name from a Python file. An empty
// name returns the whole file.
func PythonFunction(file, name string) (Source, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return Source{}, err
	}
	if name == "" {
		return Source{Language: Python, Text: string(content), File: file, Line: 1}, nil
	}

	tree, err := parse(context.Background(), Python, content)
	if err != nil {
		return Source{}, err
	}
	defer tree.Close()

	var found *sitter.Node
	walk(tree.RootNode(), func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == "function_definition" {
			if id := n.ChildByFieldName("name"); id != nil && id.Content(content) == name {
				found = n
				return false
			}
		}
		return true
	})
	if found == nil {
		return Source{}, fmt.Errorf("%w: %s in %s", ErrFunctionNotFound, name, file)
	}

	return Source{
		Language: Python,
		Text:     dedent(found.Content(content), int(found.StartPoint().Column)),
		File:     file,
		Line:     int(found.StartPoint().Row) + 1,
	}, nil
}

// dedent removes the common indentation of text, whose first line started at
// column firstCol in its file.
func dedent(text string, firstCol int) string {
	lines := strings.Split(strings.Repeat(" ", firstCol)+text, "\n")
	prefix := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	if prefix <= 0 {
		return strings.Join(lines, "\n")
	}
	for i, l := range lines {
		if len(l) >= prefix && strings.TrimSpace(l[:prefix]) == "" {
			lines[i] = l[prefix:]
		} else {
			lines[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
