package quality

import (
	"math"

	sitter "github.com/smacker/go-tree-sitter"
)

// rules holds the per-language node types the metrics are computed from.
type rules struct {
	language Language
	// functionTypes start a function.
	functionTypes set
	// decisionTypes add one to cyclomatic complexity each.
	decisionTypes set
	// elseParents lists the statements whose else branch is a decision.
	elseParents set
	// operandTypes are counted as one Halstead operand and never descended into.
	operandTypes set
	commentTypes set
	// punctuation is ignored by the Halstead count.
	punctuation set
}

type set map[string]bool

func newSet(items ...string) set {
	s := make(set, len(items))
	for _, it := range items {
		s[it] = true
	}
	return s
}

var pythonRules = &rules{
	language:      Python,
	functionTypes: newSet("function_definition"),
	decisionTypes: newSet(
		"if_statement", "elif_clause", "for_statement", "while_statement",
		"except_clause", "except_group_clause", "with_statement", "assert_statement",
		"boolean_operator", "conditional_expression", "for_in_clause", "if_clause",
		"case_clause",
	),
	elseParents:  newSet("for_statement", "while_statement", "try_statement"),
	operandTypes: newSet("identifier", "integer", "float", "string", "true", "false", "none"),
	commentTypes: newSet("comment"),
	punctuation:  newSet("(", ")", "[", "]", "{", "}", ",", ":", ";", ".", "->"),
}

var goRules = &rules{
	language:      Go,
	functionTypes: newSet("function_declaration", "method_declaration", "func_literal"),
	decisionTypes: newSet("if_statement", "for_statement", "expression_case", "type_case", "communication_case"),
	elseParents:   newSet(),
	operandTypes: newSet(
		"identifier", "field_identifier", "type_identifier", "package_identifier",
		"int_literal", "float_literal", "imaginary_literal", "rune_literal",
		"interpreted_string_literal", "raw_string_literal", "true", "false", "nil", "iota",
	),
	commentTypes: newSet("comment"),
	punctuation:  newSet("(", ")", "[", "]", "{", "}", ",", ";", ".", "\n"),
}

func rulesFor(lang Language) (*rules, error) {
	switch lang {
	case Go:
		return goRules, nil
	case Python:
		return pythonRules, nil
	}
	_, err := grammar(lang)
	return nil, err
}

func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}

func firstFunction(root *sitter.Node, r *rules) *sitter.Node {
	var found *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if r.functionTypes[n.Type()] {
			found = n
			return false
		}
		return true
	})
	return found
}

// decisions counts the decision points below n.
func (r *rules) decisions(n *sitter.Node) int {
	count := 0
	walk(n, func(node *sitter.Node) bool {
		t := node.Type()
		switch {
		case r.decisionTypes[t]:
			count++
		case t == "else_clause":
			if p := node.Parent(); p != nil && r.elseParents[p.Type()] {
				count++
			}
		case r.language == Go && t == "binary_expression":
			if op := node.ChildByFieldName("operator"); op != nil {
				if s := op.Type(); s == "&&" || s == "||" {
					count++
				}
			}
		}
		return true
	})
	return count
}

// isDocstring reports whether n is a bare string opening a Python block or module.
func (r *rules) isDocstring(n *sitter.Node) bool {
	if r.language != Python || n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return false
	}
	if n.NamedChild(0).Type() != "string" {
		return false
	}
	parent := n.Parent()
	if parent == nil || (parent.Type() != "block" && parent.Type() != "module") {
		return false
	}
	first := parent.NamedChild(0)
	return first != nil && first.StartByte() == n.StartByte() && first.EndByte() == n.EndByte()
}

type lineCounts struct {
	sloc     int
	comments int
}

func (l lineCounts) commentPercent() float64 {
	if l.sloc == 0 {
		return 0
	}
	return float64(l.comments) / float64(l.sloc) * 100
}

// countLines classifies every row spanned by n as code, comment or blank.
func countLines(n *sitter.Node, r *rules) lineCounts {
	code := map[uint32]bool{}
	comment := map[uint32]bool{}
	mark := func(m map[uint32]bool, node *sitter.Node) {
		for row := node.StartPoint().Row; row <= node.EndPoint().Row; row++ {
			m[row] = true
		}
	}

	walk(n, func(node *sitter.Node) bool {
		t := node.Type()
		switch {
		case r.commentTypes[t] || r.isDocstring(node):
			mark(comment, node)
			return false
		case r.operandTypes[t] || node.ChildCount() == 0:
			if node.EndByte() > node.StartByte() {
				mark(code, node)
			}
			return false
		}
		return true
	})

	counts := lineCounts{sloc: len(code)}
	for row := range comment {
		if !code[row] {
			counts.comments++
		}
	}
	return counts
}

// halsteadVolume is N*log2(n) over the operator and operand tokens of n.
func halsteadVolume(n *sitter.Node, content []byte, r *rules) float64 {
	operators := map[string]int{}
	operands := map[string]int{}

	walk(n, func(node *sitter.Node) bool {
		t := node.Type()
		switch {
		case r.commentTypes[t] || r.isDocstring(node):
			return false
		case r.operandTypes[t]:
			operands[node.Content(content)]++
			return false
		case node.ChildCount() == 0:
			if !r.punctuation[t] && node.EndByte() > node.StartByte() {
				operators[t]++
			}
			return false
		}
		return true
	})

	total := 0
	for _, c := range operators {
		total += c
	}
	for _, c := range operands {
		total += c
	}
	vocabulary := len(operators) + len(operands)
	if vocabulary == 0 {
		return 0
	}
	return float64(total) * math.Log2(float64(vocabulary))
}
