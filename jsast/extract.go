package jsast

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

const (
	// DefaultImportName is the identifier whose calls are treated as module references.
	DefaultImportName = "require"

	// DefaultRuntimeName is the identifier rewritten calls are redirected to.
	DefaultRuntimeName = "__pack_require__"
)

// tree-sitter-javascript node types used by the extractor.
const (
	nodeCallExpression = "call_expression"
	nodeIdentifier     = "identifier"
	nodeArguments      = "arguments"
	nodeString         = "string"
	nodeStringFragment = "string_fragment"
	nodeEscapeSequence = "escape_sequence"
	nodeComment        = "comment"
)

// Reference is a require call found in a module. Request is the literal
// argument as written in the source; Line and Column locate the call.
type Reference struct {
	Request string
	Line    int
	Column  int

	arg *edit
}

// Target returns the text the call argument currently prints as.
func (r *Reference) Target() string {
	return r.arg.text
}

// Extractor finds and rewrites require calls.
type Extractor struct {
	importName  string
	runtimeName string
}

// NewExtractor returns an Extractor for require(...) calls that rewrites them
// to DefaultRuntimeName.
func NewExtractor() *Extractor {
	return &Extractor{importName: DefaultImportName, runtimeName: DefaultRuntimeName}
}

// WithRuntimeName returns a copy of the extractor that rewrites calls to name.
func (x *Extractor) WithRuntimeName(name string) *Extractor {
	cp := *x
	cp.runtimeName = name
	return &cp
}

// RuntimeName returns the identifier rewritten calls are redirected to.
func (x *Extractor) RuntimeName() string {
	return x.runtimeName
}

// ExtractAndRewrite scans the tree for calls of the form require("literal"),
// in source order, and rewrites each callee to the runtime loader. The
// argument keeps its original text until Tree.Rewrite supplies the resolved
// id. Calls with computed or multiple arguments are left untouched.
func (x *Extractor) ExtractAndRewrite(t *Tree) []*Reference {
	root := t.root()
	if root == nil {
		return nil
	}

	var refs []*Reference
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == nodeCallExpression {
			if ref := x.match(t, n); ref != nil {
				refs = append(refs, ref)
				return
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)
	return refs
}

func (x *Extractor) match(t *Tree, call *sitter.Node) *Reference {
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Type() != nodeIdentifier || callee.Content(t.src) != x.importName {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != nodeArguments {
		return nil
	}

	var lit *sitter.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg == nil || arg.Type() == nodeComment {
			continue
		}
		if lit != nil {
			return nil
		}
		lit = arg
	}
	if lit == nil || lit.Type() != nodeString {
		return nil
	}
	request, ok := stringValue(lit, t.src)
	if !ok {
		return nil
	}

	t.addEdit(callee.StartByte(), callee.EndByte(), x.runtimeName)
	p := call.StartPoint()
	return &Reference{
		Request: request,
		Line:    int(p.Row) + 1,
		Column:  int(p.Column) + 1,
		arg:     t.addEdit(lit.StartByte(), lit.EndByte(), lit.Content(t.src)),
	}
}

// Rewrite points ref at target. The argument is printed as a double-quoted
// string literal.
func (t *Tree) Rewrite(ref *Reference, target string) {
	ref.arg.text = Quote(target)
}

// stringValue decodes a string literal node.
func stringValue(n *sitter.Node, src []byte) (string, bool) {
	var b strings.Builder
	for i := 0; i < int(n.NamedChildCount()); i++ {
		part := n.NamedChild(i)
		switch part.Type() {
		case nodeStringFragment:
			b.WriteString(part.Content(src))
		case nodeEscapeSequence:
			s, ok := unescape(part.Content(src))
			if !ok {
				return "", false
			}
			b.WriteString(s)
		default:
			return "", false
		}
	}
	return b.String(), true
}

func unescape(seq string) (string, bool) {
	switch seq {
	case `\'`:
		return "'", true
	case `\"`:
		return `"`, true
	}
	r, _, tail, err := strconv.UnquoteChar(seq, 0)
	if err != nil || tail != "" {
		return "", false
	}
	return string(r), true
}
