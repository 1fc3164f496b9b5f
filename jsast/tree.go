package jsast

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

const snippetWidth = 40

// SyntaxError reports malformed JavaScript source.
type SyntaxError struct {
	Filename string
	Line     int // 1-based
	Column   int // 1-based, in bytes
	Snippet  string
}

func (e *SyntaxError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("%s:%d:%d: syntax error", e.Filename, e.Line, e.Column)
	}
	return fmt.Sprintf("%s:%d:%d: syntax error near %q", e.Filename, e.Line, e.Column, e.Snippet)
}

// Tree is a parsed JavaScript module together with the edits recorded
// against it. A Tree is not safe for concurrent mutation.
type Tree struct {
	filename string
	src      []byte
	tree     *sitter.Tree
	edits    []*edit
}

// edit replaces src[start:end] with text when the tree is printed.
type edit struct {
	start, end uint32
	text       string
}

// Parse parses src as a JavaScript program. Sources that tree-sitter can only
// recover from with ERROR or MISSING nodes are rejected with a *SyntaxError.
func Parse(ctx context.Context, filename string, src []byte) (*Tree, error) {
	if !utf8.Valid(src) {
		return nil, &SyntaxError{Filename: filename, Line: 1, Column: 1, Snippet: "invalid UTF-8"}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		// Nodes borrow the tree's memory, so the error is built before Close.
		synErr := newSyntaxError(filename, src, firstErrorNode(root))
		tree.Close()
		return nil, synErr
	}

	return &Tree{filename: filename, src: src, tree: tree}, nil
}

// Close releases the underlying tree-sitter tree. Print keeps working after
// Close because it only needs the source bytes and the recorded edits.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Filename returns the name the tree was parsed under.
func (t *Tree) Filename() string {
	return t.filename
}

// Source returns the original, unedited source.
func (t *Tree) Source() []byte {
	return t.src
}

// Print serializes the tree with every recorded edit applied.
func (t *Tree) Print() string {
	if len(t.edits) == 0 {
		return string(t.src)
	}

	edits := make([]*edit, len(t.edits))
	copy(edits, t.edits)
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	b.Grow(len(t.src))
	var pos uint32
	for _, e := range edits {
		if e.start < pos {
			// Overlapping edits cannot come out of the extractor; skip defensively.
			continue
		}
		b.Write(t.src[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.Write(t.src[pos:])
	return b.String()
}

func (t *Tree) root() *sitter.Node {
	if t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

func (t *Tree) addEdit(start, end uint32, text string) *edit {
	e := &edit{start: start, end: end, text: text}
	t.edits = append(t.edits, e)
	return e
}

// firstErrorNode returns the first ERROR or MISSING node in document order.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return n
}

func newSyntaxError(filename string, src []byte, n *sitter.Node) *SyntaxError {
	if n == nil {
		return &SyntaxError{Filename: filename, Line: 1, Column: 1}
	}
	p := n.StartPoint()
	snippet := strings.TrimSpace(n.Content(src))
	if i := strings.IndexByte(snippet, '\n'); i >= 0 {
		snippet = snippet[:i]
	}
	if len(snippet) > snippetWidth {
		snippet = snippet[:snippetWidth]
	}
	return &SyntaxError{
		Filename: filename,
		Line:     int(p.Row) + 1,
		Column:   int(p.Column) + 1,
		Snippet:  snippet,
	}
}
