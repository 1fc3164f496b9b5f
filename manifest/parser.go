package manifest

import (
	"fmt"
	"strings"

	"github.com/bazelbuild/buildtools/build"
	"github.com/spf13/afero"

	"github.com/albertocavalcante/gopack/internal/buildutil"
	"github.com/albertocavalcante/gopack/label"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     Position
	Message string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
	}
	if e.Pos.Filename != "" {
		return fmt.Sprintf("%s: %s", e.Pos.Filename, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// ParseResult contains the parsed file and any diagnostics.
type ParseResult struct {
	File     *File
	Errors   []*ParseError
	Warnings []*ParseError
}

// HasErrors returns true if there were parse errors.
func (r *ParseResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Err returns the first error, or nil.
func (r *ParseResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

var (
	bundleAttrs = map[string]bool{"output": true, "extension": true, "runtime_name": true}
	entryAttrs  = map[string]bool{"name": true, "path": true, "context": true}
)

// Parser parses manifests.
type Parser struct {
	filename string
	errors   []*ParseError
	warnings []*ParseError
}

// ParseFile reads and parses a manifest from fs.
func ParseFile(fs afero.Fs, filename string) (*ParseResult, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return ParseContent(filename, data)
}

// ParseContent parses manifest content from bytes. Syntax errors are
// returned as a *ParseError; semantic problems are collected in the result.
func ParseContent(filename string, content []byte) (*ParseResult, error) {
	p := &Parser{filename: filename}
	return p.parse(content)
}

func (p *Parser) parse(content []byte) (*ParseResult, error) {
	raw, err := build.ParseBuild(p.filename, content)
	if err != nil {
		return nil, &ParseError{
			Pos:     Position{Filename: p.filename},
			Message: fmt.Sprintf("syntax error: %v", err),
			Wrapped: err,
		}
	}

	file := &File{
		Path:       p.filename,
		Statements: make([]Statement, 0, len(raw.Stmt)),
		raw:        raw,
	}

	var bundle *BundleDecl
	names := make(map[string]Position)
	for _, stmt := range raw.Stmt {
		s := p.parseStatement(stmt)
		switch d := s.(type) {
		case nil:
			continue
		case *BundleDecl:
			if bundle != nil {
				p.addError(d.Pos, "bundle() already declared at %s", bundle.Pos)
				continue
			}
			bundle = d
		case *EntryDecl:
			if !d.Name.IsEmpty() {
				if prev, dup := names[d.Name.String()]; dup {
					p.addError(d.Pos, "entry %q already declared at %s", d.Name, prev)
					continue
				}
				names[d.Name.String()] = d.Pos
			}
		}
		file.Statements = append(file.Statements, s)
	}

	if len(names) == 0 && len(p.errors) == 0 {
		p.addWarning(Position{Filename: p.filename}, "manifest declares no entries")
	}

	return &ParseResult{
		File:     file,
		Errors:   p.errors,
		Warnings: p.warnings,
	}, nil
}

func (p *Parser) parseStatement(expr build.Expr) Statement {
	call, ok := expr.(*build.CallExpr)
	if !ok {
		if _, isComment := expr.(*build.CommentBlock); !isComment {
			start, _ := expr.Span()
			p.addWarning(p.positionAt(start), "ignoring non-call statement")
		}
		return nil
	}

	pos := p.position(call)
	switch name := buildutil.FuncName(call); name {
	case "bundle":
		return p.parseBundle(call, pos)
	case "entry":
		return p.parseEntry(call, pos)
	default:
		p.addWarning(pos, "unknown function %q", name)
		return &UnknownStatement{
			Pos:      pos,
			FuncName: name,
			Raw:      expr,
		}
	}
}

func (p *Parser) parseBundle(call *build.CallExpr, pos Position) *BundleDecl {
	p.checkAttrs(call, pos, "bundle", bundleAttrs)
	b := &BundleDecl{
		Pos:         pos,
		Output:      p.stringAttr(call, pos, "output"),
		Extension:   p.stringAttr(call, pos, "extension"),
		RuntimeName: p.stringAttr(call, pos, "runtime_name"),
	}
	if b.Extension != "" && !strings.HasPrefix(b.Extension, ".") {
		p.addError(pos, "bundle extension %q must start with a dot", b.Extension)
	}
	return b
}

func (p *Parser) parseEntry(call *build.CallExpr, pos Position) *EntryDecl {
	p.checkAttrs(call, pos, "entry", entryAttrs)
	e := &EntryDecl{
		Pos:     pos,
		Path:    p.stringAttr(call, pos, "path"),
		Context: p.stringAttr(call, pos, "context"),
	}

	rawName := p.stringAttr(call, pos, "name")
	switch {
	case rawName == "":
		p.addError(pos, "entry() requires a name")
	default:
		name, err := label.NewName(rawName)
		if err != nil {
			p.errors = append(p.errors, &ParseError{Pos: pos, Message: err.Error(), Wrapped: err})
		} else {
			e.Name = name
		}
	}
	if e.Path == "" {
		p.addError(pos, "entry() requires a path")
	}
	return e
}

// checkAttrs reports positional arguments and unknown keywords.
func (p *Parser) checkAttrs(call *build.CallExpr, pos Position, fn string, known map[string]bool) {
	if n := buildutil.Positional(call); n > 0 {
		p.addError(pos, "%s() takes only keyword arguments, got %d positional", fn, n)
	}
	for _, kw := range buildutil.Keywords(call) {
		if !known[kw] {
			p.addWarning(pos, "%s() has unknown attribute %q", fn, kw)
		}
	}
}

// stringAttr returns a string attribute, reporting an error if it is set to
// anything but a string literal.
func (p *Parser) stringAttr(call *build.CallExpr, pos Position, name string) string {
	v := buildutil.Attr(call, name)
	if v == nil {
		return ""
	}
	if _, ok := v.(*build.StringExpr); !ok {
		p.addError(pos, "attribute %q must be a string, got %v", name, buildutil.ExtractValue(v))
		return ""
	}
	return buildutil.String(call, name)
}

func (p *Parser) position(expr build.Expr) Position {
	start, _ := expr.Span()
	return p.positionAt(start)
}

func (p *Parser) positionAt(start build.Position) Position {
	return Position{
		Filename: p.filename,
		Line:     start.Line,
		Column:   start.LineRune,
	}
}

func (p *Parser) addError(pos Position, format string, args ...any) {
	p.errors = append(p.errors, &ParseError{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *Parser) addWarning(pos Position, format string, args ...any) {
	p.warnings = append(p.warnings, &ParseError{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}
