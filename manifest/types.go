package manifest

import (
	"fmt"

	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/gopack/label"
)

// DefaultFilename is the manifest file name looked up by the CLI.
const DefaultFilename = "BUNDLE.bazel"

// DefaultOutput is the output directory used when bundle() omits one.
const DefaultOutput = "dist"

// Position represents a source position for diagnostics.
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// File represents a parsed manifest.
type File struct {
	Path       string
	Statements []Statement
	raw        *build.File
}

// Raw returns the underlying buildtools File for advanced use cases.
func (f *File) Raw() *build.File {
	return f.raw
}

// Bundle returns the bundle() declaration, or nil if the file has none.
func (f *File) Bundle() *BundleDecl {
	for _, s := range f.Statements {
		if b, ok := s.(*BundleDecl); ok {
			return b
		}
	}
	return nil
}

// Entries returns the entry() declarations in source order.
func (f *File) Entries() []*EntryDecl {
	var out []*EntryDecl
	for _, s := range f.Statements {
		if e, ok := s.(*EntryDecl); ok {
			out = append(out, e)
		}
	}
	return out
}

// Output returns the declared output directory, or DefaultOutput.
func (f *File) Output() string {
	if b := f.Bundle(); b != nil && b.Output != "" {
		return b.Output
	}
	return DefaultOutput
}

// Statement is the interface for all manifest statements.
type Statement interface {
	Position() Position
	isStatement()
}

// BundleDecl represents a bundle() declaration.
type BundleDecl struct {
	Pos         Position
	Output      string
	Extension   string
	RuntimeName string
}

func (b *BundleDecl) Position() Position { return b.Pos }
func (b *BundleDecl) isStatement()       {}

// EntryDecl represents an entry() declaration.
type EntryDecl struct {
	Pos     Position
	Name    label.Name
	Path    string
	Context string
}

func (e *EntryDecl) Position() Position { return e.Pos }
func (e *EntryDecl) isStatement()       {}

// UnknownStatement represents a call the manifest format does not define.
type UnknownStatement struct {
	Pos      Position
	FuncName string
	Raw      build.Expr
}

func (u *UnknownStatement) Position() Position { return u.Pos }
func (u *UnknownStatement) isStatement()       {}
