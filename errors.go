package gopack

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below match the first three through
// errors.Is, so callers can branch on the failure class without unpacking.
var (
	// ErrIO indicates a file could not be read or written, or the output
	// directory could not be created.
	ErrIO = errors.New("i/o error")

	// ErrParse indicates a module's source is malformed.
	ErrParse = errors.New("parse error")

	// ErrResolution indicates a reference cannot be mapped to a resource
	// under the active resolution context.
	ErrResolution = errors.New("resolution error")

	// ErrNoEntries indicates a build was started without any entry.
	ErrNoEntries = errors.New("no entries declared")

	// ErrDuplicateEntry indicates two entries share the same name.
	ErrDuplicateEntry = errors.New("duplicate entry name")

	// ErrInvalidEntry indicates an entry declaration is incomplete or malformed.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrSealed indicates the compilation no longer accepts changes.
	ErrSealed = errors.New("compilation sealed")

	// ErrInvalidOption indicates a configuration option was rejected.
	ErrInvalidOption = errors.New("invalid option")

	// ErrBuildFailed indicates an earlier build failure left the compilation unusable.
	ErrBuildFailed = errors.New("compilation failed")
)

// IOError reports a failed file-system operation.
type IOError struct {
	Op   string // "read", "write" or "mkdir"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// ParseError reports malformed module source.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ResolutionError reports a reference that cannot be resolved.
type ResolutionError struct {
	Request string // raw request text
	From    string // directory the request was resolved from
	Context string // resolution context
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %q from %s (context %s): %v", e.Request, e.From, e.Context, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrResolution.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }
