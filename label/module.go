// Package label provides strongly-typed, validated identifiers for bundle modules.
//
// All types in this package are immutable and validate their values at construction time.
// Zero values are generally invalid - use the constructor functions (NewModuleID, NewName)
// to create valid instances.
//
// # Types
//
// The main types are:
//   - [ModuleID]: The canonical address of a module, e.g. "./src/title.js"
//   - [Name]: An entry name, which doubles as the affinity tag of its closure (e.g. "main")
//
// # Validation Patterns
//
// Module IDs must start with "./", use forward slashes and contain no empty segments.
// Names must match: [A-Za-z0-9_]([A-Za-z0-9._-]*)
package label

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ModuleIDPrefix is the prefix every ModuleID carries.
const ModuleIDPrefix = "./"

// ModuleID is the canonical, context-relative address of a module.
// Two references that resolve to the same resource under the same context
// always produce equal ModuleIDs.
type ModuleID struct {
	id string
}

// NewModuleID creates a validated ModuleID from its string form.
func NewModuleID(id string) (ModuleID, error) {
	if id == "" {
		return ModuleID{}, fmt.Errorf("module id cannot be empty")
	}
	if !strings.HasPrefix(id, ModuleIDPrefix) {
		return ModuleID{}, fmt.Errorf("invalid module id %q: must start with %q", id, ModuleIDPrefix)
	}
	if strings.Contains(id, `\`) {
		return ModuleID{}, fmt.Errorf("invalid module id %q: must use forward slashes", id)
	}
	rest := strings.TrimPrefix(id, ModuleIDPrefix)
	if rest == "" || path.Clean(rest) != rest {
		return ModuleID{}, fmt.Errorf("invalid module id %q: path is not clean", id)
	}
	return ModuleID{id: id}, nil
}

// MustModuleID creates a ModuleID or panics. Use only for constants/tests.
func MustModuleID(id string) ModuleID {
	m, err := NewModuleID(id)
	if err != nil {
		panic(err)
	}
	return m
}

// ModuleIDFromPaths derives the ModuleID of resource relative to context.
// It fails when no relative path exists between the two, for example when
// one path is absolute and the other is not.
func ModuleIDFromPaths(context, resource string) (ModuleID, error) {
	rel, err := filepath.Rel(context, resource)
	if err != nil {
		return ModuleID{}, err
	}
	if rel == "." {
		return ModuleID{}, fmt.Errorf("resource %q is the context directory itself", resource)
	}
	return NewModuleID(ModuleIDPrefix + filepath.ToSlash(rel))
}

// Resource maps the ModuleID back onto context, returning the resource path.
func (m ModuleID) Resource(context string) string {
	return filepath.Join(context, filepath.FromSlash(strings.TrimPrefix(m.id, ModuleIDPrefix)))
}

// String returns the module id string.
func (m ModuleID) String() string {
	return m.id
}

// IsEmpty returns true if this is a zero-value ModuleID.
func (m ModuleID) IsEmpty() bool {
	return m.id == ""
}
