package label

import (
	"fmt"
	"regexp"
)

// Name is a validated entry name. The entry name is also the affinity tag
// inherited by every module reachable from that entry, and it becomes the
// base name of the chunk file, so it must be safe to use as a file name.
type Name struct {
	name string
}

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*$`)

// NewName creates a validated Name from a string.
func NewName(name string) (Name, error) {
	if name == "" {
		return Name{}, fmt.Errorf("entry name cannot be empty")
	}
	if !nameRegex.MatchString(name) {
		return Name{}, fmt.Errorf("invalid entry name %q: must match pattern [A-Za-z0-9_][A-Za-z0-9._-]*", name)
	}
	return Name{name: name}, nil
}

// MustName creates a Name or panics. Use only for constants/tests.
func MustName(name string) Name {
	n, err := NewName(name)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the name string.
func (n Name) String() string {
	return n.name
}

// IsEmpty returns true if this is a zero-value Name.
func (n Name) IsEmpty() bool {
	return n.name == ""
}
