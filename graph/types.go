package graph

import "strings"

// ModuleKey identifies a node: a module id under an affinity.
type ModuleKey struct {
	Affinity string `json:"affinity"`
	ID       string `json:"id"`
}

// String returns "affinity:id".
func (k ModuleKey) String() string {
	return k.Affinity + ":" + k.ID
}

// Less orders keys by affinity, then id.
func (k ModuleKey) Less(o ModuleKey) bool {
	if k.Affinity != o.Affinity {
		return k.Affinity < o.Affinity
	}
	return k.ID < o.ID
}

// ParseModuleKey parses an "affinity:id" string. A string without a colon is
// an id with an empty affinity.
func ParseModuleKey(s string) ModuleKey {
	if affinity, id, ok := strings.Cut(s, ":"); ok {
		return ModuleKey{Affinity: affinity, ID: id}
	}
	return ModuleKey{ID: s}
}

// Graph represents a built module graph.
// It supports bidirectional traversal (dependencies and dependents).
type Graph struct {
	// Entries are the entry modules in declaration order.
	Entries []ModuleKey

	// Modules contains all nodes in the graph, keyed by ModuleKey.
	Modules map[ModuleKey]*Node
}

// Node represents a module in the graph.
type Node struct {
	// Key uniquely identifies this module.
	Key ModuleKey

	// Resource is the resolved resource path.
	Resource string

	// Dependencies are the distinct modules this module requires, in
	// extraction order.
	Dependencies []ModuleKey

	// Dependents are modules that directly require this one (reverse edges),
	// sorted by key.
	Dependents []ModuleKey

	// Requests records the raw request text each dependent used.
	Requests map[ModuleKey]string

	// IsEntry is true if this is an entry module.
	IsEntry bool
}

// DependencyChain represents a path of requires from an entry to a module.
type DependencyChain struct {
	Path []ModuleKey
}

// String returns a human-readable representation of the chain.
func (c DependencyChain) String() string {
	parts := make([]string, len(c.Path))
	for i, k := range c.Path {
		parts[i] = k.ID
	}
	return strings.Join(parts, " -> ")
}

// GraphStats provides statistics about the graph.
type GraphStats struct {
	// TotalModules is the number of nodes.
	TotalModules int `json:"total_modules"`

	// Entries is the number of entry modules.
	Entries int `json:"entries"`

	// Edges is the number of distinct require edges.
	Edges int `json:"edges"`

	// MaxDepth is the longest acyclic require chain below an entry.
	MaxDepth int `json:"max_depth"`

	// Cycles is the number of require cycles found.
	Cycles int `json:"cycles"`
}
