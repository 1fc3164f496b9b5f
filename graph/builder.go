package graph

import (
	"sort"

	"github.com/albertocavalcante/gopack"
)

// FromCompilation builds a Graph from a compilation's modules.
func FromCompilation(c *gopack.Compilation) *Graph {
	var entries []ModuleKey
	for _, m := range c.Entries() {
		entries = append(entries, ModuleKey{Affinity: m.Affinity.String(), ID: m.ID.String()})
	}

	mods := c.Modules()
	simple := make([]SimpleModule, 0, len(mods))
	for _, m := range mods {
		sm := SimpleModule{
			Affinity: m.Affinity.String(),
			ID:       m.ID.String(),
			Resource: m.Resource,
		}
		for _, d := range m.Dependencies {
			sm.Dependencies = append(sm.Dependencies, Edge{ID: d.ID.String(), Request: d.Request})
		}
		simple = append(simple, sm)
	}
	return Build(entries, simple)
}

// Build constructs a Graph from a simple module list. Edges to modules
// missing from the list are kept as dependencies without a node.
func Build(entries []ModuleKey, modules []SimpleModule) *Graph {
	g := &Graph{
		Entries: append([]ModuleKey(nil), entries...),
		Modules: make(map[ModuleKey]*Node, len(modules)),
	}

	isEntry := make(map[ModuleKey]bool, len(entries))
	for _, e := range entries {
		isEntry[e] = true
	}

	for _, m := range modules {
		key := ModuleKey{Affinity: m.Affinity, ID: m.ID}
		g.Modules[key] = &Node{
			Key:        key,
			Resource:   m.Resource,
			Dependents: make([]ModuleKey, 0),
			Requests:   make(map[ModuleKey]string),
			IsEntry:    isEntry[key],
		}
	}

	// Forward edges, deduplicated in extraction order.
	for _, m := range modules {
		key := ModuleKey{Affinity: m.Affinity, ID: m.ID}
		node := g.Modules[key]
		seen := make(map[ModuleKey]bool)
		for _, e := range m.Dependencies {
			dep := ModuleKey{Affinity: m.Affinity, ID: e.ID}
			if seen[dep] {
				continue
			}
			seen[dep] = true
			node.Dependencies = append(node.Dependencies, dep)
			if depNode, ok := g.Modules[dep]; ok {
				depNode.Dependents = append(depNode.Dependents, key)
				depNode.Requests[key] = e.Request
			}
		}
	}

	for _, node := range g.Modules {
		sortKeys(node.Dependents)
	}
	return g
}

// SimpleModule is a simplified module representation for building graphs.
// Dependencies share the module's affinity.
type SimpleModule struct {
	Affinity     string
	ID           string
	Resource     string
	Dependencies []Edge
}

// Edge is one require of a SimpleModule.
type Edge struct {
	ID      string
	Request string
}

func sortKeys(keys []ModuleKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
