package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const separatorWidth = 60 // Width of separator lines in text output

// JSONGraph is the JSON form of a Graph.
type JSONGraph struct {
	Entries []ModuleKey  `json:"entries"`
	Modules []JSONModule `json:"modules"`
	Stats   GraphStats   `json:"stats"`
}

// JSONModule is one module in JSONGraph.
type JSONModule struct {
	Key          string   `json:"key"`
	ID           string   `json:"id"`
	Affinity     string   `json:"affinity"`
	Resource     string   `json:"resource,omitempty"`
	Entry        bool     `json:"entry,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	RequiredBy   []string `json:"required_by,omitempty"`
}

// ToJSON outputs the graph as indented JSON with modules sorted by key.
func (g *Graph) ToJSON() ([]byte, error) {
	out := JSONGraph{
		Entries: g.Entries,
		Modules: g.ToModuleList(),
		Stats:   g.Stats(),
	}
	if out.Entries == nil {
		out.Entries = []ModuleKey{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// ToModuleList outputs a flat list of modules sorted by key.
func (g *Graph) ToModuleList() []JSONModule {
	keys := g.sortedKeys()
	modules := make([]JSONModule, 0, len(keys))
	for _, key := range keys {
		node := g.Modules[key]
		m := JSONModule{
			Key:      key.String(),
			ID:       key.ID,
			Affinity: key.Affinity,
			Resource: node.Resource,
			Entry:    node.IsEntry,
		}
		for _, d := range node.Dependencies {
			m.Dependencies = append(m.Dependencies, d.ID)
		}
		for _, d := range node.Dependents {
			m.RequiredBy = append(m.RequiredBy, d.ID)
		}
		modules = append(modules, m)
	}
	return modules
}

// ToDOT outputs the graph in Graphviz DOT format with one cluster per
// affinity.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer

	buf.WriteString("digraph modules {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box];\n")

	keys := g.sortedKeys()
	affinity := ""
	for _, key := range keys {
		if key.Affinity != affinity {
			if affinity != "" {
				buf.WriteString("  }\n")
			}
			affinity = key.Affinity
			fmt.Fprintf(&buf, "\n  subgraph %q {\n", "cluster_"+affinity)
			fmt.Fprintf(&buf, "    label=%q;\n", affinity)
		}
		attrs := fmt.Sprintf("label=%q", key.ID)
		if g.Modules[key].IsEntry {
			attrs += ", style=bold"
		}
		fmt.Fprintf(&buf, "    %q [%s];\n", key.String(), attrs)
	}
	if affinity != "" {
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, key := range keys {
		for _, dep := range g.Modules[key].Dependencies {
			fmt.Fprintf(&buf, "  %q -> %q;\n", key.String(), dep.String())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ToText outputs a human-readable tree per entry.
func (g *Graph) ToText() string {
	var buf bytes.Buffer

	stats := g.Stats()
	buf.WriteString("Module Graph\n")
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")
	fmt.Fprintf(&buf, "Entries: %d\n", stats.Entries)
	fmt.Fprintf(&buf, "Total modules: %d\n", stats.TotalModules)
	fmt.Fprintf(&buf, "Edges: %d\n", stats.Edges)
	fmt.Fprintf(&buf, "Max depth: %d\n", stats.MaxDepth)
	if stats.Cycles > 0 {
		fmt.Fprintf(&buf, "Cycles: %d\n", stats.Cycles)
	}

	for _, entry := range g.Entries {
		fmt.Fprintf(&buf, "\n[%s]\n", entry.Affinity)
		g.printTree(&buf, entry, "", true, true, make(map[ModuleKey]bool))
	}
	return buf.String()
}

func (g *Graph) printTree(buf *bytes.Buffer, key ModuleKey, prefix string, isLast, root bool, visited map[ModuleKey]bool) {
	switch {
	case root:
		buf.WriteString(key.ID)
	case isLast:
		buf.WriteString(prefix + "└── " + key.ID)
	default:
		buf.WriteString(prefix + "├── " + key.ID)
	}

	if visited[key] {
		buf.WriteString(" (circular)\n")
		return
	}
	buf.WriteString("\n")

	node := g.Modules[key]
	if node == nil {
		return
	}

	visited[key] = true
	defer delete(visited, key)

	childPrefix := prefix
	if !root {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}
	for i, dep := range node.Dependencies {
		g.printTree(buf, dep, childPrefix, i == len(node.Dependencies)-1, false, visited)
	}
}

// ToExplainText outputs why a module is part of its chunk.
func (g *Graph) ToExplainText(key ModuleKey) (string, error) {
	chains, err := g.WhyIncluded(key)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Explanation for: %s\n", key)
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")
	buf.WriteString(g.RequestSummary(key) + "\n")

	if len(chains) > 0 {
		buf.WriteString("\nRequire chains (paths from entry):\n")
		for i, chain := range chains {
			fmt.Fprintf(&buf, "  %d. %s\n", i+1, chain.String())
		}
	}
	return buf.String(), nil
}
