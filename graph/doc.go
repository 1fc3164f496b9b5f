// Package graph provides a read-only view of a bundle's module graph with
// query and output capabilities.
//
// It supports questions such as:
//
//   - Which modules does a module require, directly or transitively?
//   - Which modules require it?
//   - Why is a module part of a chunk (the paths from its entry)?
//   - Does the graph contain require cycles?
//
// # Building a Graph
//
// A Graph is built from a compilation once the module graph converged:
//
//	c, _ := bundler.Compile(ctx, entries)
//	g := graph.FromCompilation(c)
//
// # Output Formats
//
// The graph can be serialized to multiple formats:
//
//	jsonBytes, _ := g.ToJSON()
//	dotString := g.ToDOT()
//	textString := g.ToText()
//
// Modules are keyed by their affinity (entry name) and id, matching how the
// bundler builds them: the same file reached from two entries is two nodes.
package graph
