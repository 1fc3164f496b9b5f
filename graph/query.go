package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Get returns the node for a module key, or nil if not found.
func (g *Graph) Get(key ModuleKey) *Node {
	return g.Modules[key]
}

// Contains returns true if the graph contains the given module.
func (g *Graph) Contains(key ModuleKey) bool {
	_, ok := g.Modules[key]
	return ok
}

// ByID returns the nodes with the given id, one per affinity, sorted by key.
func (g *Graph) ByID(id string) []*Node {
	var out []*Node
	for key, node := range g.Modules {
		if key.ID == id {
			out = append(out, node)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// DirectDeps returns the direct dependencies of a module.
func (g *Graph) DirectDeps(key ModuleKey) []ModuleKey {
	if node := g.Modules[key]; node != nil {
		return node.Dependencies
	}
	return nil
}

// DirectDependents returns modules that directly require the given module.
func (g *Graph) DirectDependents(key ModuleKey) []ModuleKey {
	if node := g.Modules[key]; node != nil {
		return node.Dependents
	}
	return nil
}

// TransitiveDeps returns all transitive dependencies of a module.
// The result is in breadth-first order.
func (g *Graph) TransitiveDeps(key ModuleKey) []ModuleKey {
	return g.walk(key, func(n *Node) []ModuleKey { return n.Dependencies })
}

// TransitiveDependents returns all modules that transitively require the
// given module. The result is in breadth-first order (closest dependents first).
func (g *Graph) TransitiveDependents(key ModuleKey) []ModuleKey {
	return g.walk(key, func(n *Node) []ModuleKey { return n.Dependents })
}

func (g *Graph) walk(key ModuleKey, next func(*Node) []ModuleKey) []ModuleKey {
	result := make([]ModuleKey, 0)
	visited := map[ModuleKey]bool{key: true}

	queue := []ModuleKey{key}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Modules[current]
		if node == nil {
			continue
		}
		for _, k := range next(node) {
			if !visited[k] {
				visited[k] = true
				result = append(result, k)
				queue = append(queue, k)
			}
		}
	}
	return result
}

// Path finds the shortest require path from one module to another.
// Returns nil if no path exists.
func (g *Graph) Path(from, to ModuleKey) []ModuleKey {
	if from == to {
		return []ModuleKey{from}
	}

	type queueItem struct {
		key  ModuleKey
		path []ModuleKey
	}

	visited := map[ModuleKey]bool{from: true}
	queue := []queueItem{{key: from, path: []ModuleKey{from}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Modules[current.key]
		if node == nil {
			continue
		}

		for _, dep := range node.Dependencies {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			newPath := make([]ModuleKey, len(current.path)+1)
			copy(newPath, current.path)
			newPath[len(current.path)] = dep
			if dep == to {
				return newPath
			}
			queue = append(queue, queueItem{key: dep, path: newPath})
		}
	}
	return nil
}

// AllPaths finds all acyclic require paths from one module to another.
// This can be expensive for large graphs with many paths.
func (g *Graph) AllPaths(from, to ModuleKey) [][]ModuleKey {
	var result [][]ModuleKey
	g.findAllPaths(from, to, []ModuleKey{from}, make(map[ModuleKey]bool), &result)
	return result
}

func (g *Graph) findAllPaths(current, target ModuleKey, path []ModuleKey, visited map[ModuleKey]bool, result *[][]ModuleKey) {
	if current == target {
		pathCopy := make([]ModuleKey, len(path))
		copy(pathCopy, path)
		*result = append(*result, pathCopy)
		return
	}

	visited[current] = true
	defer func() { visited[current] = false }()

	node := g.Modules[current]
	if node == nil {
		return
	}
	for _, dep := range node.Dependencies {
		if !visited[dep] {
			g.findAllPaths(dep, target, append(path, dep), visited, result)
		}
	}
}

// entryOf returns the entry key sharing the module's affinity.
func (g *Graph) entryOf(key ModuleKey) (ModuleKey, bool) {
	for _, e := range g.Entries {
		if e.Affinity == key.Affinity {
			return e, true
		}
	}
	return ModuleKey{}, false
}

// WhyIncluded returns every require chain from the module's entry to it.
func (g *Graph) WhyIncluded(key ModuleKey) ([]DependencyChain, error) {
	if !g.Contains(key) {
		return nil, fmt.Errorf("module %s not found in graph", key)
	}
	entry, ok := g.entryOf(key)
	if !ok {
		return nil, fmt.Errorf("module %s has no entry", key)
	}

	paths := g.AllPaths(entry, key)
	chains := make([]DependencyChain, len(paths))
	for i, path := range paths {
		chains[i] = DependencyChain{Path: path}
	}
	return chains, nil
}

// RequestSummary describes how the dependents of a module asked for it.
func (g *Graph) RequestSummary(key ModuleKey) string {
	node := g.Modules[key]
	if node == nil {
		return ""
	}
	if len(node.Dependents) == 0 {
		if node.IsEntry {
			return fmt.Sprintf("%s is the entry of %s", key.ID, key.Affinity)
		}
		return fmt.Sprintf("%s is not required by any module", key.ID)
	}

	parts := make([]string, 0, len(node.Dependents))
	for _, d := range node.Dependents {
		parts = append(parts, fmt.Sprintf("  %s requires %q", d.ID, node.Requests[d]))
	}
	return fmt.Sprintf("%s is required by:\n%s", key.ID, strings.Join(parts, "\n"))
}

// Stats returns statistics about the graph.
func (g *Graph) Stats() GraphStats {
	stats := GraphStats{
		TotalModules: len(g.Modules),
		Entries:      len(g.Entries),
		Cycles:       len(g.FindCycles()),
	}
	for _, node := range g.Modules {
		stats.Edges += len(node.Dependencies)
	}
	for _, e := range g.Entries {
		if d := g.maxDepth(e); d > stats.MaxDepth {
			stats.MaxDepth = d
		}
	}
	return stats
}

func (g *Graph) maxDepth(root ModuleKey) int {
	depths := make(map[ModuleKey]int)
	onPath := make(map[ModuleKey]bool)
	var maxDepth int

	var dfs func(key ModuleKey, depth int)
	dfs = func(key ModuleKey, depth int) {
		// An edge back onto the current path closes a cycle.
		if onPath[key] {
			return
		}
		if existing, ok := depths[key]; ok && existing >= depth {
			return
		}
		depths[key] = depth
		if depth > maxDepth {
			maxDepth = depth
		}

		node := g.Modules[key]
		if node == nil {
			return
		}

		onPath[key] = true
		for _, dep := range node.Dependencies {
			dfs(dep, depth+1)
		}
		delete(onPath, key)
	}

	dfs(root, 0)
	return maxDepth
}

// Leaves returns all modules without dependencies, sorted by key.
func (g *Graph) Leaves() []ModuleKey {
	var leaves []ModuleKey
	for key, node := range g.Modules {
		if len(node.Dependencies) == 0 {
			leaves = append(leaves, key)
		}
	}
	sortKeys(leaves)
	return leaves
}

// HasCycles returns true if the graph contains require cycles.
func (g *Graph) HasCycles() bool {
	return len(g.FindCycles()) > 0
}

// FindCycles returns the require cycles found by a depth-first search over
// the modules in key order. Each cycle starts at the module first reached.
func (g *Graph) FindCycles() [][]ModuleKey {
	var cycles [][]ModuleKey
	visited := make(map[ModuleKey]bool)
	recStack := make(map[ModuleKey]bool)
	path := make([]ModuleKey, 0)

	var findCycles func(key ModuleKey)
	findCycles = func(key ModuleKey) {
		visited[key] = true
		recStack[key] = true
		path = append(path, key)

		if node := g.Modules[key]; node != nil {
			for _, dep := range node.Dependencies {
				if !visited[dep] {
					findCycles(dep)
				} else if recStack[dep] {
					for i, k := range path {
						if k == dep {
							cycle := make([]ModuleKey, len(path)-i)
							copy(cycle, path[i:])
							cycles = append(cycles, cycle)
							break
						}
					}
				}
			}
		}

		path = path[:len(path)-1]
		recStack[key] = false
	}

	for _, key := range g.sortedKeys() {
		if !visited[key] {
			findCycles(key)
		}
	}
	return cycles
}

func (g *Graph) sortedKeys() []ModuleKey {
	keys := make([]ModuleKey, 0, len(g.Modules))
	for key := range g.Modules {
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys
}
