// Package dependency builds and flattens dependency graphs.
package dependency // import "github.com/CognitoIQ/xsdtypes/internal/dependency"

import (
	"sort"
	"sync"
)

// insertUnique inserts s into set, preserving order. If s is already in set,
// it is not added. The augmented set is returned.
func insertUnique(set []string, s string) []string {
	i := sort.SearchStrings(set, s)
	if i >= len(set) || set[i] != s {
		set = append(set, "")
		copy(set[i+1:], set[i:])
		set[i] = s
	}
	return set
}

// A Graph is a collection of targets and their dependencies. The
// zero value is an empty graph ready to use. A Graph is safe for
// concurrent use.
type Graph struct {
	once    sync.Once
	mu      sync.Mutex
	targets []string
	nodes   map[string][]string
}

// Len returns the number of targets in the graph.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.targets)
}

func (g *Graph) init() {
	g.once.Do(func() { g.nodes = make(map[string][]string) })
}

// Add adds target to a Graph, along with any dependencies it has.
// Adding a target with no dependencies records it as a vertex.
func (g *Graph) Add(target string, dependencies ...string) {
	g.init()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.targets = insertUnique(g.targets, target)
	if _, ok := g.nodes[target]; !ok {
		g.nodes[target] = nil
	}
	for _, dep := range dependencies {
		g.nodes[target] = insertUnique(g.nodes[target], dep)
	}
}

// Dependencies returns the direct dependencies of target, in sorted
// order.
func (g *Graph) Dependencies(target string) []string {
	g.init()
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.nodes[target]...)
}

// Reset removes all targets from the Graph.
func (g *Graph) Reset() {
	g.init()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.targets = nil
	g.nodes = make(map[string][]string)
}

// Flatten calls the walk function on each node in the Graph in topological
// order, starting with the leaves and traversing up to the roots.  The same
// Graph will always be traversed in the same order.
//
// Every vertex in the Graph is visited once; any cycles in the graph are
// skipped.
func (g *Graph) Flatten(walk func(string)) {
	g.init()
	g.mu.Lock()
	targets := append([]string(nil), g.targets...)
	nodes := make(map[string][]string, len(g.nodes))
	for k, v := range g.nodes {
		nodes[k] = v
	}
	g.mu.Unlock()

	visited := make(map[string]bool, len(nodes))
	for _, tgt := range targets {
		if !visited[tgt] {
			visited[tgt] = true
			flatten(walk, nodes, nodes[tgt], visited)
			walk(tgt)
		}
	}
}

func flatten(fn func(string), nodes map[string][]string, targets []string, visited map[string]bool) {
	for _, tgt := range targets {
		if !visited[tgt] {
			visited[tgt] = true
			flatten(fn, nodes, nodes[tgt], visited)
			fn(tgt)
		}
	}
}
