// Package deps resolves the module import graph of spec.md §4.5: given a
// main module and a loader able to parse a module by name, it discovers the
// transitive closure of imports, prunes anything unreachable from main,
// rejects circular imports, and returns the modules in the dependency order
// src/ir.AnalyzeDependency must fold them in (leaves first, main last).
//
// Grounded on original_source/little_duck/dependency_graph.py's
// DependencyGraph: add_module/add_dependency build an adjacency map,
// remove_unused_modules prunes everything unreachable from main, detect_cycles
// is a DFS over a recursion-stack set, and topological_sort is the reverse of
// a DFS post-order -- translated here into Go with a fan-out loader backed by
// golang.org/x/sync/errgroup instead of the single-threaded recursive
// Python parse loop, since every module's source file can be read and parsed
// independently of its siblings.
package deps

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"littleduck/src/ir"
)

// Loader parses a single module by name (however "name" maps to a source
// file is up to the caller -- src/main.go maps it to the input file or one of
// the --dependencies files with that base name) and returns its AST.
type Loader func(name string) (*ir.Node, error)

// Graph is the module dependency graph of one compilation.
type Graph struct {
	modules map[string]*ir.Node
	edges   map[string][]string
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{modules: make(map[string]*ir.Node), edges: make(map[string][]string)}
}

// AddModule registers a parsed module's AST under name.
func (g *Graph) AddModule(name string, tree *ir.Node) {
	g.modules[name] = tree
	if _, ok := g.edges[name]; !ok {
		g.edges[name] = nil
	}
}

// AddDependency records that module from imports module to.
func (g *Graph) AddDependency(from, to string) {
	g.edges[from] = append(g.edges[from], to)
}

// importsOf extracts the module names a module's IMPORT_LIST names.
func importsOf(tree *ir.Node) []string {
	var out []string
	for _, c := range tree.Children {
		if c.Typ != ir.IMPORT_LIST {
			continue
		}
		for _, imp := range c.Children {
			out = append(out, imp.Data.(string))
		}
	}
	return out
}

// Resolve parses mainName and the full transitive closure of its imports
// using load, concurrently, builds the dependency graph, prunes unreachable
// modules, rejects cycles, and returns modules ordered leaves-first with
// mainName last -- the order src/ir.AnalyzeDependency/AnalyzeProgram must be
// invoked in.
//
// candidates is the full set of module names the caller supplied (main plus
// every --dependencies file), independent of what main actually imports.
// Per spec.md §4.5 step 2 ("every supplied module must be used"), any
// candidate not transitively reachable from mainName is a CompileError,
// mirroring original_source/little_duck/dependency_graph.py's
// remove_unused_modules, which returns the unused set rather than silently
// dropping it.
func Resolve(mainName string, candidates []string, load Loader) ([]string, *Graph, error) {
	g := NewGraph()

	frontier := []string{mainName}
	seen := map[string]bool{mainName: true}

	for len(frontier) > 0 {
		var group errgroup.Group
		parsed := make([]*ir.Node, len(frontier))
		for i, name := range frontier {
			i, name := i, name
			group.Go(func() error {
				tree, err := load(name)
				if err != nil {
					return fmt.Errorf("module %q: %w", name, err)
				}
				parsed[i] = tree
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, nil, err
		}

		var next []string
		for i, name := range frontier {
			tree := parsed[i]
			g.AddModule(name, tree)
			for _, dep := range importsOf(tree) {
				g.AddDependency(name, dep)
				if !seen[dep] {
					seen[dep] = true
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}

	var unused []string
	for _, name := range candidates {
		if name != mainName && !seen[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		return nil, nil, &ir.CompileError{Msg: fmt.Sprintf("unused module supplied: %v", unused)}
	}

	g.removeUnreachable(mainName)

	if cyc := g.detectCycle(mainName); cyc != nil {
		return nil, nil, &ir.CompileError{Msg: fmt.Sprintf("circular dependency: %v", cyc)}
	}

	order := g.topologicalSort(mainName)
	return order, g, nil
}

// Module returns a previously-added module's AST.
func (g *Graph) Module(name string) *ir.Node { return g.modules[name] }

// removeUnreachable deletes every module not reachable from main, mirroring
// remove_unused_modules.
func (g *Graph) removeUnreachable(mainName string) {
	reachable := map[string]bool{}
	var walk func(string)
	walk = func(name string) {
		if reachable[name] {
			return
		}
		reachable[name] = true
		for _, dep := range g.edges[name] {
			walk(dep)
		}
	}
	walk(mainName)

	for name := range g.modules {
		if !reachable[name] {
			delete(g.modules, name)
			delete(g.edges, name)
		}
	}
}

// detectCycle runs a DFS with an explicit recursion-stack set, returning the
// cycle (as a path) if one is found, or nil.
func (g *Graph) detectCycle(start string) []string {
	visited := map[string]bool{}
	onStack := map[string]bool{}
	var path []string

	var walk func(string) []string
	walk = func(name string) []string {
		visited[name] = true
		onStack[name] = true
		path = append(path, name)
		for _, dep := range g.edges[name] {
			if onStack[dep] {
				return append(append([]string{}, path...), dep)
			}
			if !visited[dep] {
				if cyc := walk(dep); cyc != nil {
					return cyc
				}
			}
		}
		onStack[name] = false
		path = path[:len(path)-1]
		return nil
	}
	return walk(start)
}

// topologicalSort returns modules in dependency order (leaves first) as a
// DFS post-order over importer -> import edges, which already places every
// module after its imports, mirroring topological_sort.
func (g *Graph) topologicalSort(start string) []string {
	visited := map[string]bool{}
	var post []string

	var walk func(string)
	walk = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		for _, dep := range g.edges[name] {
			walk(dep)
		}
		post = append(post, name)
	}
	walk(start)
	return post
}
