package deps

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"littleduck/src/ir"
)

// moduleWithImports builds a bare PROGRAM node whose IMPORT_LIST names imports.
func moduleWithImports(imports ...string) *ir.Node {
	importList := &ir.Node{Typ: ir.IMPORT_LIST}
	for _, name := range imports {
		importList.Children = append(importList.Children, &ir.Node{Typ: ir.IMPORT, Data: name})
	}
	return &ir.Node{Typ: ir.PROGRAM, Children: []*ir.Node{importList}}
}

func mapLoader(modules map[string][]string) Loader {
	return func(name string) (*ir.Node, error) {
		imports, ok := modules[name]
		if !ok {
			return nil, fmt.Errorf("no such module %q", name)
		}
		return moduleWithImports(imports...), nil
	}
}

func TestResolveOrdersLeavesBeforeMain(t *testing.T) {
	load := mapLoader(map[string][]string{
		"main":     {"geometry"},
		"geometry": {"trig"},
		"trig":     nil,
	})
	order, graph, err := Resolve("main", []string{"main", "geometry", "trig"}, load)
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, "main", order[len(order)-1])

	pos := map[string]int{}
	for i, name := range order {
		pos[name] = i
	}
	assert.Less(t, pos["trig"], pos["geometry"])
	assert.Less(t, pos["geometry"], pos["main"])
	assert.NotNil(t, graph.Module("trig"))
}

func TestResolvePrunesModulesUnreachableButNotSupplied(t *testing.T) {
	// "extra" is reachable from nowhere and not a supplied candidate, so it
	// is silently absent from the result -- it was never a CLI argument to
	// begin with, unlike the candidates checked by the test below.
	load := mapLoader(map[string][]string{
		"main":     {"geometry"},
		"geometry": nil,
		"extra":    nil,
	})
	order, graph, err := Resolve("main", []string{"main", "geometry"}, load)
	require.NoError(t, err)
	assert.Len(t, order, 2)
	assert.Nil(t, graph.Module("extra"))
}

func TestResolveRejectsUnusedSuppliedModule(t *testing.T) {
	// "unused" is given as a candidate (as if passed via --dependencies)
	// but main never imports it, directly or transitively.
	load := mapLoader(map[string][]string{
		"main":     {"geometry"},
		"geometry": nil,
		"unused":   nil,
	})
	_, _, err := Resolve("main", []string{"main", "geometry", "unused"}, load)
	require.Error(t, err)
	var compileErr *ir.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Contains(t, err.Error(), "unused module supplied")
	assert.Contains(t, err.Error(), "unused")
}

func TestResolveDetectsCycle(t *testing.T) {
	load := mapLoader(map[string][]string{
		"main": {"a"},
		"a":    {"b"},
		"b":    {"a"},
	})
	_, _, err := Resolve("main", []string{"main", "a", "b"}, load)
	require.Error(t, err)
	var compileErr *ir.CompileError
	require.ErrorAs(t, err, &compileErr)
}

func TestResolvePropagatesLoaderError(t *testing.T) {
	load := mapLoader(map[string][]string{
		"main": {"missing"},
	})
	_, _, err := Resolve("main", []string{"main"}, load)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestResolveSingleModuleNoImports(t *testing.T) {
	load := mapLoader(map[string][]string{
		"main": nil,
	})
	order, _, err := Resolve("main", []string{"main"}, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, order)
}
