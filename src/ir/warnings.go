package ir

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// warnings.go implements the "unused variable / unused function" sweep of
// spec.md §8. Every function's scope subtree is independent of its
// siblings, so the sweep fans out one goroutine per top-level function
// scope via golang.org/x/sync/errgroup, the same pattern src/deps uses to
// parse sibling modules concurrently.

// Warning reports an unused binding discovered after analysis completes.
type Warning struct {
	Line, Pos int
	Msg       string
}

func (w Warning) String() string {
	return fmt.Sprintf("warning at line %d:%d: %s", w.Line, w.Pos, w.Msg)
}

// CheckUnused scans the analyzer's global scope for variables and functions
// that were declared but never read or called, returning one Warning per
// offender. Each function scope (including main, internally scope id 0's
// direct children) is swept concurrently.
func (a *Analyzer) CheckUnused() []Warning {
	var group errgroup.Group
	results := make([][]Warning, len(a.Global.Children))

	for i, fn := range a.Global.Children {
		i, fn := i, fn
		group.Go(func() error {
			results[i] = sweepScope(fn)
			return nil
		})
	}
	_ = group.Wait() // sweepScope never returns an error; Wait only joins goroutines.

	var out []Warning
	for _, v := range a.Global.OrderedVariables() {
		if !v.Used {
			out = append(out, Warning{Msg: fmt.Sprintf("variable %q is never used", v.Name)})
		}
	}
	for _, name := range a.Global.funcOrder {
		if f := a.Global.Functions[name]; !f.Used && name != "main" {
			out = append(out, Warning{Msg: fmt.Sprintf("function %q is never called", name)})
		}
	}
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// sweepScope walks one scope subtree depth-first, reporting every declared
// variable never marked Used, then recursing into nested block scopes.
func sweepScope(s *Scope) []Warning {
	var out []Warning
	for _, v := range s.OrderedVariables() {
		if !v.Used {
			out = append(out, Warning{Msg: fmt.Sprintf("variable %q is never used", v.Name)})
		}
	}
	for _, child := range s.Children {
		out = append(out, sweepScope(child)...)
	}
	return out
}
