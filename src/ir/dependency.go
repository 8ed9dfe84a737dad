package ir

// dependency.go folds a dependency module's quadruples into a compilation
// that shares the main module's global scope, grounded on
// original_source/little_duck/dependency_analyzer.py's
// LittleDuckDependencyAnalyzer.a_ProgramNode: a dependency module is walked
// with the same Analyzer used for the main module, but it never emits its
// own bootstrap GOTO or a terminal CALL, and it reuses the caller's
// GlobalScope instead of creating a fresh one, so that every module in a
// compilation sees the same functions, globals and constant pool.
//
// The original pushes a throwaway GOTO quadruple before walking a dependency
// module "to avoid messing up line numbers" against whatever scope id
// counting scheme it used, then pops it off afterwards. That workaround is
// unnecessary here: src/ir's scope and temp ids are derived from this
// Analyzer's own len(a.quads)/NewTemp counters, which are already correctly
// positioned mid-stream once AnalyzeDependency is invoked for each module in
// turn, so no placeholder instruction is needed.

// AnalyzeDependency walks one imported module's declarations -- global
// variables and functions only, no main block -- appending its quadruples
// to the receiver's stream and registering its globals/functions into the
// shared GlobalScope. Called once per module in src/deps' topological
// order, before the main module itself is analyzed.
func (a *Analyzer) AnalyzeDependency(module *Node) error {
	var varList, funcList *Node
	for _, c := range module.Children {
		switch c.Typ {
		case VAR_DECL_LIST:
			varList = c
		case FUNCTION_LIST:
			funcList = c
		}
	}

	if varList != nil {
		for _, decl := range varList.Children {
			if err := a.declareVars(decl, a.cur); err != nil {
				return err
			}
		}
	}

	if funcList != nil {
		for _, fn := range funcList.Children {
			if err := a.analyzeFunctionDecl(fn); err != nil {
				return err
			}
		}
	}

	return nil
}
