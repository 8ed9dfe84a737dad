package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"littleduck/src/frontend"
)

func analyze(t *testing.T, src string) (*Analyzer, *Node) {
	t.Helper()
	root, err := frontend.Parse(src)
	require.NoError(t, err)
	a := NewAnalyzer(nil)
	_, _, err = a.AnalyzeProgram(root)
	return a, root
}

func TestAnalyzeRejectsRedeclaration(t *testing.T) {
	src := `
program p;
var x : int;
var x : bool;
main {
	exit_code = 0;
}
end;
`
	root, err := frontend.Parse(src)
	require.NoError(t, err)
	a := NewAnalyzer(nil)
	_, _, err = a.AnalyzeProgram(root)
	require.Error(t, err)
	var semErr *SemanticError
	require.ErrorAs(t, err, &semErr)
}

func TestAnalyzeRejectsArityMismatch(t *testing.T) {
	src := `
program p;
int add(a:int, b:int): {
	return a + b;
}
main {
	exit_code = add(1);
}
end;
`
	root, err := frontend.Parse(src)
	require.NoError(t, err)
	a := NewAnalyzer(nil)
	_, _, err = a.AnalyzeProgram(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 2 arguments")
}

func TestAnalyzeRejectsReturnTypeMismatch(t *testing.T) {
	src := `
program p;
int bad(): {
	return "not an int";
}
main {
	exit_code = bad();
}
end;
`
	root, err := frontend.Parse(src)
	require.NoError(t, err)
	a := NewAnalyzer(nil)
	_, _, err = a.AnalyzeProgram(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returns")
}

func TestAnalyzeRejectsNonBoolCondition(t *testing.T) {
	src := `
program p;
var x : int;
main {
	x = 1;
	if (x) {
		exit_code = 1;
	}
}
end;
`
	root, err := frontend.Parse(src)
	require.NoError(t, err)
	a := NewAnalyzer(nil)
	_, _, err = a.AnalyzeProgram(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "condition must be bool")
}

func TestAnalyzeRejectsDirectCallToMain(t *testing.T) {
	src := `
program p;
main {
	exit_code = main();
}
end;
`
	root, err := frontend.Parse(src)
	require.NoError(t, err)
	a := NewAnalyzer(nil)
	_, _, err = a.AnalyzeProgram(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main")
}

func TestAnalyzeRejectsMissingReturnInFunction(t *testing.T) {
	src := `
program p;
int noop(): {
	print(1);
}
main {
	exit_code = noop();
}
end;
`
	root, err := frontend.Parse(src)
	require.NoError(t, err)
	a := NewAnalyzer(nil)
	_, _, err = a.AnalyzeProgram(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no return statement")
}

func TestCheckUnusedReportsUnreadVariableAndUncalledFunction(t *testing.T) {
	src := `
program p;
var unread : int;
int neverCalled(): {
	return 1;
}
main {
	exit_code = 0;
}
end;
`
	a, _ := analyze(t, src)
	warnings := a.CheckUnused()

	var sawVar, sawFunc bool
	for _, w := range warnings {
		if w.Msg == `variable "unread" is never used` {
			sawVar = true
		}
		if w.Msg == `function "neverCalled" is never called` {
			sawFunc = true
		}
	}
	assert.True(t, sawVar, "expected a warning about unread, got %+v", warnings)
	assert.True(t, sawFunc, "expected a warning about neverCalled, got %+v", warnings)
}

func TestCheckUnusedDoesNotFlagExitCodeOrMain(t *testing.T) {
	src := `
program p;
main {
	exit_code = 0;
}
end;
`
	a, _ := analyze(t, src)
	warnings := a.CheckUnused()
	for _, w := range warnings {
		assert.NotContains(t, w.Msg, `"exit_code"`)
		assert.NotContains(t, w.Msg, `"main"`)
	}
}

func TestCheckUnusedDoesNotDoubleCountFunctionScopeVariables(t *testing.T) {
	src := `
program p;
int f(): {
	var unused : int;
	return 1;
}
main {
	exit_code = f();
}
end;
`
	a, _ := analyze(t, src)
	warnings := a.CheckUnused()
	count := 0
	for _, w := range warnings {
		if w.Msg == `variable "unused" is never used` {
			count++
		}
	}
	assert.Equal(t, 1, count, "expected exactly one warning for unused, got %+v", warnings)
}
