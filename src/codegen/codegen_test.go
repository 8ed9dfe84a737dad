package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"littleduck/src/frontend"
	"littleduck/src/ir"
)

func generateFrom(t *testing.T, src string) *Program {
	t.Helper()
	root, err := frontend.Parse(src)
	require.NoError(t, err)
	a := ir.NewAnalyzer(nil)
	_, global, err := a.AnalyzeProgram(root)
	require.NoError(t, err)
	program, err := Generate(a.Quads(), global)
	require.NoError(t, err)
	return program
}

func TestGenerateAssignsDenseFunctionDirectory(t *testing.T) {
	src := `
program p;
int square(n:int): { return n * n; }
int cube(n:int): { return n * n * n; }
main {
	exit_code = square(2) + cube(2);
}
end;
`
	program := generateFrom(t, src)
	require.Len(t, program.Functions, 3) // square, cube, main
	for i := 1; i < len(program.Functions); i++ {
		assert.Lessf(t, program.Functions[i-1].Address, program.Functions[i].Address,
			"function directory must be ordered by ascending start address")
	}
}

func TestGenerateConstantsAreSortedAndDeduplicated(t *testing.T) {
	src := `
program p;
var a : int;
main {
	a = 5;
	print(5, 5, 3, 5);
}
end;
`
	program := generateFrom(t, src)
	seen := map[int]bool{}
	for _, c := range program.Constants {
		if c.Type != ir.DataInt {
			continue
		}
		v := int(c.Value.(int64))
		assert.Falsef(t, seen[v], "constant %d interned more than once", v)
		seen[v] = true
	}
	for i := 1; i < len(program.Constants); i++ {
		a, b := program.Constants[i-1], program.Constants[i]
		assert.LessOrEqual(t, a.Type, b.Type)
	}
}

func TestGenerateTemplatePartitionsAreDisjoint(t *testing.T) {
	src := `
program p;
var a, b : int;
var c : float;
main {
	a = 1;
	b = 2;
	c = 1.5;
}
end;
`
	program := generateFrom(t, src)
	tmpl := program.Templates[0]
	assert.Equal(t, 3, tmpl.IntCount) // exit_code, a, b
	assert.Equal(t, 1, tmpl.FloatCount)
	assert.Equal(t, 0, tmpl.BoolCount)
	assert.Equal(t, 0, tmpl.StrCount)
}

func TestGenerateResolvesEveryOperand(t *testing.T) {
	src := `
program p;
var a : int;
main {
	a = 1 + 2;
	exit_code = a;
}
end;
`
	program := generateFrom(t, src)
	for i, q := range program.Quads {
		switch q.Op {
		case 2, 3, 4: // GOTO, GOTOT, GOTOF
			require.NotNilf(t, q.Result, "quad %d: jump target must be resolved", i)
		}
	}
}
