package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"littleduck/src/codegen"
)

func addr(i int) *int { return &i }

// program wires up a minimal Program: one constant (7), one global int, and
// an ASSIGN quadruple copying the constant into the global, then halting.
func TestRunAssignsConstantToGlobal(t *testing.T) {
	program := &codegen.Program{
		Constants: []codegen.Constant{{Type: 0, Value: int64(7)}},
		Templates: []codegen.MemoryScopeTemplate{{IntCount: 1}},
		Quads: []codegen.Quadruple{
			// global[0] (exit_code, addr 2) = const[0] (addr 0)
			{Op: 6, Left: addr(0), Result: addr(2)}, // ASSIGN exit_code = 7
		},
		LocalScopeOffset: 3,
	}
	machine := New(program)
	exitCode, _, err := machine.Run()
	require.NoError(t, err)
	assert.EqualValues(t, 7, exitCode)
}

func TestRunRejectsWriteToConstant(t *testing.T) {
	program := &codegen.Program{
		Constants: []codegen.Constant{{Type: 0, Value: int64(1)}},
		Templates: []codegen.MemoryScopeTemplate{{IntCount: 1}},
		Quads: []codegen.Quadruple{
			{Op: 6, Left: addr(1), Result: addr(0)}, // ASSIGN into constant address 0
		},
		LocalScopeOffset: 3,
	}
	machine := New(program)
	_, _, err := machine.Run()
	require.Error(t, err)
	var memErr *MemoryError
	require.ErrorAs(t, err, &memErr)
	assert.Equal(t, AllocatedConstant, memErr.Code)
}

func TestRunRejectsUnallocatedRead(t *testing.T) {
	program := &codegen.Program{
		Templates: []codegen.MemoryScopeTemplate{{IntCount: 1}},
		Quads: []codegen.Quadruple{
			{Op: 6, Left: addr(1), Result: addr(1)}, // ASSIGN global[0] = global[0] (never written)
		},
		LocalScopeOffset: 2,
	}
	machine := New(program)
	_, _, err := machine.Run()
	require.Error(t, err)
	var memErr *MemoryError
	require.ErrorAs(t, err, &memErr)
	assert.Equal(t, UnallocatedAccess, memErr.Code)
}

func TestRunUnknownInstructionErrors(t *testing.T) {
	program := &codegen.Program{
		Templates: []codegen.MemoryScopeTemplate{{IntCount: 1}},
		Quads: []codegen.Quadruple{
			{Op: 99},
		},
		LocalScopeOffset: 1,
	}
	machine := New(program)
	_, _, err := machine.Run()
	require.Error(t, err)
	var runErr *RuntimeError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, InstructionDoesntExist, runErr.Code)
}

func TestRunDivisionByZeroDoesNotPanic(t *testing.T) {
	program := &codegen.Program{
		Constants: []codegen.Constant{{Type: 0, Value: int64(1)}, {Type: 0, Value: int64(0)}},
		Templates: []codegen.MemoryScopeTemplate{{IntCount: 1}},
		Quads: []codegen.Quadruple{
			{Op: 19, Left: addr(0), Right: addr(1), Result: addr(3)}, // DIV 1/0 -> global int cell
		},
		LocalScopeOffset: 4,
	}
	machine := New(program)
	assert.NotPanics(t, func() {
		_, _, err := machine.Run()
		require.Error(t, err)
	})
}
