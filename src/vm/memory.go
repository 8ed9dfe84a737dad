package vm

import (
	"littleduck/src/codegen"
)

// memory.go is the whole-program memory model: the constant pool, the
// global scope, and the stack of currently active calls. Grounded on
// original_source/little_duck/vm_memory.py's VirtualMachineMemory, adapted
// to this repository's call-relative addressing (see stack_frame.go): an
// address below localScopeOffset is always a constant or a global, resolved
// directly; everything else is relative to whichever activation record is
// currently executing.
type Memory struct {
	constants []interface{}
	global    *ActivationRecord // the program's single, never-popped "call"
	frames    []*ActivationRecord

	localScopeOffset int // addresses below this are constants (< len(constants)) or globals
}

// NewMemory builds the initial memory image from a generated program: the
// constant pool is copied in verbatim, and the global scope is initialized
// from Templates[0]. localScopeOffset is codegen's Program.LocalScopeOffset,
// the fixed boundary address every call-relative address space starts at.
func NewMemory(constants []codegen.Constant, globalTemplate codegen.MemoryScopeTemplate, localScopeOffset int) *Memory {
	vals := make([]interface{}, len(constants))
	for i, c := range constants {
		vals[i] = c.Value
	}
	global := NewActivationRecord("", 0, 0, nil, nil)
	global.Open(globalTemplate)
	return &Memory{
		constants:        vals,
		global:           global,
		localScopeOffset: localScopeOffset,
	}
}

// Push activates a new call.
func (m *Memory) Push(r *ActivationRecord) { m.frames = append(m.frames, r) }

// Pop deactivates and returns the most recently pushed call.
func (m *Memory) Pop() *ActivationRecord {
	n := len(m.frames)
	if n == 0 {
		return nil
	}
	r := m.frames[n-1]
	m.frames = m.frames[:n-1]
	return r
}

// Top returns the currently executing call's activation record, or the
// global scope if no call is active (only true before main's bootstrap
// CALL).
func (m *Memory) Top() *ActivationRecord {
	if n := len(m.frames); n > 0 {
		return m.frames[n-1]
	}
	return m.global
}

// Get reads a resolved address: constants and globals read directly,
// anything else is relative to Top().
func (m *Memory) Get(address int) (interface{}, error) {
	if address < len(m.constants) {
		return m.constants[address], nil
	}
	if address < m.localScopeOffset {
		return m.global.Get(address - len(m.constants))
	}
	return m.Top().Get(address - m.localScopeOffset)
}

// Set writes a resolved address. Writing to a constant address is rejected.
func (m *Memory) Set(address int, v interface{}) error {
	if address < len(m.constants) {
		return &MemoryError{Code: AllocatedConstant, Address: address}
	}
	if address < m.localScopeOffset {
		return m.global.Set(address-len(m.constants), v)
	}
	return m.Top().Set(address-m.localScopeOffset, v)
}

// IsGlobalOrConstant reports whether address falls below the boundary where
// call-relative addressing begins.
func (m *Memory) IsGlobalOrConstant(address int) bool {
	return address < m.localScopeOffset
}
