package vm

import "littleduck/src/codegen"

// stack_frame.go is one function call's activation record: the register
// file that backs every relative address used inside that call's body,
// plus the bookkeeping needed to thread arguments from caller to callee and
// to resume the caller once the callee returns. Grounded on
// original_source/little_duck/vm_stack_frame.py's ActivationRecordTemplate/
// ActivationRecord, adapted so that the nested OPEN/CLOSE scopes of one call
// share a single growing register file (see codegen.MemoryScopeTemplate's
// doc comment) rather than a stack of independently-addressed scopes --
// this repository's resolution of an ambiguity in the prototype sources
// between per-scope and whole-record addressing (see DESIGN.md).
type ActivationRecord struct {
	Identifier        string
	ActivationAddress int  // instruction index of the FUNCTION_CALL that created this record
	ReturnAddress     int  // instruction to resume at in the caller once this call returns
	ReturnValueAddress *int // nil for a void call

	cells     []interface{}
	allocated []bool
	openBases []int // stack of cell-array lengths at each currently open OPEN, for CLOSE to truncate to

	pendingParams []interface{} // values queued by FUNCTION_PARAMETER, moved to the callee's arguments on CALL
	arguments     []interface{} // values this call's body still needs to load via FUNCTION_ARGUMENT
}

// NewActivationRecord starts a call's register file with its single
// reserved metadata cell at address 0.
func NewActivationRecord(identifier string, activationAddress, returnAddress int, returnValueAddress *int, arguments []interface{}) *ActivationRecord {
	return &ActivationRecord{
		Identifier:         identifier,
		ActivationAddress:  activationAddress,
		ReturnAddress:      returnAddress,
		ReturnValueAddress: returnValueAddress,
		cells:              []interface{}{activationAddress},
		allocated:          []bool{true},
		arguments:          arguments,
	}
}

// Open grows the register file by template's cell count, returning the
// base address the new scope's variables/temps start at (always equal to
// the file's length before the grow).
func (r *ActivationRecord) Open(template codegen.MemoryScopeTemplate) int {
	base := len(r.cells)
	r.openBases = append(r.openBases, base)
	n := template.Size()
	r.cells = append(r.cells, make([]interface{}, n)...)
	r.allocated = append(r.allocated, make([]bool, n)...)
	return base
}

// Close truncates the register file back to the base of the most recently
// opened, not-yet-closed scope.
func (r *ActivationRecord) Close() {
	n := len(r.openBases)
	if n == 0 {
		return
	}
	base := r.openBases[n-1]
	r.openBases = r.openBases[:n-1]
	r.cells = r.cells[:base]
	r.allocated = r.allocated[:base]
}

// Get reads a call-relative address.
func (r *ActivationRecord) Get(address int) (interface{}, error) {
	if address < 0 || address >= len(r.cells) {
		return nil, &MemoryError{Code: AddressOutsideRange, Address: address}
	}
	if !r.allocated[address] {
		return nil, &MemoryError{Code: UnallocatedAccess, Address: address}
	}
	return r.cells[address], nil
}

// Set writes a call-relative address.
func (r *ActivationRecord) Set(address int, v interface{}) error {
	if address < 0 || address >= len(r.cells) {
		return &MemoryError{Code: AddressOutsideRange, Address: address}
	}
	r.cells[address] = v
	r.allocated[address] = true
	return nil
}

// PushParameter queues a value to be handed to the next call this record
// makes, in the order FUNCTION_PARAMETER instructions push them. Values are
// captured eagerly rather than threading an address through the call, so no
// unified address space spanning caller and callee is needed (see
// DESIGN.md).
func (r *ActivationRecord) PushParameter(v interface{}) {
	r.pendingParams = append(r.pendingParams, v)
}

// DrainParameters removes and returns all queued parameters, for handoff to
// a new callee's arguments.
func (r *ActivationRecord) DrainParameters() []interface{} {
	out := r.pendingParams
	r.pendingParams = nil
	return out
}

// NextArgument pops the next argument this call's body must load. The
// analyzer emits FUNCTION_ARGUMENT instructions in reverse parameter order
// (see analyzer.go's analyzeFunctionDecl), so arguments are popped from the
// end of the queue to restore declaration order, mirroring
// original_source/little_duck/vm.py's arguments_to_load.pop().
func (r *ActivationRecord) NextArgument() (interface{}, bool) {
	n := len(r.arguments)
	if n == 0 {
		return nil, false
	}
	v := r.arguments[n-1]
	r.arguments = r.arguments[:n-1]
	return v, true
}

// ArgumentsRemaining reports whether this call's body left any pushed
// arguments unconsumed -- a UnloadedArguments error at RETURN time.
func (r *ActivationRecord) ArgumentsRemaining() bool { return len(r.arguments) > 0 }
