package vm

import "fmt"

// errors.go is the runtime error taxonomy of spec.md §7.2, grounded on
// original_source/little_duck/errors.py's VirtualMachineRuntimeErrors and
// VirtualMachineMemoryErrors enums. Codes are kept identical to the
// original so a trace referencing e.g. "runtime error 21" means the same
// thing here as it did there.

// RuntimeErrorCode enumerates the fetch-decode-execute failures.
type RuntimeErrorCode int

const (
	NoMoreArguments       RuntimeErrorCode = 10
	ReturnValueNotFound   RuntimeErrorCode = 11
	ReturnValueInVoid     RuntimeErrorCode = 12
	UnloadedArguments     RuntimeErrorCode = 13
	InstructionDoesntExist RuntimeErrorCode = 20
	FunctionNotFound      RuntimeErrorCode = 21
	StackTemplateNotFound RuntimeErrorCode = 22
	MemoryAddressMissing  RuntimeErrorCode = 23
	GotoJumpMissing       RuntimeErrorCode = 24
)

var runtimeMessages = map[RuntimeErrorCode]string{
	NoMoreArguments:        "no more arguments to load into this call",
	ReturnValueNotFound:    "function expected a return value but none was given",
	ReturnValueInVoid:      "void function returned a value",
	UnloadedArguments:      "call returned with unconsumed arguments still pending",
	InstructionDoesntExist: "instruction does not exist",
	FunctionNotFound:       "function not found in function directory",
	StackTemplateNotFound:  "memory scope template not found",
	MemoryAddressMissing:   "instruction is missing a required memory address",
	GotoJumpMissing:        "jump instruction is missing its target line",
}

// RuntimeError is a VirtualMachineRuntimeError: a fetch-decode-execute
// failure that is not a memory-addressing problem.
type RuntimeError struct {
	Code RuntimeErrorCode
	At   int // instruction index
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error %d at instruction %d: %s", e.Code, e.At, runtimeMessages[e.Code])
}

// MemoryErrorCode enumerates the activation-record addressing failures.
type MemoryErrorCode int

const (
	AddressOutsideRange MemoryErrorCode = 0
	UnallocatedAccess   MemoryErrorCode = 1
	AllocatedConstant   MemoryErrorCode = 2
)

var memoryMessages = map[MemoryErrorCode]string{
	AddressOutsideRange: "address is outside the valid memory range",
	UnallocatedAccess:   "read of a memory cell that was never assigned",
	AllocatedConstant:   "attempted write to a constant's address",
}

// MemoryError is a VirtualMachineMemoryError: an invalid address reached the
// activation-record memory model.
type MemoryError struct {
	Code    MemoryErrorCode
	Address int
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory error %d at address %d: %s", e.Code, e.Address, memoryMessages[e.Code])
}
