// Package vm is the stack-based virtual machine of spec.md §5: a
// fetch-decode-execute loop over the numeric quadruples src/codegen
// produces, operating on the activation-record memory model of memory.go
// and stack_frame.go. Grounded on original_source/little_duck/vm.py's
// VirtualMachine.run, translated from a dict-of-lambdas instruction switch
// into a Go type switch, and from Python's dynamically-typed values into an
// interface{} register file holding int64/float64/string/bool.
package vm

import (
	"fmt"
	"strings"

	"littleduck/src/codegen"
)

// VM executes one generated Program to completion.
type VM struct {
	program *codegen.Program
	mem     *Memory
	i       int
	out     *strings.Builder
}

// New prepares a VM to run program, with PRINT output collected into out.
func New(program *codegen.Program) *VM {
	return &VM{program: program, out: &strings.Builder{}}
}

// exitCodeAddress is always the address of the first global int variable:
// src/ir.Analyzer.AnalyzeProgram declares the reserved exit_code global
// before walking any user declaration, so it is always the first member of
// the global scope's int partition.
func (vm *VM) exitCodeAddress() int {
	return len(vm.program.Constants) + 1
}

// Run executes the program from instruction 0 to completion and returns the
// final value of exit_code.
func (vm *VM) Run() (int64, string, error) {
	if len(vm.program.Templates) == 0 {
		return 0, "", fmt.Errorf("vm: program has no global memory template")
	}
	vm.mem = NewMemory(vm.program.Constants, vm.program.Templates[0], vm.program.LocalScopeOffset)
	vm.i = 0

	for vm.i < len(vm.program.Quads) {
		q := vm.program.Quads[vm.i]
		jumped, err := vm.step(q)
		if err != nil {
			return 0, vm.out.String(), err
		}
		if !jumped {
			vm.i++
		}
	}

	v, err := vm.mem.Get(vm.exitCodeAddress())
	if err != nil {
		return 0, vm.out.String(), err
	}
	code, _ := v.(int64)
	return code, vm.out.String(), nil
}

// step executes one instruction, returning true if it already updated vm.i
// (a jump, call or return) so the caller must not also advance it.
func (vm *VM) step(q codegen.Quadruple) (bool, error) {
	switch q.Op {
	case 0: // OPEN
		idx := deref(q.Left)
		if idx < 0 || idx >= len(vm.program.Templates) {
			return false, &RuntimeError{Code: StackTemplateNotFound, At: vm.i}
		}
		vm.mem.Top().Open(vm.program.Templates[idx])
		return false, nil

	case 1: // CLOSE
		vm.mem.Top().Close()
		return false, nil

	case 2: // GOTO
		vm.i = deref(q.Result)
		return true, nil

	case 3: // GOTOT
		return vm.condGoto(q, true)

	case 4: // GOTOF
		return vm.condGoto(q, false)

	case 5: // READ -- reserved, unused by this implementation
		return false, &RuntimeError{Code: InstructionDoesntExist, At: vm.i}

	case 6: // ASSIGN
		v, err := vm.mem.Get(deref(q.Left))
		if err != nil {
			return false, err
		}
		return false, vm.mem.Set(deref(q.Result), v)

	case 7: // FUNCTION_PARAMETER
		v, err := vm.mem.Get(deref(q.Left))
		if err != nil {
			return false, err
		}
		vm.mem.Top().PushParameter(v)
		return false, nil

	case 8: // FUNCTION_CALL
		return vm.call(q)

	case 9: // FUNCTION_ARGUMENT
		v, ok := vm.mem.Top().NextArgument()
		if !ok {
			return false, &RuntimeError{Code: NoMoreArguments, At: vm.i}
		}
		return false, vm.mem.Set(deref(q.Result), v)

	case 10: // RETURN
		return vm.ret(q)

	case 11: // AND
		return vm.binaryBool(q, func(l, r bool) bool { return l && r })
	case 12: // OR
		return vm.binaryBool(q, func(l, r bool) bool { return l || r })
	case 13: // EQUALS
		return vm.equals(q)
	case 14: // LESSTHAN
		return vm.compare(q, func(c int) bool { return c < 0 })
	case 15: // MORETHAN
		return vm.compare(q, func(c int) bool { return c > 0 })
	case 16: // ADDITION
		return vm.arith(q, '+')
	case 17: // SUBTRACTION
		return vm.arith(q, '-')
	case 18: // MULTIPLICATION
		return vm.arith(q, '*')
	case 19: // DIVISION
		return vm.arith(q, '/')

	case 20: // PRINT
		return vm.print()

	default:
		return false, &RuntimeError{Code: InstructionDoesntExist, At: vm.i}
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func (vm *VM) condGoto(q codegen.Quadruple, jumpWhen bool) (bool, error) {
	if q.Left == nil {
		return false, &RuntimeError{Code: MemoryAddressMissing, At: vm.i}
	}
	v, err := vm.mem.Get(*q.Left)
	if err != nil {
		return false, err
	}
	if asBool(v) == jumpWhen {
		if q.Result == nil {
			return false, &RuntimeError{Code: GotoJumpMissing, At: vm.i}
		}
		vm.i = *q.Result
		return true, nil
	}
	return false, nil
}

func (vm *VM) call(q codegen.Quadruple) (bool, error) {
	if q.Left == nil {
		return false, &RuntimeError{Code: FunctionNotFound, At: vm.i}
	}
	args := vm.mem.Top().DrainParameters()
	callSite := vm.i
	returnAddr := vm.i + 1

	var retAddr *int
	if q.Result != nil {
		v := *q.Result
		retAddr = &v
	}

	record := NewActivationRecord("", callSite, returnAddr, retAddr, args)
	vm.mem.Push(record)
	vm.i = *q.Left
	return true, nil
}

func (vm *VM) ret(q codegen.Quadruple) (bool, error) {
	// The return operand is resolved against the returning call's own
	// record, so it is read before that record is popped.
	var val interface{}
	if q.Left != nil {
		v, err := vm.mem.Get(*q.Left)
		if err != nil {
			return false, err
		}
		val = v
	}

	record := vm.mem.Pop()
	if record == nil {
		return false, &RuntimeError{Code: FunctionNotFound, At: vm.i}
	}

	if q.Left != nil {
		if record.ReturnValueAddress == nil {
			return false, &RuntimeError{Code: ReturnValueInVoid, At: vm.i}
		}
	} else if record.ReturnValueAddress != nil {
		return false, &RuntimeError{Code: ReturnValueNotFound, At: vm.i}
	}

	if record.ArgumentsRemaining() {
		return false, &RuntimeError{Code: UnloadedArguments, At: vm.i}
	}

	if record.ReturnValueAddress != nil {
		if err := vm.mem.Set(*record.ReturnValueAddress, val); err != nil {
			return false, err
		}
	}

	vm.i = record.ReturnAddress
	return true, nil
}

func (vm *VM) print() (bool, error) {
	args := vm.mem.Top().DrainParameters()
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatValue(a)
	}
	fmt.Fprintln(vm.out, strings.Join(parts, " "))
	return false, nil
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}

func asBool(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	default:
		return false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func (vm *VM) binaryBool(q codegen.Quadruple, op func(l, r bool) bool) (bool, error) {
	l, err := vm.mem.Get(deref(q.Left))
	if err != nil {
		return false, err
	}
	r, err := vm.mem.Get(deref(q.Right))
	if err != nil {
		return false, err
	}
	return false, vm.mem.Set(deref(q.Result), op(asBool(l), asBool(r)))
}

func (vm *VM) equals(q codegen.Quadruple) (bool, error) {
	l, err := vm.mem.Get(deref(q.Left))
	if err != nil {
		return false, err
	}
	r, err := vm.mem.Get(deref(q.Right))
	if err != nil {
		return false, err
	}

	var eq bool
	if lf, ok1 := asFloat(l); ok1 {
		if rf, ok2 := asFloat(r); ok2 {
			eq = lf == rf
		}
	} else {
		eq = l == r
	}
	return false, vm.mem.Set(deref(q.Result), eq)
}

func (vm *VM) compare(q codegen.Quadruple, test func(cmp int) bool) (bool, error) {
	l, err := vm.mem.Get(deref(q.Left))
	if err != nil {
		return false, err
	}
	r, err := vm.mem.Get(deref(q.Right))
	if err != nil {
		return false, err
	}

	var cmp int
	if ls, ok := l.(string); ok {
		rs, _ := r.(string)
		cmp = strings.Compare(ls, rs)
	} else {
		lf, _ := asFloat(l)
		rf, _ := asFloat(r)
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	}
	return false, vm.mem.Set(deref(q.Result), test(cmp))
}

func (vm *VM) arith(q codegen.Quadruple, op byte) (bool, error) {
	l, err := vm.mem.Get(deref(q.Left))
	if err != nil {
		return false, err
	}
	r, err := vm.mem.Get(deref(q.Right))
	if err != nil {
		return false, err
	}

	if ls, ok := l.(string); ok && op == '+' {
		rs, _ := r.(string)
		return false, vm.mem.Set(deref(q.Result), ls+rs)
	}

	li, lIsInt := l.(int64)
	ri, rIsInt := r.(int64)
	if lIsInt && rIsInt {
		var result int64
		switch op {
		case '+':
			result = li + ri
		case '-':
			result = li - ri
		case '*':
			result = li * ri
		case '/':
			if ri == 0 {
				return false, fmt.Errorf("vm: integer division by zero at instruction %d", vm.i)
			}
			result = li / ri
		}
		return false, vm.mem.Set(deref(q.Result), result)
	}

	lf, _ := asFloat(l)
	rf, _ := asFloat(r)
	var result float64
	switch op {
	case '+':
		result = lf + rf
	case '-':
		result = lf - rf
	case '*':
		result = lf * rf
	case '/':
		result = lf / rf
	}
	return false, vm.mem.Set(deref(q.Result), result)
}
