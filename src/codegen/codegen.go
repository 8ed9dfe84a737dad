// Package codegen assigns numeric addresses to the symbolic quadruple
// stream src/ir produces, the final stage of spec.md §4.3. Grounded on
// original_source/little_duck/code_generator.py's LittleDuckCodeGenerator:
// sort functions by start index into a function directory, sort the interned
// constant pool deterministically, walk the quadruple stream in order
// pushing/popping a stack of per-scope variable maps on OPEN/CLOSE, and
// resolve every symbolic operand (identifier, temp, constant, line number)
// to a numeric address or instruction index as it's encountered.
package codegen

import (
	"fmt"

	"littleduck/src/ir"
	"littleduck/src/util"
)

// Constant is one entry of the final constant pool, addressed by its
// position in this slice (address 0..len-1).
type Constant struct {
	Type  ir.DataType
	Value interface{}
}

// FunctionDirectoryEntry maps a function name to the instruction index its
// body begins at, mirroring original_source's FunctionDirectoryEntry.
type FunctionDirectoryEntry struct {
	Name       string
	Address    int
	ReturnType ir.DataType
}

// MemoryScopeTemplate describes how many cells one OPEN/CLOSE region
// contributes to its activation record: int/bool/float/string locals
// followed by temporaries, in that fixed partition order, grounded on
// original_source/little_duck/vm_memory_scope.py's MemoryScopeTemplate.
// Nested scopes within one call share a single growing register file (see
// src/vm's ActivationRecord): address 0 of that file is reserved once, at
// call entry, for the record's own metadata, and every OPEN after that
// extends the file by exactly this template's cell count starting wherever
// the file's length stood at that OPEN.
type MemoryScopeTemplate struct {
	ActivationAddress                                    int
	IntCount, BoolCount, FloatCount, StrCount, TempCount int
}

// Size returns the number of cells this scope itself contributes (not
// including the call-wide metadata slot, which is accounted for once by the
// activation record, not per scope).
func (t MemoryScopeTemplate) Size() int {
	return t.IntCount + t.BoolCount + t.FloatCount + t.StrCount + t.TempCount
}

// Quadruple is a fully-resolved instruction: Op matches ir.Op's numbering
// (and, in turn, spec.md §6's VM instruction set) one for one; operands are
// now plain addresses or instruction indices, or nil when unused.
type Quadruple struct {
	Op                  int
	Left, Right, Result *int
}

// Program is the complete output of code generation, matching the shape of
// original_source's GeneratedCode tuple: a function directory, one memory
// scope template per scope (template[0] is the global scope, the rest follow
// in the order their OPEN instructions appear; each OPEN's Left holds its
// template index), the constant pool, and the final quadruple stream.
type Program struct {
	Functions        []FunctionDirectoryEntry
	Templates        []MemoryScopeTemplate
	Constants        []Constant
	Quads            []Quadruple
	LocalScopeOffset int // addresses below this are constants or globals; see src/vm/memory.go
}

// scopeFrame is one entry of the variable-map stack kept while translating
// the quadruple stream, mirroring code_generator.py's parallel
// scope_stack/variable_map_stack.
type scopeFrame struct {
	scope      *ir.Scope
	addr       map[string]int
	tempOffset int
	base       int // this scope's own starting address within its activation record
	ownSize    int // cells this scope itself contributes (vars + temps)
}

// opTable translates ir.Op into the final VM instruction tag. The two enums
// are numerically identical today (see ir/quad.go's comment) but are kept
// as separate named sets so either can change independently.
var opTable = [...]int{
	int(ir.OpOpenFrame): 0, int(ir.OpCloseFrame): 1, int(ir.OpGoto): 2,
	int(ir.OpGotoT): 3, int(ir.OpGotoF): 4, int(ir.OpRead): 5,
	int(ir.OpAssign): 6, int(ir.OpFuncParam): 7, int(ir.OpFuncCall): 8,
	int(ir.OpFuncArg): 9, int(ir.OpReturn): 10, int(ir.OpAnd): 11,
	int(ir.OpOr): 12, int(ir.OpEq): 13, int(ir.OpLt): 14, int(ir.OpGt): 15,
	int(ir.OpAdd): 16, int(ir.OpSub): 17, int(ir.OpMul): 18, int(ir.OpDiv): 19,
	int(ir.OpPrint): 20,
}

// Generate translates quads (built against global) into a Program with
// every operand resolved to a numeric address.
func Generate(quads []ir.Quad, global *ir.GlobalScope) (*Program, error) {
	scopeByID := map[int]*ir.Scope{}
	var collect func(*ir.Scope)
	collect = func(s *ir.Scope) {
		for _, c := range s.Children {
			scopeByID[c.ID] = c
			collect(c)
		}
	}
	collect(&global.Scope)

	sortedConsts := global.SortedConstants()
	constants := make([]Constant, len(sortedConsts))
	constAddr := make(map[string]int, len(sortedConsts))
	for i, c := range sortedConsts {
		constants[i] = Constant{Type: c.CType, Value: c.CVal}
		constAddr[constKey(c.CType, c.CVal)] = i
	}

	// Address len(constants) itself is reserved (never assigned to a user
	// global) so that global addressing uses the same "+1 metadata slot"
	// convention as every activation record's own register file; see
	// src/vm/memory.go.
	globalAddr, globalTempOffset, globalTotal := buildAddressMap(len(constants)+1, &global.Scope)
	globalFrame := &scopeFrame{scope: &global.Scope, addr: globalAddr, tempOffset: globalTempOffset}
	localScopeOffset := globalTotal

	templates := make([]MemoryScopeTemplate, 1, len(scopeByID)+1)
	templates[0] = templateFor(&global.Scope)
	templates[0].ActivationAddress = 0

	var functions []FunctionDirectoryEntry
	for _, fn := range global.Functions {
		functions = append(functions, FunctionDirectoryEntry{Name: fn.Name, Address: fn.StartIndex, ReturnType: fn.ReturnType})
	}
	sortFunctionsByAddress(functions)
	funcAddr := make(map[string]int, len(functions))
	for _, f := range functions {
		funcAddr[f.Name] = f.Address
	}

	stack := util.NewStack[*scopeFrame]()
	stack.Push(globalFrame)

	out := make([]Quadruple, len(quads))
	for i, q := range quads {
		switch q.Op {
		case ir.OpOpenFrame:
			child := scopeByID[i]
			parent, _ := stack.Peek()

			var base int
			if parent.scope == &global.Scope {
				// Fresh activation record: every call-relative address space
				// starts right after the global scope's own range, with one
				// reserved metadata cell, so the VM can tell a call-relative
				// address apart from a global one by comparing against
				// localScopeOffset alone (see src/vm/memory.go).
				base = localScopeOffset + 1
			} else {
				base = parent.base + parent.ownSize
			}

			addr, tempOffset, total := buildAddressMap(base, child)
			frame := &scopeFrame{scope: child, addr: addr, tempOffset: tempOffset, base: base, ownSize: total - base}
			stack.Push(frame)

			templateIndex := len(templates)
			tpl := templateFor(child)
			tpl.ActivationAddress = child.ID
			templates = append(templates, tpl)
			out[i] = Quadruple{Op: opTable[q.Op], Left: &templateIndex}

		case ir.OpCloseFrame:
			stack.Pop()
			out[i] = Quadruple{Op: opTable[q.Op]}

		case ir.OpGoto, ir.OpGotoT, ir.OpGotoF:
			target := q.Result.Line
			result := &target
			var left *int
			if q.Left != nil {
				resolved, err := resolve(stack, constAddr, *q.Left)
				if err != nil {
					return nil, err
				}
				left = &resolved
			}
			out[i] = Quadruple{Op: opTable[q.Op], Left: left, Result: result}

		case ir.OpFuncCall:
			name := q.Left.Name
			addr := funcAddr[name]
			left := &addr
			var result *int
			if q.Result != nil {
				resolved, err := resolve(stack, constAddr, *q.Result)
				if err != nil {
					return nil, err
				}
				result = &resolved
			}
			out[i] = Quadruple{Op: opTable[q.Op], Left: left, Result: result}

		case ir.OpFuncParam:
			left, err := resolve(stack, constAddr, *q.Left)
			if err != nil {
				return nil, err
			}
			out[i] = Quadruple{Op: opTable[q.Op], Left: &left}

		case ir.OpFuncArg:
			result, err := resolve(stack, constAddr, *q.Result)
			if err != nil {
				return nil, err
			}
			out[i] = Quadruple{Op: opTable[q.Op], Result: &result}

		case ir.OpReturn:
			var left *int
			if q.Left != nil {
				resolved, err := resolve(stack, constAddr, *q.Left)
				if err != nil {
					return nil, err
				}
				left = &resolved
			}
			out[i] = Quadruple{Op: opTable[q.Op], Left: left}

		case ir.OpPrint:
			out[i] = Quadruple{Op: opTable[q.Op]}

		default: // OpAssign, OpAnd, OpOr, OpEq, OpLt, OpGt, OpAdd, OpSub, OpMul, OpDiv
			q2 := Quadruple{Op: opTable[q.Op]}
			if q.Left != nil {
				v, err := resolve(stack, constAddr, *q.Left)
				if err != nil {
					return nil, err
				}
				q2.Left = &v
			}
			if q.Right != nil {
				v, err := resolve(stack, constAddr, *q.Right)
				if err != nil {
					return nil, err
				}
				q2.Right = &v
			}
			if q.Result != nil {
				v, err := resolve(stack, constAddr, *q.Result)
				if err != nil {
					return nil, err
				}
				q2.Result = &v
			}
			out[i] = q2
		}
	}

	return &Program{Functions: functions, Templates: templates, Constants: constants, Quads: out, LocalScopeOffset: localScopeOffset}, nil
}

// resolve translates one symbolic operand into a numeric address by
// scanning the variable-map stack top (innermost scope) to bottom, mirroring
// code_generator.py's relative_address / Stack.__iter__ top-first order.
func resolve(stack *util.Stack[*scopeFrame], constAddr map[string]int, o ir.Operand) (int, error) {
	switch o.Kind {
	case ir.OperandConst:
		addr, ok := constAddr[constKey(o.CType, o.CVal)]
		if !ok {
			return 0, fmt.Errorf("codegen: constant %v not found in pool", o)
		}
		return addr, nil

	case ir.OperandTemp:
		top, ok := stack.Peek()
		if !ok {
			return 0, fmt.Errorf("codegen: temp %d resolved with no open scope", o.Temp)
		}
		return top.tempOffset + o.Temp, nil

	case ir.OperandLine:
		return o.Line, nil

	case ir.OperandIdentifier:
		var found int
		var ok bool
		stack.Each(func(f *scopeFrame) bool {
			if a, present := f.addr[o.Name]; present {
				found, ok = a, true
				return false
			}
			return true
		})
		if !ok {
			return 0, fmt.Errorf("codegen: identifier %q not found in any enclosing scope", o.Name)
		}
		return found, nil

	default:
		return 0, fmt.Errorf("codegen: unknown operand kind %d", o.Kind)
	}
}

func constKey(t ir.DataType, v interface{}) string {
	return fmt.Sprintf("%d:%v", t, v)
}

// buildAddressMap lays out scope's declared variables starting at offset,
// grouped by type (int, bool, float, string, in that fixed partition order)
// so the resulting addresses match a MemoryScopeTemplate's registry layout,
// mirroring code_generator.py's variable_map.
func buildAddressMap(offset int, scope *ir.Scope) (map[string]int, int, int) {
	var ints, bools, floats, strs []*ir.VariableMetadata
	for _, v := range scope.OrderedVariables() {
		switch v.Type {
		case ir.DataInt:
			ints = append(ints, v)
		case ir.DataBool:
			bools = append(bools, v)
		case ir.DataFloat:
			floats = append(floats, v)
		case ir.DataString:
			strs = append(strs, v)
		}
	}

	addr := make(map[string]int)
	cursor := offset
	for _, group := range [][]*ir.VariableMetadata{ints, bools, floats, strs} {
		for _, v := range group {
			addr[v.Name] = cursor
			cursor++
		}
	}

	tempOffset := cursor
	total := tempOffset + scope.TempCount()
	return addr, tempOffset, total
}

func templateFor(scope *ir.Scope) MemoryScopeTemplate {
	var t MemoryScopeTemplate
	for _, v := range scope.OrderedVariables() {
		switch v.Type {
		case ir.DataInt:
			t.IntCount++
		case ir.DataBool:
			t.BoolCount++
		case ir.DataFloat:
			t.FloatCount++
		case ir.DataString:
			t.StrCount++
		}
	}
	t.TempCount = scope.TempCount()
	return t
}

func sortFunctionsByAddress(fns []FunctionDirectoryEntry) {
	for i := 1; i < len(fns); i++ {
		for j := i; j > 0 && fns[j].Address < fns[j-1].Address; j-- {
			fns[j], fns[j-1] = fns[j-1], fns[j]
		}
	}
}
