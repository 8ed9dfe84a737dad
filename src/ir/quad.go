package ir

import "fmt"

// quad.go defines the symbolic quadruple the analyzer emits: operands are
// still named by identifier, temp number or line number, to be resolved to
// numeric addresses later by src/codegen. Grounded on
// original_source/little_duck/quadruples.py's QuadrupleIdentifier/
// QuadrupleTempVariable/QuadrupleConstVariable/QuadrupleLineNumber family.

// OperandKind discriminates the payload an Operand carries.
type OperandKind int

const (
	OperandIdentifier OperandKind = iota // A named variable, function or module.
	OperandTemp                          // A compiler-generated temporary, numbered within its scope.
	OperandConst                         // An interned literal constant.
	OperandLine                          // An already-resolved IR instruction index (jump target).
)

// Operand is a symbolic operand of a quadruple. Exactly one of the fields
// matching Kind is meaningful.
type Operand struct {
	Kind  OperandKind
	Name  string      // OperandIdentifier
	Temp  int         // OperandTemp
	CType DataType    // OperandConst
	CVal  interface{} // OperandConst
	Line  int         // OperandLine
}

// Ident builds an OperandIdentifier.
func Ident(name string) Operand { return Operand{Kind: OperandIdentifier, Name: name} }

// TempVar builds an OperandTemp.
func TempVar(n int) Operand { return Operand{Kind: OperandTemp, Temp: n} }

// ConstVar builds an OperandConst.
func ConstVar(t DataType, v interface{}) Operand { return Operand{Kind: OperandConst, CType: t, CVal: v} }

// LineNumber builds an OperandLine.
func LineNumber(k int) Operand { return Operand{Kind: OperandLine, Line: k} }

func (o Operand) String() string {
	switch o.Kind {
	case OperandIdentifier:
		return o.Name
	case OperandTemp:
		return fmt.Sprintf("t_%d", o.Temp)
	case OperandConst:
		if o.CType == DataString {
			return fmt.Sprintf("%q", o.CVal)
		}
		return fmt.Sprintf("%v", o.CVal)
	case OperandLine:
		return fmt.Sprintf("L_%d", o.Line)
	default:
		return "?"
	}
}

// Op is the symbolic instruction tag emitted by the analyzer. Its numeric
// values deliberately match the final VM instruction enumeration in
// spec.md §6 one-for-one (OPEN=0 .. PRINT=20), the same way
// original_source keeps QuadrupleOperation and VirtualMachineInstruction as
// two distinct enums whose members are mapped by name
// (`VirtualMachineInstruction[operation.name]`); src/codegen still performs
// an explicit translation step (see codegen.go's opTable) rather than
// reinterpreting the int, so the two enums can diverge in the future
// without breaking either layer.
type Op int

const (
	OpOpenFrame Op = iota
	OpCloseFrame
	OpGoto
	OpGotoT
	OpGotoF
	OpRead
	OpAssign
	OpFuncParam
	OpFuncCall
	OpFuncArg
	OpReturn
	OpAnd
	OpOr
	OpEq
	OpLt
	OpGt
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPrint
)

var opNames = [...]string{
	"OPEN", "CLOSE", "GOTO", "GOTOT", "GOTOF", "READ", "ASSIGN",
	"PARAM", "CALL", "ARG", "RETURN", "AND", "OR", "==", "<", ">",
	"+", "-", "*", "/", "PRINT",
}

func (op Op) String() string {
	if int(op) < 0 || int(op) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", op)
	}
	return opNames[op]
}

// Quad is a symbolic quadruple: an operation and up to three operands.
// Omitted operands are nil. The field names follow original_source's
// (operation, left, right, result) quadruple shape.
type Quad struct {
	Op          Op
	Left, Right, Result *Operand
}

func (q Quad) String() string {
	fmtOperand := func(o *Operand) string {
		if o == nil {
			return "_"
		}
		return o.String()
	}
	return fmt.Sprintf("(%s, %s, %s, %s)", q.Op, fmtOperand(q.Left), fmtOperand(q.Right), fmtOperand(q.Result))
}
