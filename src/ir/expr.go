package ir

// expr.go implements the prefix-to-quadruple linearization of spec.md
// §4.1.4: an expression subtree is first flattened into prefix (Polish)
// notation -- [operator, ...left, ...right] for a binary node, a single
// operand for a leaf -- and then reduced left to right on a stack: whenever
// the three topmost stack entries read [operator, operand, operand] they
// are popped, type-checked through the semantic cube for that operator, and
// replaced with a single fresh temporary holding the result. Mirrors
// original_source's PolishExpression deque, translated into an explicit
// shift-reduce loop since Go has no operator overloading for its obvious
// dataclass ergonomics.

type exprToken struct {
	isOp    bool
	op      string
	operand Operand
	dtype   DataType
	node    *Node // for error reporting
}

// linearize type-checks and emits quadruples for expression node n,
// returning the symbolic operand holding its value and its inferred type.
func (a *Analyzer) linearize(n *Node) (Operand, DataType, error) {
	tokens, err := a.prefix(n)
	if err != nil {
		return Operand{}, DataNone, err
	}
	return a.reduce(tokens)
}

// prefix flattens an expression subtree into prefix-order tokens, lowering
// unary operators and != along the way per spec.md §4.1.3:
//
//	-x    => x * (-1)
//	!x    => x == false
//	a!=b  => (a==b) == false
//
// Value-returning function calls are side-effecting leaves: their PARAM/
// CALL quadruples are emitted immediately, in the same left-to-right order
// the tokens are built in, and only the resulting temporary takes a slot in
// the token stream.
func (a *Analyzer) prefix(n *Node) ([]exprToken, error) {
	switch n.Typ {
	case BINARY_OP:
		op := n.Data.(string)
		if op == "!=" {
			inner := &Node{Typ: BINARY_OP, Line: n.Line, Pos: n.Pos, Data: "==", Children: n.Children}
			falseLit := &Node{Typ: BOOL_LITERAL, Line: n.Line, Pos: n.Pos, Data: false}
			outer := &Node{Typ: BINARY_OP, Line: n.Line, Pos: n.Pos, Data: "==", Children: []*Node{inner, falseLit}}
			return a.prefix(outer)
		}
		left, err := a.prefix(n.Children[0])
		if err != nil {
			return nil, err
		}
		right, err := a.prefix(n.Children[1])
		if err != nil {
			return nil, err
		}
		out := make([]exprToken, 0, 1+len(left)+len(right))
		out = append(out, exprToken{isOp: true, op: op, node: n})
		out = append(out, left...)
		out = append(out, right...)
		return out, nil

	case UNARY_OP:
		op := n.Data.(string)
		switch op {
		case "-":
			negOne := &Node{Typ: n.Children[0].negLiteralType(), Line: n.Line, Pos: n.Pos, Data: int64(-1)}
			mul := &Node{Typ: BINARY_OP, Line: n.Line, Pos: n.Pos, Data: "*", Children: []*Node{n.Children[0], negOne}}
			return a.prefix(mul)
		case "!":
			falseLit := &Node{Typ: BOOL_LITERAL, Line: n.Line, Pos: n.Pos, Data: false}
			eq := &Node{Typ: BINARY_OP, Line: n.Line, Pos: n.Pos, Data: "==", Children: []*Node{n.Children[0], falseLit}}
			return a.prefix(eq)
		default:
			return nil, semErr(n, "unknown unary operator %q", op)
		}

	default:
		operand, t, err := a.leaf(n)
		if err != nil {
			return nil, err
		}
		return []exprToken{{operand: operand, dtype: t, node: n}}, nil
	}
}

// negLiteralType picks int or float for the literal (-1) multiplier of a
// unary minus: float when the operand is itself a float literal, int
// otherwise, so `-x` type-checks as int*int, float*int or float*float, each
// of which yields the operand's own type via mulCube.
func (n *Node) negLiteralType() NodeType {
	if n.Typ == FLOAT_LITERAL {
		return FLOAT_LITERAL
	}
	return INT_LITERAL
}

// leaf resolves a non-operator expression node to a symbolic operand.
func (a *Analyzer) leaf(n *Node) (Operand, DataType, error) {
	switch n.Typ {
	case INT_LITERAL:
		v, _ := n.Data.(int64)
		return a.Global.Intern(DataInt, v), DataInt, nil
	case FLOAT_LITERAL:
		var v float64
		switch x := n.Data.(type) {
		case float64:
			v = x
		case int64:
			v = float64(x)
		}
		return a.Global.Intern(DataFloat, v), DataFloat, nil
	case STRING_LITERAL:
		return a.Global.Intern(DataString, n.Data.(string)), DataString, nil
	case BOOL_LITERAL:
		return a.Global.Intern(DataBool, n.Data.(bool)), DataBool, nil
	case READ_VAR:
		name := n.Data.(string)
		v, _ := a.cur.Lookup(name)
		if v == nil {
			return Operand{}, DataNone, semErr(n, "reference to undeclared variable %q", name)
		}
		if !v.Initialized {
			return Operand{}, DataNone, semErr(n, "variable %q read before being assigned a value", name)
		}
		v.Used = true
		return Ident(name), v.Type, nil
	case VALUE_CALL:
		return a.analyzeCall(n, true)
	default:
		return Operand{}, DataNone, semErr(n, "unexpected expression node %s", n.Type())
	}
}

// reduce runs the shift-reduce loop described in the package comment.
func (a *Analyzer) reduce(tokens []exprToken) (Operand, DataType, error) {
	stack := make([]exprToken, 0, len(tokens))
	for _, tok := range tokens {
		stack = append(stack, tok)
		for {
			reduced, ok, err := a.tryReduce(stack)
			if err != nil {
				return Operand{}, DataNone, err
			}
			if !ok {
				break
			}
			stack = append(stack[:len(stack)-3], reduced)
		}
	}
	if len(stack) != 1 || stack[0].isOp {
		return Operand{}, DataNone, semErr(tokens[0].node, "malformed expression")
	}
	return stack[0].operand, stack[0].dtype, nil
}

// tryReduce checks whether the top three stack entries form
// [operator, operand, operand]; if so it type-checks and emits the
// quadruple, returning the resulting leaf token.
func (a *Analyzer) tryReduce(stack []exprToken) (exprToken, bool, error) {
	if len(stack) < 3 {
		return exprToken{}, false, nil
	}
	top := stack[len(stack)-3:]
	opTok, l, r := top[0], top[1], top[2]
	if !opTok.isOp || l.isOp || r.isOp {
		return exprToken{}, false, nil
	}

	resultType, op, err := a.typeCheckBinary(opTok, l, r)
	if err != nil {
		return exprToken{}, false, err
	}

	dst := TempVar(a.cur.NewTemp())
	a.emit(Quad{Op: op, Left: &l.operand, Right: &r.operand, Result: &dst})
	return exprToken{operand: dst, dtype: resultType, node: opTok.node}, true, nil
}

func (a *Analyzer) typeCheckBinary(opTok, l, r exprToken) (DataType, Op, error) {
	switch opTok.op {
	case "+", "-", "*", "/":
		rt, ok := BinaryResultType(opTok.op, l.dtype, r.dtype)
		if !ok {
			return DataNone, 0, semErr(opTok.node, "operator %q not defined for %s and %s", opTok.op, l.dtype, r.dtype)
		}
		return rt, arithOp(opTok.op), nil
	case "==":
		if !ComparisonValid(l.dtype, r.dtype) {
			return DataNone, 0, semErr(opTok.node, "operator %q not defined for %s and %s", opTok.op, l.dtype, r.dtype)
		}
		return DataBool, OpEq, nil
	case "<", ">":
		if !ComparisonValid(l.dtype, r.dtype) {
			return DataNone, 0, semErr(opTok.node, "operator %q not defined for %s and %s", opTok.op, l.dtype, r.dtype)
		}
		if opTok.op == "<" {
			return DataBool, OpLt, nil
		}
		return DataBool, OpGt, nil
	case "&&", "||":
		if !LogicalValid(l.dtype, r.dtype) {
			return DataNone, 0, semErr(opTok.node, "operator %q not defined for %s and %s", opTok.op, l.dtype, r.dtype)
		}
		if opTok.op == "&&" {
			return DataBool, OpAnd, nil
		}
		return DataBool, OpOr, nil
	default:
		return DataNone, 0, semErr(opTok.node, "unknown operator %q", opTok.op)
	}
}

func arithOp(op string) Op {
	switch op {
	case "+":
		return OpAdd
	case "-":
		return OpSub
	case "*":
		return OpMul
	default:
		return OpDiv
	}
}
