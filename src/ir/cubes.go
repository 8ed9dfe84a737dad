package ir

// cubes.go implements the semantic cubes: lookup tables that decide, for a
// pair of operand types and an operator, whether the operation is legal and
// what type it produces. Grounded on the teacher's validate.go lutExp/
// lutAssign array-indexed lookup tables, generalized from two types
// (integer, float) to LittleDuck's four (int, float, string, bool), and on
// original_source/little_duck/semantic_cubes.py's addition/multiplication/
// comparison matrices.
//
// original_source's comparison_matrix produces 'int'; this repository
// departs from it because spec.md gives LittleDuck a first-class bool type
// distinct from int, so comparisons here produce DataBool.

// nTypes is the number of non-void entries in DataType, used to size the
// cube arrays. DataNone has no row/column of its own: an operand of
// DataNone reaching a cube indicates a compiler bug upstream, not a user
// type error.
const nTypes = 4

func idx(t DataType) int { return int(t) - 1 }

// additionCube holds the result type of l + r, or DataNone if undefined.
// Numbers add with numbers (int+float widens to float); strings concatenate
// only with strings.
var additionCube [nTypes][nTypes]DataType

// mulCube holds the result type of l (-,*,/) r. Numbers only; strings and
// bools are never defined for these operators.
var mulCube [nTypes][nTypes]DataType

// comparisonCube says whether l and r may be compared with ==, !=, < or >.
// The result of a valid comparison is always DataBool.
var comparisonCube [nTypes][nTypes]bool

// logicalCube says whether l and r may be combined with && or ||, per
// spec.md's "defined over bool and int" rule: either operand may be bool or
// int, in any combination. Result is always DataBool.
var logicalCube [nTypes][nTypes]bool

// assignCube says whether a value of type src may be stored into a
// destination of type dst: equal types always, and int widening into a
// float destination (the teacher's lutAssign: "float := int allowed").
// This same predicate governs variable initialization, function argument
// passing and return-value matching.
var assignCube [nTypes][nTypes]bool

func init() {
	numeric := []DataType{DataInt, DataFloat}
	for _, l := range numeric {
		for _, r := range numeric {
			result := DataInt
			if l == DataFloat || r == DataFloat {
				result = DataFloat
			}
			additionCube[idx(l)][idx(r)] = result
			mulCube[idx(l)][idx(r)] = result
		}
	}
	additionCube[idx(DataString)][idx(DataString)] = DataString

	for _, l := range []DataType{DataInt, DataFloat, DataString, DataBool} {
		comparisonCube[idx(l)][idx(l)] = true
	}
	// Numeric vs numeric and bool vs numeric compare freely; strings only
	// compare against strings (handled by the diagonal loop above).
	for _, l := range numeric {
		for _, r := range numeric {
			comparisonCube[idx(l)][idx(r)] = true
		}
		comparisonCube[idx(l)][idx(DataBool)] = true
		comparisonCube[idx(DataBool)][idx(l)] = true
	}

	for _, l := range []DataType{DataInt, DataBool} {
		for _, r := range []DataType{DataInt, DataBool} {
			logicalCube[idx(l)][idx(r)] = true
		}
	}

	for _, t := range []DataType{DataInt, DataFloat, DataString, DataBool} {
		assignCube[idx(t)][idx(t)] = true
	}
	assignCube[idx(DataFloat)][idx(DataInt)] = true
}

// BinaryResultType returns the result type of applying a numeric/string
// operator (+, -, *, /) to operands of type l and r, or false if undefined.
func BinaryResultType(op string, l, r DataType) (DataType, bool) {
	if l == DataNone || r == DataNone {
		return DataNone, false
	}
	var cube *[nTypes][nTypes]DataType
	switch op {
	case "+":
		cube = &additionCube
	case "-", "*", "/":
		cube = &mulCube
	default:
		return DataNone, false
	}
	result := cube[idx(l)][idx(r)]
	return result, result != DataNone
}

// ComparisonValid reports whether l and r may be compared with ==, !=, < or >.
func ComparisonValid(l, r DataType) bool {
	if l == DataNone || r == DataNone {
		return false
	}
	return comparisonCube[idx(l)][idx(r)]
}

// LogicalValid reports whether l and r may be combined with && or ||.
func LogicalValid(l, r DataType) bool {
	if l == DataNone || r == DataNone {
		return false
	}
	return logicalCube[idx(l)][idx(r)]
}

// Assignable reports whether a value of type src may be stored into a
// destination of type dst.
func Assignable(dst, src DataType) bool {
	if dst == DataNone || src == DataNone {
		return false
	}
	return assignCube[idx(dst)][idx(src)]
}
