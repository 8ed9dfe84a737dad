package frontend

type reservedItem struct {
	val string
	typ itemType
}

// rw contains the set of all reserved LittleDuck keywords.
// The first dimension equals the length of the word.
// The second dimension is the slice of all words of that length.
// Indexing by length and searching should be faster than using a hash table.
var rw = [...][]reservedItem{
	// One-grams
	{},
	// Two-grams
	{
		{val: "do", typ: DO},
		{val: "if", typ: IF},
	},
	// Three-grams
	{
		{val: "end", typ: END},
		{val: "var", typ: VAR},
		{val: "int", typ: TYPE},
	},
	// Four-grams
	{
		{val: "main", typ: MAIN},
		{val: "else", typ: ELSE},
		{val: "void", typ: VOID},
		{val: "true", typ: TRUE},
		{val: "bool", typ: TYPE},
	},
	// Five-grams
	{
		{val: "while", typ: WHILE},
		{val: "print", typ: PRINT},
		{val: "float", typ: TYPE},
		{val: "false", typ: FALSE},
	},
	// Six-grams
	{
		{val: "return", typ: RETURN},
		{val: "import", typ: IMPORT},
		{val: "string", typ: TYPE},
	},
	// Seven-grams
	{
		{val: "program", typ: PROGRAM},
	},
	// Eight-grams
	{},
}

// isKeyword returns true if the string s is a reserved LittleDuck keyword.
// On the return of true the itemType of the keyword is returned.
// On the return of false the itemType is either IDENTIFIER or itemError.
func isKeyword(s string) (bool, itemType) {
	if len(s) == 0 {
		return false, itemError
	}
	if len(s) > len(rw) {
		return false, IDENTIFIER
	}

	// Check if string s is a reserved word by iterating over all words in rw of length len(s).
	for _, e1 := range rw[len(s)-1] {
		if e1.val == s {
			return true, e1.typ
		}
	}
	return false, IDENTIFIER
}
