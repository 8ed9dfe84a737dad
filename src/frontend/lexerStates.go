package frontend

// lexGlobal starts the lexing process and serves as the default state.
func lexGlobal(l *lexer) stateFunc {
	for {
		r := l.next()
		switch {
		case isAlpha(r):
			// Keyword or identifier.
			return lexWord
		case isDigit(r):
			// Number.
			return lexNumber
		case r == '\n':
			// Newline.
			l.ignore()
			l.line++
			l.startOnLine = 1
		case isSpace(r):
			// Ignore whitespace. Newlines are caught before whitespaces.
			l.ignore()
		case r == '"':
			// String.
			return lexString
		case r == '=' && l.peek() == '=':
			l.next()
			l.emit(EQ)
		case r == '!' && l.peek() == '=':
			l.next()
			l.emit(NEQ)
		case r == '&' && l.peek() == '&':
			l.next()
			l.emit(AND)
		case r == '|' && l.peek() == '|':
			l.next()
			l.emit(OR)
		case r == '/' && l.peek() == '/':
			// Line comment.
			for c := l.next(); c != '\n' && c != eof; c = l.next() {
			}
			l.backup()
			l.ignore()
		case r == '/' && l.peek() == '*':
			l.next()
			if !skipBlockComment(l) {
				return l.errorf("unterminated block comment starting at line %d:%d", l.line, l.startOnLine)
			}
			l.ignore()
		case r == eof:
			// End of file: stop the state machine.
			l.emit(itemEOF)
			return nil
		default:
			// Single-rune token: punctuation or an operator with no longer
			// match above ('+', '-', '*', '/', '<', '>', '!', '=', '(', ')',
			// '{', '}', ';', ',', ':').
			l.emit(itemType(r))
		}
	}
}

// skipBlockComment consumes a /* ... */ comment, counting nesting depth so
// that "/* outer /* inner */ still-outer */" is consumed as a single
// comment (nestable in count only, not content, per spec.md §6). Returns
// false if EOF is reached before the comment closes.
func skipBlockComment(l *lexer) bool {
	depth := 1
	for depth > 0 {
		r := l.next()
		switch r {
		case eof:
			return false
		case '\n':
			l.line++
			l.startOnLine = 1
		case '/':
			if l.peek() == '*' {
				l.next()
				depth++
			}
		case '*':
			if l.peek() == '/' {
				l.next()
				depth--
			}
		}
	}
	return true
}

// lexWord scans the input string for keywords and identifiers.
func lexWord(l *lexer) stateFunc {
	// We know that the currently scanned rune is an alphabetic character.
	for {
		r := l.next()

		// Check if character is valid character.
		if !isAlpha(r) && !isDigit(r) && r != '_' {
			l.backup()
			kw, typ := isKeyword(l.input[l.start:l.pos])
			if kw {
				l.emit(typ)
			} else {
				l.emit(IDENTIFIER)
			}
			return lexGlobal
		}
	}
}

// lexNumber scans the input stream for an integer or float literal.
func lexNumber(l *lexer) stateFunc {
	// We've scanned the first digit already. We don't scan negative numbers;
	// the parser handles unary minus via grammar rules.
	r := l.next()
	for ; isDigit(r); r = l.next() {
	}

	if r == '.' {
		for r = l.next(); isDigit(r); r = l.next() {
		}
		l.backup()
		l.emit(FLOAT)
		return lexGlobal
	}
	l.backup()
	l.emit(INTEGER)
	return lexGlobal
}

// lexString scans a string literal from the input stream.
func lexString(l *lexer) stateFunc {
	// By this point we're inside the string. Accept anything until the next
	// '"' appears. Escaped '"' (\") passes through unchanged, per spec.md §6.
	l.ignore()
	var prev rune
	for {
		r := l.next()
		if r == eof {
			return l.errorf("unclosed string literal at line %d:%d", l.line, l.startOnLine)
		}
		if r == '"' && prev != '\\' {
			l.backup()
			l.emit(STRING)
			l.next()
			l.ignore()
			return lexGlobal
		}
		if r == '\n' {
			l.line++
			l.startOnLine = 1
		}
		prev = r
	}
}

// ----------------------------
// ----- Helper functions -----
// ----------------------------

// isAlpha return true if rune r is an alphabetic character in the set [a-zA-Z].
func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isDigit return true if rune r is a digit in the range [0-9].
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isSpace return true if rune r is a whitespace character.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\f' || r == '\r'
}
