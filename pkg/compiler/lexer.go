package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxIntConst is the largest integer constant the target machine can load.
const MaxIntConst = 32767

// symbols is the fixed symbol alphabet. Reserved characters map to their
// escaped text.
var symbols = map[rune]string{
	'{': "{", '}': "}", '(': "(", ')': ")", '[': "[", ']': "]",
	'.': ".", ',': ",", ';': ";",
	'+': "+", '-': "-", '*': "*", '/': "/",
	'&': SymAmp, '|': "|", '<': SymLess, '>': SymGreater,
	'=': "=", '~': "~",
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src   []rune
	pos   int // index of the next rune to consume
	line  int // current 1-based source line
	col   int // column of the next rune
	lines sourceLines
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1, lines: newSourceLines(src)}
}

func (l *Lexer) errorf(line, col int, format string, args ...any) error {
	return &Error{
		Kind:    LexicalError,
		Line:    line,
		Column:  col,
		Msg:     fmt.Sprintf(format, args...),
		Snippet: l.lines.at(line),
	}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything up to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
// The opening "/*" must already have been consumed; "/**" needs no special case.
func (l *Lexer) skipBlockComment(startLine, startCol int) error {
	for !l.atEnd() {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return l.errorf(startLine, startCol, "unterminated block comment")
}

// isWordRune reports whether r may appear in an identifier or integer run.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanWord collects a run of identifier characters and classifies it as an
// integer constant, a keyword or an identifier, in that order.
func (l *Lexer) scanWord() (Token, error) {
	line, col := l.line, l.col
	start := l.pos
	for !l.atEnd() && isWordRune(l.peek()) {
		l.advance()
	}
	text := string(l.src[start:l.pos])

	if n, err := strconv.Atoi(text); err == nil {
		if n > MaxIntConst {
			return Token{}, l.errorf(line, col, "integer constant %s out of range 0..%d", text, MaxIntConst)
		}
		return Token{Kind: INT_CONST, Text: text, Line: line, Column: col}, nil
	} else if allDigits(text) {
		// too large even for strconv
		return Token{}, l.errorf(line, col, "integer constant %s out of range 0..%d", text, MaxIntConst)
	}

	if kw, ok := lookupKeyword(text); ok {
		return Token{Kind: KEYWORD, Text: text, Keyword: kw, Line: line, Column: col}, nil
	}
	return Token{Kind: IDENTIFIER, Text: text, Line: line, Column: col}, nil
}

func allDigits(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) == -1
}

// scanString collects a string constant. Everything between the quotes is kept
// verbatim; the constant may not span lines.
func (l *Lexer) scanString() (Token, error) {
	line, col := l.line, l.col
	l.advance() // opening "
	start := l.pos
	for !l.atEnd() {
		switch l.peek() {
		case '"':
			text := string(l.src[start:l.pos])
			l.advance() // closing "
			return Token{Kind: STRING_CONST, Text: text, Line: line, Column: col}, nil
		case '\n':
			return Token{}, l.errorf(line, col, "unterminated string constant")
		}
		l.advance()
	}
	return Token{}, l.errorf(line, col, "unterminated string constant")
}

// nextToken skips whitespace and comments and returns the next token.
// ok is false at end of input.
func (l *Lexer) nextToken() (tok Token, ok bool, err error) {
	for {
		l.skipWhitespace()
		if l.atEnd() {
			return Token{}, false, nil
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		if l.peek() == '/' && l.peek2() == '*' {
			line, col := l.line, l.col
			l.advance()
			l.advance()
			if err := l.skipBlockComment(line, col); err != nil {
				return Token{}, false, err
			}
			continue
		}
		break
	}

	ch := l.peek()
	switch {
	case ch == '"':
		tok, err = l.scanString()
		return tok, err == nil, err
	case isWordRune(ch):
		tok, err = l.scanWord()
		return tok, err == nil, err
	}

	if text, isSym := symbols[ch]; isSym {
		tok = Token{Kind: SYMBOL, Text: text, Line: l.line, Column: l.col}
		l.advance()
		return tok, true, nil
	}
	return Token{}, false, l.errorf(l.line, l.col, "unexpected character %q", ch)
}

// Lex tokenises src completely. It returns a *Error of kind LexicalError on
// the first anomaly; no partial token list is returned in that case.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, ok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}
