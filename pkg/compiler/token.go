package compiler

import (
	"fmt"
	"strings"
)

// TokenKind identifies the lexical category of a token.
type TokenKind int

const (
	KEYWORD TokenKind = iota
	SYMBOL
	IDENTIFIER
	INT_CONST
	STRING_CONST
)

var tokenKindNames = [...]string{
	KEYWORD:      "KEYWORD",
	SYMBOL:       "SYMBOL",
	IDENTIFIER:   "IDENTIFIER",
	INT_CONST:    "INT_CONST",
	STRING_CONST: "STRING_CONST",
}

func (k TokenKind) String() string {
	if int(k) >= 0 && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// xmlTag is the element name used by the token XML dump.
func (k TokenKind) xmlTag() string {
	switch k {
	case KEYWORD:
		return "keyword"
	case SYMBOL:
		return "symbol"
	case IDENTIFIER:
		return "identifier"
	case INT_CONST:
		return "integerConstant"
	case STRING_CONST:
		return "stringConstant"
	}
	return "unknown"
}

// Keyword is one of the reserved words. Only KEYWORD tokens carry one.
type Keyword int

const (
	NoKeyword Keyword = iota
	KwClass
	KwConstructor
	KwFunction
	KwMethod
	KwField
	KwStatic
	KwVar
	KwInt
	KwChar
	KwBoolean
	KwVoid
	KwTrue
	KwFalse
	KwNull
	KwThis
	KwLet
	KwDo
	KwIf
	KwElse
	KwWhile
	KwReturn
)

var keywordNames = [...]string{
	NoKeyword:     "",
	KwClass:       "class",
	KwConstructor: "constructor",
	KwFunction:    "function",
	KwMethod:      "method",
	KwField:       "field",
	KwStatic:      "static",
	KwVar:         "var",
	KwInt:         "int",
	KwChar:        "char",
	KwBoolean:     "boolean",
	KwVoid:        "void",
	KwTrue:        "true",
	KwFalse:       "false",
	KwNull:        "null",
	KwThis:        "this",
	KwLet:         "let",
	KwDo:          "do",
	KwIf:          "if",
	KwElse:        "else",
	KwWhile:       "while",
	KwReturn:      "return",
}

// keywords maps lower-cased source text to its Keyword.
var keywords = func() map[string]Keyword {
	m := make(map[string]Keyword, len(keywordNames))
	for kw, name := range keywordNames {
		if name != "" {
			m[name] = Keyword(kw)
		}
	}
	return m
}()

func (kw Keyword) String() string {
	if int(kw) >= 0 && int(kw) < len(keywordNames) {
		return keywordNames[kw]
	}
	return fmt.Sprintf("Keyword(%d)", int(kw))
}

// lookupKeyword matches reserved words case-insensitively.
func lookupKeyword(text string) (Keyword, bool) {
	kw, ok := keywords[strings.ToLower(text)]
	return kw, ok
}

// Escaped forms of the symbols that are reserved in tagged output.
const (
	SymLess    = "&lt;"
	SymGreater = "&gt;"
	SymAmp     = "&amp;"
	SymQuote   = "&quot;"
)

// Token is a single lexical unit produced by Lex. Tokens are never mutated.
type Token struct {
	Kind    TokenKind
	Text    string  // symbol text is stored in escaped form
	Keyword Keyword // NoKeyword unless Kind == KEYWORD
	Line    int     // 1-based source line
	Column  int     // 1-based source column
}

func (t Token) String() string {
	return fmt.Sprintf("%-12s %-14q  line %d:%d", t.Kind, t.Text, t.Line, t.Column)
}

// IsSymbol reports whether t is the symbol s (compare escaped forms for < > &).
func (t Token) IsSymbol(s string) bool {
	return t.Kind == SYMBOL && t.Text == s
}

// IsKeyword reports whether t is one of the given keywords.
func (t Token) IsKeyword(kws ...Keyword) bool {
	if t.Kind != KEYWORD {
		return false
	}
	for _, kw := range kws {
		if t.Keyword == kw {
			return true
		}
	}
	return false
}

// describe renders a token for error messages.
func (t Token) describe() string {
	if t.Kind == STRING_CONST {
		return fmt.Sprintf("string %q", t.Text)
	}
	return fmt.Sprintf("%s %q", strings.ToLower(t.Kind.String()), t.Text)
}
