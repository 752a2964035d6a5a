package compiler

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a fatal compilation error.
type ErrorKind int

const (
	// LexicalError: the source could not be split into tokens.
	LexicalError ErrorKind = iota
	// SyntaxError: an expected keyword, symbol or token kind was missing.
	SyntaxError
	// UndefinedError: a variable was used that neither scope declares.
	UndefinedError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case SyntaxError:
		return "syntax error"
	case UndefinedError:
		return "undefined symbol"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned for every fatal condition while compiling one source unit.
// Compilation of that unit stops; nothing partial is returned.
type Error struct {
	Kind    ErrorKind
	File    string // empty when compiling from a string
	Line    int
	Column  int
	Msg     string
	Snippet string // trimmed source line, if known
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.File != "" {
		fmt.Fprintf(&sb, "%s:", e.File)
	}
	fmt.Fprintf(&sb, "line %d:%d: %s: %s", e.Line, e.Column, e.Kind, e.Msg)
	if e.Snippet != "" {
		fmt.Fprintf(&sb, "\n  |> %s", e.Snippet)
	}
	return sb.String()
}

// sourceLines splits src for snippet lookup.
type sourceLines []string

func newSourceLines(src string) sourceLines {
	if src == "" {
		return nil
	}
	return strings.Split(src, "\n")
}

func (s sourceLines) at(line int) string {
	idx := line - 1
	if idx < 0 || idx >= len(s) {
		return ""
	}
	return strings.TrimSpace(s[idx])
}
