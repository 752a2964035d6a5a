package compiler

import (
	"errors"
	"os"
	"path/filepath"
)

// Compile lexes and compiles one class. Errors are *Error values.
func Compile(src string, opts ...Option) (string, error) {
	out, _, err := compileUnit(src, opts...)
	return out, err
}

// CompileFile compiles the class stored at path; errors name the file.
func CompileFile(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Compile(string(src), WithFileName(filepath.Base(path)))
}

// CompileWithSymbols is Compile that also hands back the symbol table, whose
// class scope is complete once compilation succeeds.
func CompileWithSymbols(src string, opts ...Option) (string, *SymbolTable, error) {
	return compileUnit(src, opts...)
}

func compileUnit(src string, opts ...Option) (string, *SymbolTable, error) {
	engine := NewEngine(nil, append([]Option{WithSource(src)}, opts...)...)

	tokens, err := Lex(src)
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			cerr.File = engine.file
		}
		return "", nil, err
	}

	engine.ts = NewTokenStream(tokens)
	out, err := engine.CompileClass()
	if err != nil {
		return "", nil, err
	}
	return out, engine.Symbols(), nil
}
