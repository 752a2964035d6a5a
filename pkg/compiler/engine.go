package compiler

import (
	"fmt"
	"strconv"
)

// Engine is a single-pass recursive-descent translator for one class.
// Every grammar rule is a method that consumes exactly its own tokens and
// emits VM code through the writer as it goes; there is no syntax tree.
//
// Grammar:
//
//	class          = "class" ident "{" classVarDec* subroutineDec* "}"
//	classVarDec    = ("static" | "field") type ident ("," ident)* ";"
//	subroutineDec  = ("constructor" | "function" | "method") ("void" | type) ident
//	                 "(" parameterList ")" subroutineBody
//	parameterList  = (type ident ("," type ident)*)?
//	subroutineBody = "{" varDec* statement* "}"
//	varDec         = "var" type ident ("," ident)* ";"
//	statement      = let | if | while | do | return
//	expression     = term (op term)*          -- strictly left to right
//	term           = int | string | keywordConst | ident | ident "[" expression "]"
//	               | subroutineCall | "(" expression ")" | unaryOp term
type Engine struct {
	ts   *TokenStream
	syms *SymbolTable
	w    *VMWriter

	className  string
	ifCount    int
	whileCount int

	file  string
	lines sourceLines
}

// Option configures an Engine.
type Option func(*Engine)

// WithFileName names the source file in error messages.
func WithFileName(name string) Option {
	return func(e *Engine) { e.file = name }
}

// WithSource lets errors quote the offending source line.
func WithSource(src string) Option {
	return func(e *Engine) { e.lines = newSourceLines(src) }
}

func NewEngine(ts *TokenStream, opts ...Option) *Engine {
	e := &Engine{
		ts:   ts,
		syms: NewSymbolTable(),
		w:    NewVMWriter(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Symbols exposes the table, mainly so tools can dump the class scope.
func (e *Engine) Symbols() *SymbolTable { return e.syms }

// ClassName is empty until the class header has been compiled.
func (e *Engine) ClassName() string { return e.className }

// ---------------------------------------------------------------------------
// token helpers

func (e *Engine) errorAt(tok Token, kind ErrorKind, format string, args ...any) error {
	return &Error{
		Kind:    kind,
		File:    e.file,
		Line:    tok.Line,
		Column:  tok.Column,
		Msg:     fmt.Sprintf(format, args...),
		Snippet: e.lines.at(tok.Line),
	}
}

// errorEOF reports running out of tokens, positioned at the last token seen.
func (e *Engine) errorEOF(want string) error {
	return e.errorAt(e.ts.last(), SyntaxError, "expected %s, got end of input", want)
}

func (e *Engine) nextIsSymbol(s string) bool {
	return e.ts.HasMore() && e.ts.Peek().IsSymbol(s)
}

func (e *Engine) nextIsKeyword(kws ...Keyword) bool {
	return e.ts.HasMore() && e.ts.Peek().IsKeyword(kws...)
}

func (e *Engine) expectSymbol(s string) (Token, error) {
	if !e.ts.HasMore() {
		return Token{}, e.errorEOF(strconv.Quote(s))
	}
	tok := e.ts.Advance()
	if !tok.IsSymbol(s) {
		return tok, e.errorAt(tok, SyntaxError, "expected %q, got %s", s, tok.describe())
	}
	return tok, nil
}

func (e *Engine) expectKeyword(kws ...Keyword) (Token, error) {
	want := fmt.Sprintf("keyword %v", kws)
	if len(kws) == 1 {
		want = fmt.Sprintf("keyword %q", kws[0])
	}
	if !e.ts.HasMore() {
		return Token{}, e.errorEOF(want)
	}
	tok := e.ts.Advance()
	if !tok.IsKeyword(kws...) {
		return tok, e.errorAt(tok, SyntaxError, "expected %s, got %s", want, tok.describe())
	}
	return tok, nil
}

func (e *Engine) expectIdentifier(what string) (Token, error) {
	if !e.ts.HasMore() {
		return Token{}, e.errorEOF(what)
	}
	tok := e.ts.Advance()
	if tok.Kind != IDENTIFIER {
		return tok, e.errorAt(tok, SyntaxError, "expected %s, got %s", what, tok.describe())
	}
	return tok, nil
}

// expectType accepts int, char, boolean or a class name, plus void for
// return types.
func (e *Engine) expectType(allowVoid bool) (string, error) {
	if !e.ts.HasMore() {
		return "", e.errorEOF("type")
	}
	tok := e.ts.Advance()
	switch {
	case tok.IsKeyword(KwInt, KwChar, KwBoolean):
		return tok.Keyword.String(), nil
	case allowVoid && tok.IsKeyword(KwVoid):
		return tok.Keyword.String(), nil
	case tok.Kind == IDENTIFIER:
		return tok.Text, nil
	}
	return "", e.errorAt(tok, SyntaxError, "expected type, got %s", tok.describe())
}

// resolve looks up a variable that code is about to be emitted for.
func (e *Engine) resolve(tok Token) (Symbol, error) {
	sym, ok := e.syms.Lookup(tok.Text)
	if !ok {
		return Symbol{}, e.errorAt(tok, UndefinedError, "undefined variable %q", tok.Text)
	}
	return sym, nil
}

// ---------------------------------------------------------------------------
// program structure

// CompileClass compiles the whole token stream as one class and returns the
// VM code, one instruction per line.
func (e *Engine) CompileClass() (string, error) {
	if _, err := e.expectKeyword(KwClass); err != nil {
		return "", err
	}
	name, err := e.expectIdentifier("class name")
	if err != nil {
		return "", err
	}
	e.className = name.Text
	if _, err := e.expectSymbol("{"); err != nil {
		return "", err
	}

	for e.nextIsKeyword(KwStatic, KwField) {
		if err := e.compileClassVarDec(); err != nil {
			return "", err
		}
	}
	for e.nextIsKeyword(KwConstructor, KwFunction, KwMethod) {
		if err := e.compileSubroutineDec(); err != nil {
			return "", err
		}
	}

	if _, err := e.expectSymbol("}"); err != nil {
		return "", err
	}
	if e.ts.HasMore() {
		tok := e.ts.Peek()
		return "", e.errorAt(tok, SyntaxError, "unexpected %s after end of class", tok.describe())
	}
	return e.w.String(), nil
}

func (e *Engine) compileClassVarDec() error {
	kindTok := e.ts.Advance()
	kind := KindField
	if kindTok.Keyword == KwStatic {
		kind = KindStatic
	}
	typ, err := e.expectType(false)
	if err != nil {
		return err
	}
	for {
		name, err := e.expectIdentifier("variable name")
		if err != nil {
			return err
		}
		e.syms.DefineClassVar(name.Text, typ, kind)
		if !e.nextIsSymbol(",") {
			break
		}
		e.ts.Advance()
	}
	_, err = e.expectSymbol(";")
	return err
}

func (e *Engine) compileSubroutineDec() error {
	kind := e.ts.Advance().Keyword
	if _, err := e.expectType(true); err != nil {
		return err
	}
	name, err := e.expectIdentifier("subroutine name")
	if err != nil {
		return err
	}
	if _, err := e.expectSymbol("("); err != nil {
		return err
	}

	e.syms.StartSubroutine()
	if kind == KwMethod {
		// argument 0 carries the receiver
		e.syms.ReserveSlot(KindArgument)
	}
	if err := e.compileParameterList(); err != nil {
		return err
	}
	if _, err := e.expectSymbol(")"); err != nil {
		return err
	}
	return e.compileSubroutineBody(name.Text, kind)
}

func (e *Engine) compileParameterList() error {
	if e.nextIsSymbol(")") {
		return nil
	}
	for {
		typ, err := e.expectType(false)
		if err != nil {
			return err
		}
		name, err := e.expectIdentifier("parameter name")
		if err != nil {
			return err
		}
		e.syms.DefineSubroutineVar(name.Text, typ, KindArgument)
		if !e.nextIsSymbol(",") {
			return nil
		}
		e.ts.Advance()
	}
}

func (e *Engine) compileSubroutineBody(name string, kind Keyword) error {
	if _, err := e.expectSymbol("{"); err != nil {
		return err
	}
	for e.nextIsKeyword(KwVar) {
		if err := e.compileVarDec(); err != nil {
			return err
		}
	}

	e.w.WriteFunction(e.className+"."+name, e.syms.VarCount(KindLocal))
	switch kind {
	case KwConstructor:
		e.w.WriteConstructorAlloc(e.syms.VarCount(KindField))
	case KwMethod:
		e.w.Push(SegArgument, 0)
		e.w.Pop(SegPointer, 0)
	case KwFunction:
	}

	if err := e.compileStatements(); err != nil {
		return err
	}
	_, err := e.expectSymbol("}")
	return err
}

func (e *Engine) compileVarDec() error {
	e.ts.Advance() // var
	typ, err := e.expectType(false)
	if err != nil {
		return err
	}
	for {
		name, err := e.expectIdentifier("variable name")
		if err != nil {
			return err
		}
		e.syms.DefineSubroutineVar(name.Text, typ, KindLocal)
		if !e.nextIsSymbol(",") {
			break
		}
		e.ts.Advance()
	}
	_, err = e.expectSymbol(";")
	return err
}

// ---------------------------------------------------------------------------
// statements

// compileStatements stops at the first token that does not start a statement.
func (e *Engine) compileStatements() error {
	for e.nextIsKeyword(KwLet, KwIf, KwWhile, KwDo, KwReturn) {
		var err error
		switch e.ts.Peek().Keyword {
		case KwLet:
			err = e.compileLet()
		case KwIf:
			err = e.compileIf()
		case KwWhile:
			err = e.compileWhile()
		case KwDo:
			err = e.compileDo()
		case KwReturn:
			err = e.compileReturn()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) compileLet() error {
	e.ts.Advance() // let
	target, err := e.expectIdentifier("variable name")
	if err != nil {
		return err
	}
	sym, err := e.resolve(target)
	if err != nil {
		return err
	}

	indexed := e.nextIsSymbol("[")
	if indexed {
		e.ts.Advance()
		e.w.PushVar(sym.Kind, sym.Index)
		if err := e.compileExpression(); err != nil {
			return err
		}
		e.w.WriteBinaryOp("+")
		if _, err := e.expectSymbol("]"); err != nil {
			return err
		}
	}

	if _, err := e.expectSymbol("="); err != nil {
		return err
	}
	if err := e.compileExpression(); err != nil {
		return err
	}

	if indexed {
		// value on top, element address below it
		e.w.Pop(SegTemp, 0)
		e.w.Pop(SegPointer, 1)
		e.w.Push(SegTemp, 0)
		e.w.Pop(SegThat, 0)
	} else {
		e.w.PopVar(sym.Kind, sym.Index)
	}
	_, err = e.expectSymbol(";")
	return err
}

func (e *Engine) compileIf() error {
	e.ts.Advance() // if
	if _, err := e.expectSymbol("("); err != nil {
		return err
	}
	if err := e.compileExpression(); err != nil {
		return err
	}
	e.w.Negate()

	n := e.ifCount
	e.ifCount++
	notTrue := fmt.Sprintf("%s_IF_NOT_TRUE_%d", e.className, n)
	end := fmt.Sprintf("%s_IF_END_%d", e.className, n)
	e.w.WriteIfGoto(notTrue)

	if _, err := e.expectSymbol(")"); err != nil {
		return err
	}
	if err := e.compileBlock(); err != nil {
		return err
	}
	e.w.WriteGoto(end)

	e.w.WriteLabel(notTrue)
	if e.nextIsKeyword(KwElse) {
		e.ts.Advance()
		if err := e.compileBlock(); err != nil {
			return err
		}
	}
	e.w.WriteLabel(end)
	return nil
}

func (e *Engine) compileWhile() error {
	e.ts.Advance() // while
	n := e.whileCount
	e.whileCount++
	begin := fmt.Sprintf("%s_WHILE_LOOP_BEGIN_%d", e.className, n)
	end := fmt.Sprintf("%s_WHILE_LOOP_END_%d", e.className, n)
	e.w.WriteLabel(begin)

	if _, err := e.expectSymbol("("); err != nil {
		return err
	}
	if err := e.compileExpression(); err != nil {
		return err
	}
	e.w.Negate()
	if _, err := e.expectSymbol(")"); err != nil {
		return err
	}
	e.w.WriteIfGoto(end)

	if err := e.compileBlock(); err != nil {
		return err
	}
	e.w.WriteGoto(begin)
	e.w.WriteLabel(end)
	return nil
}

// compileBlock compiles "{" statements "}".
func (e *Engine) compileBlock() error {
	if _, err := e.expectSymbol("{"); err != nil {
		return err
	}
	if err := e.compileStatements(); err != nil {
		return err
	}
	_, err := e.expectSymbol("}")
	return err
}

func (e *Engine) compileDo() error {
	e.ts.Advance() // do
	if err := e.compileSubroutineCall(); err != nil {
		return err
	}
	if _, err := e.expectSymbol(";"); err != nil {
		return err
	}
	// every call leaves a value behind
	e.w.Pop(SegTemp, 0)
	return nil
}

func (e *Engine) compileReturn() error {
	e.ts.Advance() // return
	if e.nextIsSymbol(";") {
		e.w.Push(SegConstant, 0)
	} else if err := e.compileExpression(); err != nil {
		return err
	}
	if _, err := e.expectSymbol(";"); err != nil {
		return err
	}
	e.w.WriteReturn()
	return nil
}

// ---------------------------------------------------------------------------
// expressions

// compileExpression applies each operator to the running result as soon as
// its right operand is compiled. There is no precedence: 1+2*3 is (1+2)*3.
func (e *Engine) compileExpression() error {
	if err := e.compileTerm(); err != nil {
		return err
	}
	for e.ts.HasMore() {
		op := e.ts.Peek()
		if op.Kind != SYMBOL || !isBinaryOp(op.Text) {
			break
		}
		e.ts.Advance()
		if err := e.compileTerm(); err != nil {
			return err
		}
		e.w.WriteBinaryOp(op.Text)
	}
	return nil
}

func (e *Engine) compileTerm() error {
	if !e.ts.HasMore() {
		return e.errorEOF("term")
	}
	tok := e.ts.Advance()

	switch tok.Kind {
	case INT_CONST:
		n, err := strconv.Atoi(tok.Text)
		if err != nil {
			return e.errorAt(tok, LexicalError, "invalid integer constant %q", tok.Text)
		}
		e.w.Push(SegConstant, n)
		return nil

	case STRING_CONST:
		e.w.WriteString(tok.Text)
		return nil

	case KEYWORD:
		if tok.IsKeyword(KwTrue, KwFalse, KwNull, KwThis) {
			e.w.WriteKeywordConstant(tok.Keyword)
			return nil
		}

	case SYMBOL:
		if tok.Text == "(" {
			if err := e.compileExpression(); err != nil {
				return err
			}
			_, err := e.expectSymbol(")")
			return err
		}
		if isUnaryOp(tok.Text) {
			if err := e.compileTerm(); err != nil {
				return err
			}
			e.w.WriteUnaryOp(tok.Text)
			return nil
		}

	case IDENTIFIER:
		switch {
		case e.nextIsSymbol("["):
			return e.compileArrayRead(tok)
		case e.nextIsSymbol(".") || e.nextIsSymbol("("):
			e.ts.Backward()
			return e.compileSubroutineCall()
		}
		sym, err := e.resolve(tok)
		if err != nil {
			return err
		}
		e.w.PushVar(sym.Kind, sym.Index)
		return nil
	}

	return e.errorAt(tok, SyntaxError, "expected term, got %s", tok.describe())
}

// compileArrayRead handles name[expr] with name already consumed.
func (e *Engine) compileArrayRead(name Token) error {
	sym, err := e.resolve(name)
	if err != nil {
		return err
	}
	e.ts.Advance() // [
	e.w.PushVar(sym.Kind, sym.Index)
	if err := e.compileExpression(); err != nil {
		return err
	}
	e.w.WriteBinaryOp("+")
	e.w.Pop(SegPointer, 1)
	e.w.Push(SegThat, 0)
	_, err = e.expectSymbol("]")
	return err
}

// compileSubroutineCall handles the three call shapes:
//
//	obj.method(args)  obj is a variable: push it, call Type.method n+1
//	Class.sub(args)   not a variable: call Class.sub n
//	sub(args)         same object: push pointer 0, call ThisClass.sub n+1
func (e *Engine) compileSubroutineCall() error {
	if e.ts.Remaining() < 2 {
		return e.errorEOF("subroutine call")
	}
	ahead := e.ts.PeekN(2)
	first, err := e.expectIdentifier("subroutine or variable name")
	if err != nil {
		return err
	}

	var callee string
	implicit := 0
	switch {
	case ahead[1].IsSymbol("."):
		e.ts.Advance() // .
		if sym, ok := e.syms.Lookup(first.Text); ok {
			e.w.PushVar(sym.Kind, sym.Index)
			callee = sym.Type
			implicit = 1
		} else {
			callee = first.Text
		}
		routine, err := e.expectIdentifier("subroutine name")
		if err != nil {
			return err
		}
		callee += "." + routine.Text

	case ahead[1].IsSymbol("("):
		e.w.Push(SegPointer, 0)
		callee = e.className + "." + first.Text
		implicit = 1

	default:
		return e.errorAt(ahead[1], SyntaxError, "expected \".\" or \"(\" after %q, got %s", first.Text, ahead[1].describe())
	}

	if _, err := e.expectSymbol("("); err != nil {
		return err
	}
	nArgs, err := e.compileExpressionList()
	if err != nil {
		return err
	}
	if _, err := e.expectSymbol(")"); err != nil {
		return err
	}
	e.w.WriteCall(callee, nArgs+implicit)
	return nil
}

// compileExpressionList returns how many expressions it compiled.
func (e *Engine) compileExpressionList() (int, error) {
	if e.nextIsSymbol(")") {
		return 0, nil
	}
	n := 0
	for {
		if err := e.compileExpression(); err != nil {
			return n, err
		}
		n++
		if !e.nextIsSymbol(",") {
			return n, nil
		}
		e.ts.Advance()
	}
}
