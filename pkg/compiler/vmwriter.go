package compiler

import (
	"fmt"
	"strings"
)

// Segment is a storage region of the stack machine.
type Segment int

const (
	SegConstant Segment = iota
	SegArgument
	SegLocal
	SegStatic
	SegThis
	SegThat
	SegPointer
	SegTemp
)

var segmentNames = [...]string{
	SegConstant: "constant",
	SegArgument: "argument",
	SegLocal:    "local",
	SegStatic:   "static",
	SegThis:     "this",
	SegThat:     "that",
	SegPointer:  "pointer",
	SegTemp:     "temp",
}

func (s Segment) String() string {
	if int(s) >= 0 && int(s) < len(segmentNames) {
		return segmentNames[s]
	}
	return fmt.Sprintf("Segment(%d)", int(s))
}

// segmentOf maps a variable kind onto the segment that stores it.
func segmentOf(kind Kind) Segment {
	switch kind {
	case KindField:
		return SegThis
	case KindStatic:
		return SegStatic
	case KindArgument:
		return SegArgument
	case KindLocal:
		return SegLocal
	}
	panic(fmt.Sprintf("no segment for kind %s", kind))
}

// VMWriter accumulates VM instructions. It only encodes; control flow is the
// engine's business. Instructions are never removed or reordered.
type VMWriter struct {
	lines []string
}

func NewVMWriter() *VMWriter {
	return &VMWriter{}
}

func (w *VMWriter) line(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func (w *VMWriter) Push(seg Segment, index int) {
	w.line("push %s %d", seg, index)
}

func (w *VMWriter) Pop(seg Segment, index int) {
	w.line("pop %s %d", seg, index)
}

// PushVar pushes a declared variable; fields go through the this segment.
func (w *VMWriter) PushVar(kind Kind, index int) {
	w.Push(segmentOf(kind), index)
}

func (w *VMWriter) PopVar(kind Kind, index int) {
	w.Pop(segmentOf(kind), index)
}

// binaryOps are the binary operators in escaped token form.
var binaryOps = map[string]string{
	"+":        "add",
	"-":        "sub",
	"=":        "eq",
	SymGreater: "gt",
	SymLess:    "lt",
	SymAmp:     "and",
	"|":        "or",
}

// isBinaryOp reports whether text (escaped form) is a binary operator.
func isBinaryOp(text string) bool {
	if _, ok := binaryOps[text]; ok {
		return true
	}
	return text == "*" || text == "/"
}

// WriteBinaryOp emits op; * and / become runtime calls because the machine
// has no multiplier.
func (w *VMWriter) WriteBinaryOp(op string) {
	switch op {
	case "*":
		w.WriteCall("Math.multiply", 2)
		return
	case "/":
		w.WriteCall("Math.divide", 2)
		return
	}
	cmd, ok := binaryOps[op]
	if !ok {
		panic(fmt.Sprintf("unknown binary operator %q", op))
	}
	w.line("%s", cmd)
}

func isUnaryOp(text string) bool {
	return text == "-" || text == "~"
}

func (w *VMWriter) WriteUnaryOp(op string) {
	switch op {
	case "-":
		w.line("neg")
	case "~":
		w.line("not")
	default:
		panic(fmt.Sprintf("unknown unary operator %q", op))
	}
}

// Negate inverts the boolean on top of the stack.
func (w *VMWriter) Negate() {
	w.line("not")
}

// WriteKeywordConstant pushes true (all bits set), false, null or this.
func (w *VMWriter) WriteKeywordConstant(kw Keyword) {
	switch kw {
	case KwTrue:
		w.Push(SegConstant, 0)
		w.Negate()
	case KwFalse, KwNull:
		w.Push(SegConstant, 0)
	case KwThis:
		w.Push(SegPointer, 0)
	default:
		panic(fmt.Sprintf("%s is not a keyword constant", kw))
	}
}

func (w *VMWriter) WriteLabel(label string) {
	w.line("label %s", label)
}

func (w *VMWriter) WriteGoto(label string) {
	w.line("goto %s", label)
}

func (w *VMWriter) WriteIfGoto(label string) {
	w.line("if-goto %s", label)
}

func (w *VMWriter) WriteCall(name string, nArgs int) {
	w.line("call %s %d", name, nArgs)
}

func (w *VMWriter) WriteFunction(name string, nLocals int) {
	w.line("function %s %d", name, nLocals)
}

func (w *VMWriter) WriteReturn() {
	w.line("return")
}

// WriteString builds a String object at the call site, one appendChar per
// character.
func (w *VMWriter) WriteString(text string) {
	runes := []rune(text)
	w.Push(SegConstant, len(runes))
	w.WriteCall("String.new", 1)
	for _, r := range runes {
		w.Push(SegConstant, int(r))
		w.WriteCall("String.appendChar", 2)
	}
}

// WriteConstructorAlloc allocates nFields words and anchors pointer 0 on them.
func (w *VMWriter) WriteConstructorAlloc(nFields int) {
	w.Push(SegConstant, nFields)
	w.WriteCall("Memory.alloc", 1)
	w.Pop(SegPointer, 0)
}

// Lines returns the instructions emitted so far.
func (w *VMWriter) Lines() []string {
	return w.lines
}

func (w *VMWriter) String() string {
	if len(w.lines) == 0 {
		return ""
	}
	return strings.Join(w.lines, "\n") + "\n"
}
