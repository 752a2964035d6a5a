package vm

import (
	"fmt"
	"path/filepath"
	"strings"
)

// TempBase is the RAM address of temp 0.
const TempBase = 5

// StackBase is where the bootstrap places the stack.
const StackBase = 256

// segmentBases are the segments addressed through a base pointer register.
var segmentBases = map[string]string{
	"local":    "LCL",
	"argument": "ARG",
	"this":     "THIS",
	"that":     "THAT",
}

var binaryAsm = map[string]string{
	"add": "M=D+M",
	"sub": "M=M-D",
	"and": "M=D&M",
	"or":  "M=D|M",
}

var unaryAsm = map[string]string{
	"neg": "M=-M",
	"not": "M=!M",
}

var compareJumps = map[string]string{
	"eq": "JEQ",
	"gt": "JGT",
	"lt": "JLT",
}

// Translator turns VM commands into Hack assembly. One translator may be fed
// several files in turn; label counters run across all of them so generated
// labels stay unique in the combined program.
type Translator struct {
	out      []string
	file     string
	function string
	cmpCount int
	retCount int
}

func NewTranslator() *Translator {
	return &Translator{}
}

func (t *Translator) emit(lines ...string) {
	t.out = append(t.out, lines...)
}

// WriteBootstrap sets SP and calls Sys.init. If Sys.init ever returns, the
// machine parks in a self-loop.
func (t *Translator) WriteBootstrap() {
	t.emit("// bootstrap",
		fmt.Sprintf("@%d", StackBase), "D=A", "@SP", "M=D")
	t.writeCall("Sys.init", 0)
	t.emit("(BOOTSTRAP_END)", "@BOOTSTRAP_END", "0;JMP")
}

// Translate appends the code for one file. fileName names the static
// segment, so Foo.vm's static 3 becomes the symbol Foo.3.
func (t *Translator) Translate(fileName string, cmds []Command) error {
	base := filepath.Base(fileName)
	t.file = strings.TrimSuffix(base, filepath.Ext(base))
	t.function = ""

	for _, cmd := range cmds {
		if err := t.translate(cmd); err != nil {
			return fmt.Errorf("%s: %w", base, err)
		}
	}
	return nil
}

func (t *Translator) translate(cmd Command) error {
	t.emit("// " + cmd.String())
	switch cmd.Type {
	case Arithmetic:
		return t.writeArithmetic(cmd)
	case Push:
		return t.writePush(cmd.Arg1, cmd.Arg2, cmd.Line)
	case Pop:
		return t.writePop(cmd.Arg1, cmd.Arg2, cmd.Line)
	case Label:
		t.emit(fmt.Sprintf("(%s)", t.scoped(cmd.Arg1)))
	case Goto:
		t.emit("@"+t.scoped(cmd.Arg1), "0;JMP")
	case IfGoto:
		// any non-zero value is true
		t.popD()
		t.emit("@"+t.scoped(cmd.Arg1), "D;JNE")
	case Function:
		t.function = cmd.Arg1
		t.emit(fmt.Sprintf("(%s)", cmd.Arg1))
		for i := 0; i < cmd.Arg2; i++ {
			t.emit("@SP", "A=M", "M=0", "@SP", "M=M+1")
		}
	case Call:
		t.writeCall(cmd.Arg1, cmd.Arg2)
	case Return:
		t.writeReturn()
	default:
		return fmt.Errorf("unknown command type %v on line %d", cmd.Type, cmd.Line)
	}
	return nil
}

// scoped qualifies a label with its enclosing function.
func (t *Translator) scoped(label string) string {
	if t.function == "" {
		return label
	}
	return t.function + "$" + label
}

// pushD pushes the D register.
func (t *Translator) pushD() {
	t.emit("@SP", "A=M", "M=D", "@SP", "M=M+1")
}

// popD pops into the D register.
func (t *Translator) popD() {
	t.emit("@SP", "AM=M-1", "D=M")
}

func (t *Translator) writeArithmetic(cmd Command) error {
	op := cmd.Arg1
	if asm, ok := binaryAsm[op]; ok {
		t.popD()
		t.emit("A=A-1", asm)
		return nil
	}
	if asm, ok := unaryAsm[op]; ok {
		t.emit("@SP", "A=M-1", asm)
		return nil
	}
	if jump, ok := compareJumps[op]; ok {
		label := fmt.Sprintf("%s$CMP.%d", t.file, t.cmpCount)
		t.cmpCount++
		t.popD()
		t.emit("A=A-1", "D=M-D", "M=-1",
			"@"+label, "D;"+jump,
			"@SP", "A=M-1", "M=0",
			"("+label+")")
		return nil
	}
	return fmt.Errorf("unknown arithmetic command '%s' on line %d", op, cmd.Line)
}

// address returns the A-instruction operand for the direct segments.
func (t *Translator) address(seg string, idx int) (string, bool) {
	switch seg {
	case "temp":
		return fmt.Sprintf("R%d", TempBase+idx), true
	case "pointer":
		if idx == 0 {
			return "THIS", true
		}
		return "THAT", true
	case "static":
		return fmt.Sprintf("%s.%d", t.file, idx), true
	}
	return "", false
}

func (t *Translator) writePush(seg string, idx, lineNo int) error {
	if seg == "constant" {
		t.emit(fmt.Sprintf("@%d", idx), "D=A")
		t.pushD()
		return nil
	}
	if reg, ok := segmentBases[seg]; ok {
		t.emit(fmt.Sprintf("@%d", idx), "D=A", "@"+reg, "A=D+M", "D=M")
		t.pushD()
		return nil
	}
	if addr, ok := t.address(seg, idx); ok {
		t.emit("@"+addr, "D=M")
		t.pushD()
		return nil
	}
	return fmt.Errorf("unknown segment '%s' on line %d", seg, lineNo)
}

func (t *Translator) writePop(seg string, idx, lineNo int) error {
	if reg, ok := segmentBases[seg]; ok {
		t.emit(fmt.Sprintf("@%d", idx), "D=A", "@"+reg, "D=D+M", "@R13", "M=D")
		t.popD()
		t.emit("@R13", "A=M", "M=D")
		return nil
	}
	if addr, ok := t.address(seg, idx); ok {
		t.popD()
		t.emit("@"+addr, "M=D")
		return nil
	}
	return fmt.Errorf("cannot pop to segment '%s' on line %d", seg, lineNo)
}

// writeCall pushes the return address and the caller's frame, repositions
// ARG and LCL, and jumps.
func (t *Translator) writeCall(name string, nArgs int) {
	owner := t.function
	if owner == "" {
		owner = "BOOTSTRAP"
	}
	ret := fmt.Sprintf("%s$ret.%d", owner, t.retCount)
	t.retCount++

	t.emit("@"+ret, "D=A")
	t.pushD()
	for _, reg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		t.emit("@"+reg, "D=M")
		t.pushD()
	}
	t.emit("@SP", "D=M", fmt.Sprintf("@%d", nArgs+5), "D=D-A", "@ARG", "M=D")
	t.emit("@SP", "D=M", "@LCL", "M=D")
	t.emit("@"+name, "0;JMP")
	t.emit("(" + ret + ")")
}

// writeReturn uses R13 for the frame pointer and R14 for the return address,
// which must be saved before the return value overwrites argument 0.
func (t *Translator) writeReturn() {
	t.emit("@LCL", "D=M", "@R13", "M=D")
	t.emit("@5", "A=D-A", "D=M", "@R14", "M=D")
	t.popD()
	t.emit("@ARG", "A=M", "M=D")
	t.emit("@ARG", "D=M+1", "@SP", "M=D")
	for _, reg := range []string{"THAT", "THIS", "ARG", "LCL"} {
		t.emit("@R13", "AM=M-1", "D=M", "@"+reg, "M=D")
	}
	t.emit("@R14", "A=M", "0;JMP")
}

// Lines returns the assembly emitted so far.
func (t *Translator) Lines() []string {
	return t.out
}

func (t *Translator) String() string {
	if len(t.out) == 0 {
		return ""
	}
	return strings.Join(t.out, "\n") + "\n"
}

// Source is one named VM file.
type Source struct {
	Name string
	Text string
}

// TranslateSources parses and translates every source in order into one
// assembly program. With bootstrap set, the program starts by calling
// Sys.init.
func TranslateSources(sources []Source, bootstrap bool) (string, error) {
	t := NewTranslator()
	if bootstrap {
		t.WriteBootstrap()
	}
	for _, src := range sources {
		cmds, err := Parse(src.Text)
		if err != nil {
			return "", fmt.Errorf("%s: %w", src.Name, err)
		}
		if err := t.Translate(src.Name, cmds); err != nil {
			return "", err
		}
	}
	return t.String(), nil
}

// DefinesFunction reports whether any source declares the named function.
func DefinesFunction(sources []Source, name string) bool {
	for _, src := range sources {
		cmds, err := Parse(src.Text)
		if err != nil {
			continue
		}
		for _, cmd := range cmds {
			if cmd.Type == Function && cmd.Arg1 == name {
				return true
			}
		}
	}
	return false
}
