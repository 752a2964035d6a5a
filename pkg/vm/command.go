package vm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// CommandType is the closed set of VM command shapes.
type CommandType int

const (
	Arithmetic CommandType = iota
	Push
	Pop
	Label
	Goto
	IfGoto
	Function
	Call
	Return
)

var commandNames = [...]string{
	Arithmetic: "arithmetic",
	Push:       "push",
	Pop:        "pop",
	Label:      "label",
	Goto:       "goto",
	IfGoto:     "if-goto",
	Function:   "function",
	Call:       "call",
	Return:     "return",
}

func (c CommandType) String() string {
	if int(c) >= 0 && int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("CommandType(%d)", int(c))
}

// Command is one parsed VM instruction.
//
// Arg1 holds the operator for Arithmetic, the segment for Push/Pop, the label
// for Label/Goto/IfGoto and the function name for Function/Call. Arg2 holds
// the index, local count or argument count.
type Command struct {
	Type CommandType
	Arg1 string
	Arg2 int
	Line int
}

func (c Command) String() string {
	switch c.Type {
	case Arithmetic:
		return c.Arg1
	case Return:
		return "return"
	case Push, Pop, Function, Call:
		return fmt.Sprintf("%s %s %d", c.Type, c.Arg1, c.Arg2)
	}
	return fmt.Sprintf("%s %s", c.Type, c.Arg1)
}

var arithmeticOps = map[string]bool{
	"add": true, "sub": true, "neg": true,
	"eq": true, "gt": true, "lt": true,
	"and": true, "or": true, "not": true,
}

// segmentLimits caps the index of each segment; 0 means unbounded.
var segmentLimits = map[string]int{
	"constant": 32767,
	"argument": 0,
	"local":    0,
	"static":   239,
	"this":     0,
	"that":     0,
	"pointer":  1,
	"temp":     7,
}

// Parse reads VM source text. Comments (//) and blank lines are dropped.
func Parse(src string) ([]Command, error) {
	var cmds []Command
	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1
		cmd, ok, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, err
		}
		if ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds, nil
}

func parseLine(raw string, lineNo int) (Command, bool, error) {
	line := stripComment(raw)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false, nil
	}

	cmd := Command{Line: lineNo}
	op := fields[0]
	args := fields[1:]

	if arithmeticOps[op] {
		if len(args) != 0 {
			return cmd, false, fmt.Errorf("%s expects 0 operands on line %d", op, lineNo)
		}
		cmd.Type = Arithmetic
		cmd.Arg1 = op
		return cmd, true, nil
	}

	switch op {
	case "push", "pop":
		if len(args) != 2 {
			return cmd, false, fmt.Errorf("%s expects 2 operands on line %d", op, lineNo)
		}
		cmd.Type = Push
		if op == "pop" {
			cmd.Type = Pop
		}
		seg := args[0]
		limit, ok := segmentLimits[seg]
		if !ok {
			return cmd, false, fmt.Errorf("unknown segment '%s' on line %d", seg, lineNo)
		}
		if cmd.Type == Pop && seg == "constant" {
			return cmd, false, fmt.Errorf("cannot pop to constant on line %d", lineNo)
		}
		idx, err := parseCount(args[1], lineNo)
		if err != nil {
			return cmd, false, err
		}
		if limit > 0 && idx > limit {
			return cmd, false, fmt.Errorf("%s index %d out of range on line %d", seg, idx, lineNo)
		}
		cmd.Arg1, cmd.Arg2 = seg, idx

	case "label", "goto", "if-goto":
		if len(args) != 1 {
			return cmd, false, fmt.Errorf("%s expects 1 operand on line %d", op, lineNo)
		}
		if !isSymbol(args[0]) {
			return cmd, false, fmt.Errorf("invalid label '%s' on line %d", args[0], lineNo)
		}
		cmd.Type = map[string]CommandType{"label": Label, "goto": Goto, "if-goto": IfGoto}[op]
		cmd.Arg1 = args[0]

	case "function", "call":
		if len(args) != 2 {
			return cmd, false, fmt.Errorf("%s expects 2 operands on line %d", op, lineNo)
		}
		if !isSymbol(args[0]) {
			return cmd, false, fmt.Errorf("invalid function name '%s' on line %d", args[0], lineNo)
		}
		n, err := parseCount(args[1], lineNo)
		if err != nil {
			return cmd, false, err
		}
		cmd.Type = Function
		if op == "call" {
			cmd.Type = Call
		}
		cmd.Arg1, cmd.Arg2 = args[0], n

	case "return":
		if len(args) != 0 {
			return cmd, false, fmt.Errorf("return expects 0 operands on line %d", lineNo)
		}
		cmd.Type = Return

	default:
		return cmd, false, fmt.Errorf("unknown command on line %d: %s", lineNo, op)
	}
	return cmd, true, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

func parseCount(token string, lineNo int) (int, error) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid number '%s' on line %d", token, lineNo)
	}
	return n, nil
}

// isSymbol accepts the label alphabet shared with the assembler: letters,
// digits, and _ . $ : not starting with a digit.
func isSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && unicode.IsDigit(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("_.$:", r) {
			return false
		}
	}
	return true
}
