package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	// MaxProgram is the ROM size in words.
	MaxProgram = 32768
	// MaxConstant is the largest value an A-instruction can load.
	MaxConstant = 32767
	// VariableBase is the RAM address of the first allocated variable.
	VariableBase = 16
)

// predefined symbols of the Hack platform.
var predefined = map[string]uint16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"SCREEN": 16384,
	"KBD":    24576,
}

func init() {
	for i := 0; i < 16; i++ {
		predefined[fmt.Sprintf("R%d", i)] = uint16(i)
	}
}

// compTable maps a computation to its a-bit and six c-bits.
var compTable = map[string]uint16{
	"0":   0b0101010,
	"1":   0b0111111,
	"-1":  0b0111010,
	"D":   0b0001100,
	"A":   0b0110000,
	"!D":  0b0001101,
	"!A":  0b0110001,
	"-D":  0b0001111,
	"-A":  0b0110011,
	"D+1": 0b0011111,
	"A+1": 0b0110111,
	"D-1": 0b0001110,
	"A-1": 0b0110010,
	"D+A": 0b0000010,
	"D-A": 0b0010011,
	"A-D": 0b0000111,
	"D&A": 0b0000000,
	"D|A": 0b0010101,
	"M":   0b1110000,
	"!M":  0b1110001,
	"-M":  0b1110011,
	"M+1": 0b1110111,
	"M-1": 0b1110010,
	"D+M": 0b1000010,
	"D-M": 0b1010011,
	"M-D": 0b1000111,
	"D&M": 0b1000000,
	"D|M": 0b1010101,

	// commuted spellings
	"1+D": 0b0011111,
	"1+A": 0b0110111,
	"A+D": 0b0000010,
	"A&D": 0b0000000,
	"A|D": 0b0010101,
	"1+M": 0b1110111,
	"M+D": 0b1000010,
	"M&D": 0b1000000,
	"M|D": 0b1010101,
}

var jumpTable = map[string]uint16{
	"":    0b000,
	"JGT": 0b001,
	"JEQ": 0b010,
	"JGE": 0b011,
	"JLT": 0b100,
	"JNE": 0b101,
	"JLE": 0b110,
	"JMP": 0b111,
}

type lineKind int

const (
	lineEmpty lineKind = iota
	lineLabel
	lineA
	lineC
)

type Assembler struct {
	symbols map[string]uint16
	nextVar uint16
}

type parsedLine struct {
	lineNo int
	kind   lineKind
	symbol string // label name or A-instruction operand
	dest   string
	comp   string
	jump   string
}

func NewAssembler() *Assembler {
	a := &Assembler{
		symbols: make(map[string]uint16, len(predefined)),
		nextVar: VariableBase,
	}
	for k, v := range predefined {
		a.symbols[k] = v
	}
	return a
}

// Assemble translates Hack assembly into machine words. The returned map
// takes a ROM address to the 1-based source line it came from.
func Assemble(code string) ([]uint16, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]uint16, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	parsed := make([]parsedLine, 0, len(lines))
	for i, raw := range lines {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, nil, err
		}
		if p.kind != lineEmpty {
			parsed = append(parsed, p)
		}
	}

	if err := a.pass1(parsed); err != nil {
		return nil, nil, err
	}
	return a.pass2(parsed)
}

// pass1 binds every (LABEL) to the address of the next instruction.
func (a *Assembler) pass1(lines []parsedLine) error {
	var address int
	labels := make(map[string]bool)

	for _, p := range lines {
		if p.kind != lineLabel {
			address++
			if address > MaxProgram {
				return fmt.Errorf("program too large near line %d", p.lineNo)
			}
			continue
		}
		if _, ok := predefined[p.symbol]; ok {
			return fmt.Errorf("label '%s' on line %d redefines a predefined symbol", p.symbol, p.lineNo)
		}
		if labels[p.symbol] {
			return fmt.Errorf("duplicate label '%s' on line %d", p.symbol, p.lineNo)
		}
		labels[p.symbol] = true
		a.symbols[p.symbol] = uint16(address)
	}
	return nil
}

func (a *Assembler) pass2(lines []parsedLine) ([]uint16, map[uint16]int, error) {
	program := make([]uint16, 0, len(lines))
	sourceMap := make(map[uint16]int)

	for _, p := range lines {
		switch p.kind {
		case lineLabel:
			continue

		case lineA:
			sourceMap[uint16(len(program))] = p.lineNo
			value, err := a.resolve(p.symbol, p.lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, value)

		case lineC:
			sourceMap[uint16(len(program))] = p.lineNo
			instr, err := encodeC(p)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, instr)
		}
	}

	return program, sourceMap, nil
}

// resolve returns the value of an A-instruction operand, allocating a new
// variable for unseen symbols.
func (a *Assembler) resolve(operand string, lineNo int) (uint16, error) {
	if unicode.IsDigit(rune(operand[0])) {
		value, err := strconv.ParseUint(operand, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid constant on line %d: %s", lineNo, operand)
		}
		if value > MaxConstant {
			return 0, fmt.Errorf("constant out of range on line %d: %s", lineNo, operand)
		}
		return uint16(value), nil
	}

	if addr, ok := a.symbols[operand]; ok {
		return addr, nil
	}
	if a.nextVar >= predefined["SCREEN"] {
		return 0, fmt.Errorf("out of variable space at '%s' on line %d", operand, lineNo)
	}
	addr := a.nextVar
	a.symbols[operand] = addr
	a.nextVar++
	return addr, nil
}

func encodeC(p parsedLine) (uint16, error) {
	comp, ok := compTable[p.comp]
	if !ok {
		return 0, fmt.Errorf("unknown comp '%s' on line %d", p.comp, p.lineNo)
	}
	dest, err := encodeDest(p.dest, p.lineNo)
	if err != nil {
		return 0, err
	}
	jump, ok := jumpTable[p.jump]
	if !ok {
		return 0, fmt.Errorf("unknown jump '%s' on line %d", p.jump, p.lineNo)
	}
	return 0b111<<13 | comp<<6 | dest<<3 | jump, nil
}

// encodeDest accepts the registers in any order, each at most once.
func encodeDest(dest string, lineNo int) (uint16, error) {
	var bits uint16
	for _, r := range dest {
		var bit uint16
		switch r {
		case 'A':
			bit = 0b100
		case 'D':
			bit = 0b010
		case 'M':
			bit = 0b001
		default:
			return 0, fmt.Errorf("unknown dest '%s' on line %d", dest, lineNo)
		}
		if bits&bit != 0 {
			return 0, fmt.Errorf("unknown dest '%s' on line %d", dest, lineNo)
		}
		bits |= bit
	}
	return bits, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := stripComments(raw)
	line = strings.Join(strings.Fields(line), "")
	if line == "" {
		return p, nil
	}

	switch {
	case strings.HasPrefix(line, "("):
		if !strings.HasSuffix(line, ")") {
			return p, fmt.Errorf("invalid label on line %d", lineNo)
		}
		name := line[1 : len(line)-1]
		if !isIdentifier(name) {
			return p, fmt.Errorf("invalid label '%s' on line %d", name, lineNo)
		}
		p.kind = lineLabel
		p.symbol = name

	case strings.HasPrefix(line, "@"):
		operand := line[1:]
		if operand == "" {
			return p, fmt.Errorf("missing operand on line %d", lineNo)
		}
		if !unicode.IsDigit(rune(operand[0])) && !isIdentifier(operand) {
			return p, fmt.Errorf("invalid symbol '%s' on line %d", operand, lineNo)
		}
		p.kind = lineA
		p.symbol = operand

	default:
		p.kind = lineC
		rest := line
		if eq := strings.IndexByte(rest, '='); eq >= 0 {
			p.dest = rest[:eq]
			rest = rest[eq+1:]
			if p.dest == "" {
				return p, fmt.Errorf("missing dest before '=' on line %d", lineNo)
			}
		}
		if semi := strings.IndexByte(rest, ';'); semi >= 0 {
			p.jump = rest[semi+1:]
			rest = rest[:semi]
			if p.jump == "" {
				return p, fmt.Errorf("missing jump after ';' on line %d", lineNo)
			}
		}
		p.comp = rest
	}

	return p, nil
}

// stripComments drops everything from // onwards. ';' separates the jump
// field in this dialect, so it is not a comment marker.
func stripComments(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

// isIdentifier accepts letters, digits, _ . $ : with no leading digit.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if unicode.IsDigit(r) {
				return false
			}
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("_.$:", r) {
			return false
		}
	}

	return true
}

// FormatHack renders machine words in the textual .hack format: one
// 16-digit binary number per line.
func FormatHack(words []uint16) string {
	var sb strings.Builder
	sb.Grow(len(words) * 17)
	for _, w := range words {
		fmt.Fprintf(&sb, "%016b\n", w)
	}
	return sb.String()
}

// ParseHack reads the textual .hack format back into machine words.
func ParseHack(text string) ([]uint16, error) {
	var words []uint16
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if len(line) != 16 {
			return nil, fmt.Errorf("expected 16 binary digits on line %d", i+1)
		}
		w, err := strconv.ParseUint(line, 2, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid binary word on line %d: %s", i+1, line)
		}
		words = append(words, uint16(w))
	}
	if len(words) > MaxProgram {
		return nil, fmt.Errorf("program has %d words, ROM holds %d", len(words), MaxProgram)
	}
	return words, nil
}
