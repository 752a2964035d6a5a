package cpu

import "fmt"

const (
	// ROMSize and RAMSize are in 16-bit words.
	ROMSize = 32768
	RAMSize = 32768

	// ScreenBase is the first word of the memory-mapped screen.
	ScreenBase = 16384
	// ScreenWords is the size of the screen map: 256 rows of 32 words.
	ScreenWords = 8192
	// KBD holds the code of the key currently pressed, 0 if none.
	KBD = 24576

	ScreenWidth  = 512
	ScreenHeight = 256
)

// CPU is the Hack computer: a Harvard machine with a read-only instruction
// memory, a data memory with the screen and keyboard mapped into it, and
// two registers. Instructions are either A (bit 15 clear: load a constant
// into A) or C (compute, store, maybe jump).
type CPU struct {
	A  uint16
	D  uint16
	PC uint16

	ROM [ROMSize]uint16
	RAM [RAMSize]uint16

	// Halted is set when execution reaches the canonical self-loop
	// "(END) @END 0;JMP" or runs off the end of the program.
	Halted bool

	// Steps counts executed instructions since the last Reset.
	Steps uint64

	programLen int
}

func NewCPU() *CPU {
	return &CPU{}
}

// Load copies program into ROM and resets the machine. RAM is cleared.
func (c *CPU) Load(program []uint16) error {
	if len(program) > ROMSize {
		return fmt.Errorf("program has %d words, ROM holds %d", len(program), ROMSize)
	}
	c.ROM = [ROMSize]uint16{}
	copy(c.ROM[:], program)
	c.programLen = len(program)
	c.RAM = [RAMSize]uint16{}
	c.Reset()
	return nil
}

// Reset restarts execution at address 0, leaving memory alone.
func (c *CPU) Reset() {
	c.A, c.D, c.PC = 0, 0, 0
	c.Halted = false
	c.Steps = 0
}

// ProgramLen is the number of instruction words loaded.
func (c *CPU) ProgramLen() int {
	return c.programLen
}

// ReadMem reads data memory. Addresses wrap at 15 bits, as on the real bus.
func (c *CPU) ReadMem(addr uint16) uint16 {
	return c.RAM[addr&0x7FFF]
}

// WriteMem writes data memory. The keyboard register and the unmapped space
// above it are read-only.
func (c *CPU) WriteMem(addr uint16, val uint16) {
	addr &= 0x7FFF
	if addr >= KBD {
		return
	}
	c.RAM[addr] = val
}

// SetKey publishes the pressed key; 0 means no key.
func (c *CPU) SetKey(code uint16) {
	c.RAM[KBD] = code
}

// alu computes a C-instruction's six control bits (zx nx zy ny f no) over
// x and y.
func alu(ctrl, x, y uint16) uint16 {
	if ctrl&0b100000 != 0 {
		x = 0
	}
	if ctrl&0b010000 != 0 {
		x = ^x
	}
	if ctrl&0b001000 != 0 {
		y = 0
	}
	if ctrl&0b000100 != 0 {
		y = ^y
	}
	var out uint16
	if ctrl&0b000010 != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if ctrl&0b000001 != 0 {
		out = ^out
	}
	return out
}

func shouldJump(jump, out uint16) bool {
	v := int16(out)
	return (jump&0b100 != 0 && v < 0) ||
		(jump&0b010 != 0 && v == 0) ||
		(jump&0b001 != 0 && v > 0)
}

// Step executes one instruction.
func (c *CPU) Step() {
	if c.Halted {
		return
	}
	if int(c.PC) >= c.programLen {
		c.Halted = true
		return
	}

	instr := c.ROM[c.PC]
	c.Steps++

	if instr&0x8000 == 0 {
		c.A = instr
		c.PC++
		return
	}

	useM := instr&0x1000 != 0
	ctrl := (instr >> 6) & 0x3F
	dest := (instr >> 3) & 0x7
	jump := instr & 0x7

	y := c.A
	if useM {
		y = c.ReadMem(c.A)
	}
	out := alu(ctrl, c.D, y)

	// M is addressed by A as it was before this instruction
	addr := c.A
	if dest&0b001 != 0 {
		c.WriteMem(addr, out)
	}
	if dest&0b010 != 0 {
		c.D = out
	}
	if dest&0b100 != 0 {
		c.A = out
	}

	if !shouldJump(jump, out) {
		c.PC++
		return
	}

	target := c.A
	if jump == 0b111 && target+1 == c.PC && c.ROM[target] == target {
		// @X / 0;JMP at X: nothing can change any more
		c.Halted = true
	}
	c.PC = target
}

// Run executes until the machine halts or maxSteps instructions have run
// (maxSteps <= 0 means no limit). It returns the number executed.
func (c *CPU) Run(maxSteps int) int {
	n := 0
	for !c.Halted && (maxSteps <= 0 || n < maxSteps) {
		before := c.Steps
		c.Step()
		if c.Steps == before {
			break
		}
		n++
	}
	return n
}

// RunUntilDone runs until the machine halts. Programs that never reach the
// end loop keep it spinning; use Run with a limit for those.
func (c *CPU) RunUntilDone() {
	for !c.Halted {
		c.Step()
	}
}

// String summarises the registers and the stack-machine pointers.
func (c *CPU) String() string {
	return fmt.Sprintf("PC=%d A=%d D=%d SP=%d LCL=%d ARG=%d THIS=%d THAT=%d steps=%d halted=%v",
		c.PC, c.A, int16(c.D), c.RAM[0], c.RAM[1], c.RAM[2], c.RAM[3], c.RAM[4], c.Steps, c.Halted)
}
