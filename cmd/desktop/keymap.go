package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"gohack/pkg/cpu"
)

// specialKeys maps non-printing ebiten keys onto Hack keyboard codes.
var specialKeys = map[ebiten.Key]uint16{
	ebiten.KeyEnter:     cpu.KeyNewline,
	ebiten.KeyBackspace: cpu.KeyBackspace,
	ebiten.KeyLeft:      cpu.KeyLeft,
	ebiten.KeyUp:        cpu.KeyUp,
	ebiten.KeyRight:     cpu.KeyRight,
	ebiten.KeyDown:      cpu.KeyDown,
	ebiten.KeyHome:      cpu.KeyHome,
	ebiten.KeyEnd:       cpu.KeyEnd,
	ebiten.KeyPageUp:    cpu.KeyPageUp,
	ebiten.KeyPageDown:  cpu.KeyPageDown,
	ebiten.KeyInsert:    cpu.KeyInsert,
	ebiten.KeyDelete:    cpu.KeyDelete,
	ebiten.KeyEscape:    cpu.KeyEscape,
	ebiten.KeyF1:        cpu.KeyF1,
	ebiten.KeyF2:        cpu.KeyF1 + 1,
	ebiten.KeyF3:        cpu.KeyF1 + 2,
	ebiten.KeyF4:        cpu.KeyF1 + 3,
	ebiten.KeyF6:        cpu.KeyF1 + 5,
	ebiten.KeyF7:        cpu.KeyF1 + 6,
	ebiten.KeyF8:        cpu.KeyF1 + 7,
	ebiten.KeyF10:       cpu.KeyF1 + 9,
	ebiten.KeyF11:       cpu.KeyF1 + 10,
	ebiten.KeyF12:       cpu.KeyF1 + 11,
}

// keyCode picks the code the keyboard register should hold this frame.
// Typed characters win over held special keys; F5 and F9 are reserved for
// snapshots and never reach the machine.
func keyCode(typed []rune, held []ebiten.Key) uint16 {
	for _, r := range typed {
		if r >= 32 && r < 127 {
			return uint16(r)
		}
	}
	for _, k := range held {
		if code, ok := specialKeys[k]; ok {
			return code
		}
	}
	return 0
}
