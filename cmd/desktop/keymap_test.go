package main

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"gohack/pkg/cpu"
)

func TestKeyCode(t *testing.T) {
	tests := []struct {
		name  string
		typed []rune
		held  []ebiten.Key
		want  uint16
	}{
		{"Nothing", nil, nil, 0},
		{"Printable", []rune{'a'}, []ebiten.Key{ebiten.KeyA}, 'a'},
		{"Typed wins over special", []rune{'Z'}, []ebiten.Key{ebiten.KeyLeft}, 'Z'},
		{"Non-ASCII ignored", []rune{'é'}, nil, 0},
		{"Enter", nil, []ebiten.Key{ebiten.KeyEnter}, cpu.KeyNewline},
		{"Arrow", nil, []ebiten.Key{ebiten.KeyShiftLeft, ebiten.KeyDown}, cpu.KeyDown},
		{"F12", nil, []ebiten.Key{ebiten.KeyF12}, cpu.KeyF1 + 11},
		{"F5 reserved", nil, []ebiten.Key{ebiten.KeyF5}, 0},
		{"F9 reserved", nil, []ebiten.Key{ebiten.KeyF9}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := keyCode(tc.typed, tc.held); got != tc.want {
				t.Errorf("keyCode(%q, %v) = %d, want %d", tc.typed, tc.held, got, tc.want)
			}
		})
	}
}

func TestSpecialKeysInRange(t *testing.T) {
	for k, code := range specialKeys {
		if code < cpu.KeyNewline || code > cpu.KeyF1+11 {
			t.Errorf("%v maps to %d, outside the special key range", k, code)
		}
	}
}
