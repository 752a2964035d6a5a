package asm

import (
	"reflect"
	"strings"
	"testing"
)

// bin parses 16-digit binary strings, which is how reference .hack files
// spell instructions.
func bin(t *testing.T, lines ...string) []uint16 {
	t.Helper()
	words, err := ParseHack(strings.Join(lines, "\n"))
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return words
}

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{"_abc", true},
		{"abc1", true},
		{"Main.main$ret.0", true},
		{"a:b", true},
		{"1abc", false},
		{"", false},
		{"ab-c", false},
	}
	for _, tc := range tests {
		if got := isIdentifier(tc.input); got != tc.want {
			t.Errorf("isIdentifier(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}

	if got := stripComments("D;JGT // jump"); got != "D;JGT " {
		t.Errorf("stripComments kept %q", got)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    parsedLine
		wantErr bool
	}{
		{"@17", parsedLine{lineNo: 1, kind: lineA, symbol: "17"}, false},
		{"  @LOOP  // back", parsedLine{lineNo: 1, kind: lineA, symbol: "LOOP"}, false},
		{"(END)", parsedLine{lineNo: 1, kind: lineLabel, symbol: "END"}, false},
		{"D=M", parsedLine{lineNo: 1, kind: lineC, dest: "D", comp: "M"}, false},
		{"0;JMP", parsedLine{lineNo: 1, kind: lineC, comp: "0", jump: "JMP"}, false},
		{"AM = M - 1", parsedLine{lineNo: 1, kind: lineC, dest: "AM", comp: "M-1"}, false},
		{"MD=D+1;JEQ", parsedLine{lineNo: 1, kind: lineC, dest: "MD", comp: "D+1", jump: "JEQ"}, false},
		{"// only a comment", parsedLine{lineNo: 1}, false},
		{"", parsedLine{lineNo: 1}, false},
		{"(END", parsedLine{}, true},
		{"(1st)", parsedLine{}, true},
		{"@", parsedLine{}, true},
		{"@a-b", parsedLine{}, true},
		{"=D", parsedLine{}, true},
		{"D;", parsedLine{}, true},
	}
	for _, tc := range tests {
		got, err := parseLine(tc.line, 1)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseLine(%q) expected error", tc.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseLine(%q) error: %v", tc.line, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseLine(%q) = %+v; want %+v", tc.line, got, tc.want)
		}
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{
			name: "Add",
			code: `
// Computes R0 = 2 + 3
@2
D=A
@3
D=D+A
@0
M=D
`,
			want: []string{
				"0000000000000010",
				"1110110000010000",
				"0000000000000011",
				"1110000010010000",
				"0000000000000000",
				"1110001100001000",
			},
		},
		{
			name: "Jumps and comps",
			code: `
0;JMP
D;JGT
AM=M-1
D=M
M=-1
AMD=D+1
D=D|M
M=!M
`,
			want: []string{
				"1110101010000111",
				"1110001100000001",
				"1111110010101000",
				"1111110000010000",
				"1110111010001000",
				"1110011111111000",
				"1111010101010000",
				"1111110001001000",
			},
		},
		{
			name: "Predefined symbols",
			code: "@SP\n@LCL\n@THAT\n@R13\n@SCREEN\n@KBD\n",
			want: []string{
				"0000000000000000",
				"0000000000000001",
				"0000000000000100",
				"0000000000001101",
				"0100000000000000",
				"0110000000000000",
			},
		},
		{
			name: "Labels and variables",
			code: `
@i
M=1
(LOOP)
@sum
M=0
@LOOP
0;JMP
@i
@END
(END)
@END
0;JMP
`,
			want: []string{
				"0000000000010000", // @i -> 16
				"1110111111001000",
				"0000000000010001", // @sum -> 17
				"1110101010001000",
				"0000000000000010", // @LOOP -> 2
				"1110101010000111",
				"0000000000010000", // @i again
				"0000000000001000", // @END -> 8
				"0000000000001000",
				"1110101010000111",
			},
		},
		{
			name: "Commuted comp spelling",
			code: "M=M+D\nD=A+D\n",
			want: []string{
				"1111000010001000",
				"1110000010010000",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := Assemble(tc.code)
			if err != nil {
				t.Fatalf("Assemble failed: %v", err)
			}
			want := bin(t, tc.want...)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got:\n%s\nwant:\n%s", FormatHack(got), FormatHack(want))
			}
		})
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"Unknown comp", "D=D*A", "unknown comp 'D*A' on line 1"},
		{"Unknown dest", "\nX=D", "unknown dest 'X' on line 2"},
		{"Repeated dest", "MM=D", "unknown dest 'MM'"},
		{"Unknown jump", "0;JXX", "unknown jump 'JXX'"},
		{"Duplicate label", "(A)\n@0\n(A)", "duplicate label 'A' on line 3"},
		{"Predefined label", "(SP)", "redefines a predefined symbol"},
		{"Constant too big", "@32768", "constant out of range on line 1"},
		{"Bad label", "(oops", "invalid label on line 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Assemble(tc.code)
			if err == nil {
				t.Fatalf("Assemble(%q) succeeded, want error", tc.code)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tc.want)
			}
		})
	}
}

func TestAssembleTooLarge(t *testing.T) {
	code := strings.Repeat("D=0\n", MaxProgram+1)
	if _, _, err := Assemble(code); err == nil || !strings.Contains(err.Error(), "program too large") {
		t.Errorf("expected program too large, got %v", err)
	}
}

func TestFormatAndParseHack(t *testing.T) {
	words := []uint16{0, 1, 0xFFFF, 0b1110110000010000}
	text := FormatHack(words)
	if !strings.HasPrefix(text, "0000000000000000\n0000000000000001\n1111111111111111\n") {
		t.Errorf("unexpected text:\n%s", text)
	}

	if _, err := ParseHack("0101"); err == nil {
		t.Errorf("expected error for short line")
	}
	if _, err := ParseHack("000000000000000x"); err == nil {
		t.Errorf("expected error for non-binary digit")
	}
}
