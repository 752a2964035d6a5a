//go:build !js

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gohack/pkg/asm"
	"gohack/pkg/compiler"
	"gohack/pkg/cpu"
	"gohack/pkg/toolchain"
	"gohack/pkg/vm"
)

const counterJack = `
/** A running total. */
class Counter {
    field int total;

    constructor Counter new(int start) {
        let total = start;
        return this;
    }

    method void bump(int by) {
        let total = total + by;
        return;
    }

    method int value() { return total; }
}`

const sysJack = `
class Sys {
    function void init() {
        var Counter c;
        var Array out;
        let out = 8000;
        let c = Counter.new(10);
        do c.bump(5);
        do c.bump(7);
        let out[0] = c.value();
        let out[1] = Sys.fib(10);
        let out[2] = -3 + 1;
        if (~(c.value() = 22)) {
            let out[3] = 1;
        } else {
            let out[3] = 2;
        }
        let out[4] = 2 + 3 - 1;
        let out[5] = (1 < 2) & (3 > 2);
        return;
    }

    function int fib(int n) {
        if (n < 2) {
            return n;
        }
        return Sys.fib(n - 1) + Sys.fib(n - 2);
    }
}`

// memoryVM is a bump allocator standing in for the OS Memory class.
const memoryVM = `
function Memory.alloc 0
push static 0
push constant 0
eq
if-goto INIT
label BUMP
push static 0
push static 0
push argument 0
add
pop static 0
return
label INIT
push constant 2048
pop static 0
goto BUMP
`

var wantRAM = map[uint16]uint16{
	8000: 22,
	8001: 55,
	8002: 0xFFFE,
	8003: 2,
	8004: 4,
	8005: 0xFFFF,
}

func checkRAM(t *testing.T, machine *cpu.CPU) {
	t.Helper()
	if !machine.Halted {
		t.Fatalf("program did not halt: %s", machine)
	}
	for addr, want := range wantRAM {
		if got := machine.ReadMem(addr); got != want {
			t.Errorf("RAM[%d] = %d, want %d", addr, got, want)
		}
	}
}

func TestEndToEnd_Toolchain(t *testing.T) {
	res, err := toolchain.Build(context.Background(), []toolchain.Source{
		{Name: "Counter.jack", Text: counterJack},
		{Name: "Sys.jack", Text: sysJack},
		{Name: "Memory.vm", Text: memoryVM},
	}, toolchain.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !res.Bootstrapped {
		t.Errorf("expected bootstrap with Sys.init present")
	}
	if len(res.Missing) != 0 {
		t.Errorf("unexpected missing functions: %v", res.Missing)
	}

	machine := cpu.NewCPU()
	if err := machine.Load(res.Words); err != nil {
		t.Fatalf("Load: %v", err)
	}
	machine.Run(2_000_000)
	checkRAM(t, machine)
}

// Drives each stage by hand to make sure the packages compose without the
// toolchain glue.
func TestEndToEnd_Stages(t *testing.T) {
	var sources []vm.Source
	for _, src := range []struct{ name, text string }{
		{"Counter.jack", counterJack},
		{"Sys.jack", sysJack},
	} {
		code, err := compiler.Compile(src.text)
		if err != nil {
			t.Fatalf("Compile %s: %v", src.name, err)
		}
		sources = append(sources, vm.Source{Name: src.name, Text: code})
	}
	sources = append(sources, vm.Source{Name: "Memory.vm", Text: memoryVM})

	code, err := vm.TranslateSources(sources, true)
	if err != nil {
		t.Fatalf("TranslateSources: %v", err)
	}
	words, _, err := asm.Assemble(code)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	// Round trip through the .hack text format as the CLI does.
	dir := t.TempDir()
	hackPath := filepath.Join(dir, "Prog.hack")
	if err := writeHack(hackPath, words); err != nil {
		t.Fatalf("writeHack: %v", err)
	}
	loaded, err := readHack(hackPath)
	if err != nil {
		t.Fatalf("readHack: %v", err)
	}

	machine := cpu.NewCPU()
	if err := machine.Load(loaded); err != nil {
		t.Fatalf("Load: %v", err)
	}
	machine.Run(2_000_000)
	checkRAM(t, machine)
}

func TestEndToEnd_BuildPathAndHibernate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Prog")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, text := range map[string]string{
		"Counter.jack": counterJack,
		"Sys.jack":     sysJack,
		"Memory.vm":    memoryVM,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	res, err := toolchain.BuildPath(context.Background(), dir, toolchain.Options{})
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}

	machine := cpu.NewCPU()
	if err := machine.Load(res.Words); err != nil {
		t.Fatalf("Load: %v", err)
	}
	snapshot := filepath.Join(t.TempDir(), "state.zip")
	shot := filepath.Join(t.TempDir(), "screen.png")
	if err := runMachine(machine, dir, runOptions{steps: 2_000_000, hibernate: snapshot, screenshot: shot, scale: 1}); err != nil {
		t.Fatalf("runMachine: %v", err)
	}
	if _, err := os.Stat(shot); err != nil {
		t.Errorf("screenshot not written: %v", err)
	}

	restored := cpu.NewCPU()
	if err := restored.RestoreFromFile(snapshot); err != nil {
		t.Fatalf("RestoreFromFile: %v", err)
	}
	checkRAM(t, restored)
}

func TestDefaultOutputPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		in, want string
	}{
		{filepath.Join("x", "Main.jack"), filepath.Join("x", "Main.hack")},
		{filepath.Join("x", "Prog.asm"), filepath.Join("x", "Prog.hack")},
		{"noext", "noext.hack"},
		{dir, filepath.Join(dir, filepath.Base(dir)+".hack")},
	}
	for _, tc := range tests {
		if got := defaultOutputPath(tc.in); got != tc.want {
			t.Errorf("defaultOutputPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
