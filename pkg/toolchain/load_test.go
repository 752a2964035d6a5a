package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gohack/pkg/asm"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuildPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Sys.jack", sysJack)
	writeFile(t, dir, "Main.jack", mainJack)
	writeFile(t, dir, "README", "ignored")

	res, err := BuildPath(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("BuildPath(dir): %v", err)
	}
	if !res.Bootstrapped || len(res.Words) == 0 || len(res.VM) != 2 {
		t.Errorf("unexpected result: bootstrapped=%v words=%d vm=%d", res.Bootstrapped, len(res.Words), len(res.VM))
	}

	hackPath := writeFile(t, dir, "Prog.hack", asm.FormatHack(res.Words))
	loaded, err := BuildPath(context.Background(), hackPath, Options{})
	if err != nil {
		t.Fatalf("BuildPath(.hack): %v", err)
	}
	if len(loaded.Words) != len(res.Words) {
		t.Errorf("reloaded %d words, want %d", len(loaded.Words), len(res.Words))
	}

	asmPath := writeFile(t, dir, "Prog.asm", "@7\nD=A\n")
	fromAsm, err := BuildPath(context.Background(), asmPath, Options{})
	if err != nil {
		t.Fatalf("BuildPath(.asm): %v", err)
	}
	if len(fromAsm.Words) != 2 || fromAsm.Words[0] != 7 {
		t.Errorf("words = %v", fromAsm.Words)
	}

	single, err := BuildPath(context.Background(), filepath.Join(dir, "Main.jack"), Options{})
	if err != nil {
		t.Fatalf("BuildPath(.jack): %v", err)
	}
	if single.Bootstrapped {
		t.Error("single class without Sys.init should not bootstrap")
	}
}

func TestBuildPath_Errors(t *testing.T) {
	if _, err := BuildPath(context.Background(), filepath.Join(t.TempDir(), "none"), Options{}); err == nil {
		t.Error("expected error for missing path")
	}
	if _, err := BuildPath(context.Background(), t.TempDir(), Options{}); err == nil {
		t.Error("expected error for empty directory")
	}
	bad := writeFile(t, t.TempDir(), "Bad.asm", "D=D*D")
	if _, err := BuildPath(context.Background(), bad, Options{}); err == nil {
		t.Error("expected assembly error")
	}
}
