package compiler

import (
	"strings"
	"testing"
)

func TestControlFlow(t *testing.T) {
	flags := func(s *SymbolTable) {
		s.DefineSubroutineVar("x", "int", KindLocal)
	}
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "if without else",
			src:  "if (x) { let x = 1; }",
			want: []string{
				"push local 0",
				"not",
				"if-goto Foo_IF_NOT_TRUE_0",
				"push constant 1",
				"pop local 0",
				"goto Foo_IF_END_0",
				"label Foo_IF_NOT_TRUE_0",
				"label Foo_IF_END_0",
			},
		},
		{
			name: "if-else",
			src:  "if (x = 0) { let x = 1; } else { let x = 2; }",
			want: []string{
				"push local 0",
				"push constant 0",
				"eq",
				"not",
				"if-goto Foo_IF_NOT_TRUE_0",
				"push constant 1",
				"pop local 0",
				"goto Foo_IF_END_0",
				"label Foo_IF_NOT_TRUE_0",
				"push constant 2",
				"pop local 0",
				"label Foo_IF_END_0",
			},
		},
		{
			name: "while",
			src:  "while (x < 10) { let x = x + 1; }",
			want: []string{
				"label Foo_WHILE_LOOP_BEGIN_0",
				"push local 0",
				"push constant 10",
				"lt",
				"not",
				"if-goto Foo_WHILE_LOOP_END_0",
				"push local 0",
				"push constant 1",
				"add",
				"pop local 0",
				"goto Foo_WHILE_LOOP_BEGIN_0",
				"label Foo_WHILE_LOOP_END_0",
			},
		},
		{
			name: "empty blocks",
			src:  "while (true) { } if (false) { } else { }",
			want: []string{
				"label Foo_WHILE_LOOP_BEGIN_0",
				"push constant 0",
				"not",
				"not",
				"if-goto Foo_WHILE_LOOP_END_0",
				"goto Foo_WHILE_LOOP_BEGIN_0",
				"label Foo_WHILE_LOOP_END_0",
				"push constant 0",
				"not",
				"if-goto Foo_IF_NOT_TRUE_0",
				"goto Foo_IF_END_0",
				"label Foo_IF_NOT_TRUE_0",
				"label Foo_IF_END_0",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertCode(t, compileStmts(t, tc.src, flags), tc.want...)
		})
	}
}

func TestControlFlow_UniqueLabels(t *testing.T) {
	src := `class Foo {
    function void f(int x) {
        if (x) { let x = 1; }
        if (x) { let x = 2; }
        while (x) { while (x) { let x = 0; } }
        return;
    }
    function void g(int x) {
        if (x) { if (x) { } }
        return;
    }
}`
	code, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, line := range strings.Split(code, "\n") {
		label, ok := strings.CutPrefix(line, "label ")
		if !ok {
			continue
		}
		if seen[label] {
			t.Errorf("label %s defined twice", label)
		}
		seen[label] = true
	}

	// counters are per class, not per subroutine
	for _, want := range []string{
		"Foo_IF_NOT_TRUE_0", "Foo_IF_END_0",
		"Foo_IF_NOT_TRUE_1", "Foo_IF_END_1",
		"Foo_IF_NOT_TRUE_2", "Foo_IF_NOT_TRUE_3",
		"Foo_WHILE_LOOP_BEGIN_0", "Foo_WHILE_LOOP_END_0",
		"Foo_WHILE_LOOP_BEGIN_1", "Foo_WHILE_LOOP_END_1",
	} {
		if !seen[want] {
			t.Errorf("missing label %s", want)
		}
	}
	if len(seen) != 12 {
		t.Errorf("got %d labels, want 12", len(seen))
	}
}

func TestControlFlow_NestedOrder(t *testing.T) {
	// the outer loop takes its number before the inner one
	code := compileStmts(t, "while (x) { while (x) { } }", func(s *SymbolTable) {
		s.DefineSubroutineVar("x", "int", KindArgument)
	})
	outer := strings.Index(code, "label Foo_WHILE_LOOP_BEGIN_0")
	inner := strings.Index(code, "label Foo_WHILE_LOOP_BEGIN_1")
	if outer < 0 || inner < 0 || outer > inner {
		t.Errorf("unexpected loop order:\n%s", code)
	}
	assertContains(t, code, "goto Foo_WHILE_LOOP_BEGIN_1\nlabel Foo_WHILE_LOOP_END_1\ngoto Foo_WHILE_LOOP_BEGIN_0\n")
}
