// Package toolchain drives whole programs through the pipeline:
// Jack classes to VM code, VM code to Hack assembly, assembly to machine
// words ready for pkg/cpu.
package toolchain

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"gohack/pkg/asm"
	"gohack/pkg/compiler"
	"gohack/pkg/utils"
	"gohack/pkg/vm"
)

// Bootstrap selects whether a build starts with the SP=256 / Sys.init prologue.
type Bootstrap int

const (
	// BootstrapAuto adds the prologue when some source defines Sys.init.
	BootstrapAuto Bootstrap = iota
	BootstrapAlways
	BootstrapNever
)

type Options struct {
	Bootstrap Bootstrap
	// Parallelism caps concurrent compilations; 0 means one per CPU.
	Parallelism int
}

func (o Options) limit() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.NumCPU()
}

// Source is one named input file. The extension decides how it is treated:
// .jack is compiled, .vm is passed to the translator unchanged.
type Source struct {
	Name string
	Text string
}

// Output is the result of compiling one Jack class.
type Output struct {
	Source  string // input name, e.g. Main.jack
	Name    string // output name, e.g. Main.vm
	VM      string
	Symbols *compiler.SymbolTable
	Err     error
}

func compileOne(src Source) Output {
	out := Output{Source: src.Name, Name: utils.ReplaceExt(src.Name, ".vm")}
	code, syms, err := compiler.CompileWithSymbols(src.Text, compiler.WithFileName(filepath.Base(src.Name)))
	if err != nil {
		out.Err = errors.Wrapf(err, "compile %s", src.Name)
		return out
	}
	out.VM, out.Symbols = code, syms
	return out
}

// CompileAll compiles every class concurrently, each with its own engine.
// Outputs keep the order of sources. The first failure cancels work that has
// not started yet and is returned.
func CompileAll(ctx context.Context, sources []Source, opts Options) ([]Output, error) {
	outputs := make([]Output, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.limit())

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outputs[i] = compileOne(src)
			return outputs[i].Err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// CompileEach compiles every class concurrently and never stops early: a
// failing file leaves its error in Output.Err and the rest still compile.
func CompileEach(ctx context.Context, sources []Source, opts Options) []Output {
	outputs := make([]Output, len(sources))
	var g errgroup.Group
	g.SetLimit(opts.limit())

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outputs[i] = Output{Source: src.Name, Err: errors.Wrapf(err, "compile %s", src.Name)}
				return nil
			}
			outputs[i] = compileOne(src)
			return nil
		})
	}
	_ = g.Wait()
	return outputs
}

// Result is a fully built program.
type Result struct {
	VM        []vm.Source
	Asm       string
	Words     []uint16
	SourceMap map[uint16]int // ROM address -> line of Asm
	// Bootstrapped reports whether the Sys.init prologue was emitted.
	Bootstrapped bool
	// Missing lists called functions that no source defines, sorted. The
	// assembler cannot tell them from variables, so such a program will
	// misbehave when it reaches the call.
	Missing []string
}

// Build compiles the Jack sources, translates all VM code and assembles it.
func Build(ctx context.Context, sources []Source, opts Options) (*Result, error) {
	if len(sources) == 0 {
		return nil, errors.New("no sources to build")
	}

	var jack []Source
	var vmSources []vm.Source
	for _, src := range sources {
		switch strings.ToLower(filepath.Ext(src.Name)) {
		case ".jack":
			jack = append(jack, src)
		case ".vm":
			vmSources = append(vmSources, vm.Source{Name: src.Name, Text: src.Text})
		default:
			return nil, errors.Errorf("%s: unsupported source type", src.Name)
		}
	}

	outputs, err := CompileAll(ctx, jack, opts)
	if err != nil {
		return nil, err
	}
	for _, out := range outputs {
		vmSources = append(vmSources, vm.Source{Name: out.Name, Text: out.VM})
	}

	res := &Result{VM: vmSources}
	switch opts.Bootstrap {
	case BootstrapAlways:
		res.Bootstrapped = true
	case BootstrapAuto:
		res.Bootstrapped = vm.DefinesFunction(vmSources, "Sys.init")
	}

	res.Missing, err = missingFunctions(vmSources, res.Bootstrapped)
	if err != nil {
		return nil, err
	}

	res.Asm, err = vm.TranslateSources(vmSources, res.Bootstrapped)
	if err != nil {
		return nil, errors.Wrap(err, "translate")
	}
	res.Words, res.SourceMap, err = asm.Assemble(res.Asm)
	if err != nil {
		return nil, errors.Wrap(err, "assemble")
	}
	return res, nil
}

func missingFunctions(sources []vm.Source, bootstrapped bool) ([]string, error) {
	defined := make(map[string]bool)
	called := make(map[string]bool)
	if bootstrapped {
		called["Sys.init"] = true
	}
	for _, src := range sources {
		cmds, err := vm.Parse(src.Text)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", src.Name)
		}
		for _, cmd := range cmds {
			switch cmd.Type {
			case vm.Function:
				defined[cmd.Arg1] = true
			case vm.Call:
				called[cmd.Arg1] = true
			}
		}
	}
	var missing []string
	for name := range called {
		if !defined[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}
