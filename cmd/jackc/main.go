// Command jackc compiles Jack classes to VM code. Each Foo.jack given on
// the command line, or found in a given directory, produces Foo.vm beside it.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"gohack/pkg/compiler"
	"gohack/pkg/toolchain"
	"gohack/pkg/utils"
)

const (
	colourRed   = "\x1b[31m"
	colourReset = "\x1b[0m"
)

type config struct {
	tokens      bool
	symbols     bool
	verbose     bool
	parallelism int
	colour      bool
}

func main() {
	var cfg config
	flag.BoolVar(&cfg.tokens, "tokens", false, "also write the token stream of Foo.jack to FooT.xml")
	flag.BoolVar(&cfg.symbols, "symbols", false, "print each class's symbol table")
	flag.BoolVar(&cfg.verbose, "v", false, "report every file written")
	flag.IntVar(&cfg.parallelism, "j", 0, "files compiled at once (default: one per CPU)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: jackc [flags] <file.jack|dir>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cfg.colour = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	if failed := run(context.Background(), cfg, flag.Args(), os.Stdout, os.Stderr); failed > 0 {
		os.Exit(1)
	}
}

// run compiles every input and returns how many files failed. A failure
// never stops the remaining files.
func run(ctx context.Context, cfg config, args []string, stdout, stderr io.Writer) int {
	var paths []string
	failed := 0
	for _, arg := range args {
		found, err := utils.CollectSources(arg, ".jack")
		if err != nil {
			reportError(stderr, cfg, err)
			failed++
			continue
		}
		paths = append(paths, found...)
	}

	sources := make([]toolchain.Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			reportError(stderr, cfg, err)
			failed++
			continue
		}
		// keep the full path so outputs land beside their sources
		sources = append(sources, toolchain.Source{Name: p, Text: string(data)})
	}

	outputs := toolchain.CompileEach(ctx, sources, toolchain.Options{Parallelism: cfg.parallelism})
	var total uint64
	for i, out := range outputs {
		if cfg.tokens {
			if err := writeTokens(sources[i]); err != nil {
				reportError(stderr, cfg, err)
			}
		}
		if out.Err != nil {
			reportError(stderr, cfg, out.Err)
			failed++
			continue
		}
		if err := os.WriteFile(out.Name, []byte(out.VM), 0o644); err != nil {
			reportError(stderr, cfg, err)
			failed++
			continue
		}
		total += uint64(len(out.VM))
		if cfg.verbose {
			fmt.Fprintf(stdout, "%s -> %s (%s)\n", out.Source, out.Name, humanize.Bytes(uint64(len(out.VM))))
		}
		if cfg.symbols {
			fmt.Fprintf(stdout, "== %s ==\n%s", filepath.Base(out.Source), out.Symbols)
		}
	}

	fmt.Fprintf(stdout, "compiled %d of %d files, %s of VM code\n", len(outputs)-countErrors(outputs), len(outputs), humanize.Bytes(total))
	return failed
}

func countErrors(outputs []toolchain.Output) int {
	n := 0
	for _, out := range outputs {
		if out.Err != nil {
			n++
		}
	}
	return n
}

// writeTokens dumps Foo.jack's tokens to FooT.xml next to it.
func writeTokens(src toolchain.Source) error {
	tokens, err := compiler.Lex(src.Text)
	if err != nil {
		return errors.Wrapf(err, "tokenize %s", src.Name)
	}
	path := utils.ReplaceExt(src.Name, "T.xml")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := compiler.WriteTokensXML(w, tokens); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return w.Flush()
}

func reportError(w io.Writer, cfg config, err error) {
	label := "error"
	var cerr *compiler.Error
	if errors.As(err, &cerr) {
		label = cerr.Kind.String()
	}
	if cfg.colour {
		label = colourRed + label + colourReset
	}
	fmt.Fprintf(w, "%s: %v\n", label, err)
}
