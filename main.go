//go:build !js

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"gohack/pkg/asm"
	"gohack/pkg/cpu"
	"gohack/pkg/toolchain"
	"gohack/pkg/utils"
)

type runOptions struct {
	steps      int
	screenshot string
	scale      int
	hibernate  string
}

func main() {
	inPath := flag.String("in", "", "input: .jack, .vm, .asm file or a directory of .jack/.vm files")
	outPath := flag.String("out", "", "output .hack file path (default: input with .hack extension)")
	writeAsm := flag.Bool("asm", false, "also write the generated assembly next to the output")
	runProgram := flag.Bool("run", false, "run the generated program on the Hack CPU")
	runBinPath := flag.String("run-bin", "", "run an existing .hack file on the Hack CPU")
	restorePath := flag.String("restore", "", "resume a machine saved with -hibernate")
	steps := flag.Int("steps", 10_000_000, "maximum instructions to execute (0: until halted)")
	screenshot := flag.String("screenshot", "", "save the screen as PNG after running")
	scale := flag.Int("scale", 1, "screenshot scale factor")
	hibernate := flag.String("hibernate", "", "save the machine state after running")
	flag.Parse()

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}

	var program []uint16
	if *inPath != "" {
		res, err := toolchain.BuildPath(context.Background(), *inPath, toolchain.Options{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
			os.Exit(1)
		}
		for _, name := range res.Missing {
			fmt.Fprintf(os.Stderr, "warning: %s is called but never defined\n", name)
		}

		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath)
		}

		if err := writeHack(output, res.Words); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", output, err)
			os.Exit(1)
		}
		if *writeAsm && res.Asm != "" {
			asmPath := utils.ReplaceExt(output, ".asm")
			if err := os.WriteFile(asmPath, []byte(res.Asm), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", asmPath, err)
				os.Exit(1)
			}
		}

		fmt.Printf("built %d instructions (%s) -> %s\n", len(res.Words), humanize.Bytes(uint64(len(res.Words)*2)), output)
		program = res.Words
	}

	if *inPath == "" && *runBinPath == "" && *restorePath == "" && !*runProgram {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to build, -run to run the build, -run-bin <file> to run an existing program, or -restore <file>")
		flag.Usage()
		os.Exit(2)
	}

	opts := runOptions{steps: *steps, screenshot: *screenshot, scale: *scale, hibernate: *hibernate}
	machine := cpu.NewCPU()
	label := ""
	switch {
	case *restorePath != "":
		if err := machine.RestoreFromFile(*restorePath); err != nil {
			fmt.Fprintf(os.Stderr, "restore failed for %q: %v\n", *restorePath, err)
			os.Exit(1)
		}
		label = *restorePath
	case *runBinPath != "":
		words, err := readHack(*runBinPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load %q: %v\n", *runBinPath, err)
			os.Exit(1)
		}
		if err := machine.Load(words); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load %q: %v\n", *runBinPath, err)
			os.Exit(1)
		}
		label = *runBinPath
	case *runProgram:
		if program == nil {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-bin <file>")
			os.Exit(2)
		}
		if err := machine.Load(program); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
			os.Exit(1)
		}
		label = *inPath
	default:
		return
	}

	if err := runMachine(machine, label, opts); err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", label, err)
		os.Exit(1)
	}
}

// defaultOutputPath is Foo.hack beside Foo.jack, or dir/dir.hack for a
// directory.
func defaultOutputPath(inPath string) string {
	if info, err := os.Stat(inPath); err == nil && info.IsDir() {
		clean := filepath.Clean(inPath)
		return filepath.Join(clean, filepath.Base(clean)+".hack")
	}
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".hack"
	}
	return strings.TrimSuffix(inPath, ext) + ".hack"
}

func writeHack(path string, words []uint16) error {
	return os.WriteFile(path, []byte(asm.FormatHack(words)), 0o644)
}

func readHack(path string) ([]uint16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return asm.ParseHack(string(data))
}

func runMachine(machine *cpu.CPU, label string, opts runOptions) error {
	executed := machine.Run(opts.steps)

	state := "stopped after step limit"
	if machine.Halted {
		state = "halted"
	}
	fmt.Printf("run complete (%s): %s after %s instructions\n  %s\n", label, state, humanize.Comma(int64(executed)), machine)

	if opts.screenshot != "" {
		if err := machine.SaveScreenshot(opts.screenshot, opts.scale); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
	}
	if opts.hibernate != "" {
		if err := machine.HibernateToFile(opts.hibernate); err != nil {
			return fmt.Errorf("hibernate: %w", err)
		}
	}
	return nil
}
