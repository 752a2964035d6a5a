package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"gohack/pkg/utils"
	"gohack/pkg/vm"
)

// translatePath reads a .vm file or every .vm file in a directory and
// returns the assembly together with the path it belongs at. bootstrap is
// "auto", "always" or "never"; auto bootstraps when Sys.init is defined.
func translatePath(path, bootstrap string) (outPath, code string, err error) {
	files, err := utils.CollectSources(path, ".vm")
	if err != nil {
		return "", "", err
	}
	sources := make([]vm.Source, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return "", "", err
		}
		sources = append(sources, vm.Source{Name: f, Text: string(data)})
	}

	var boot bool
	switch bootstrap {
	case "auto":
		boot = vm.DefinesFunction(sources, "Sys.init")
	case "always":
		boot = true
	case "never":
	default:
		return "", "", fmt.Errorf("unknown bootstrap mode %q", bootstrap)
	}

	code, err = vm.TranslateSources(sources, boot)
	if err != nil {
		return "", "", err
	}

	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		clean := filepath.Clean(path)
		outPath = filepath.Join(clean, filepath.Base(clean)+".asm")
	} else {
		outPath = utils.ReplaceExt(path, ".asm")
	}
	return outPath, code, nil
}

func main() {
	bootstrap := flag.String("bootstrap", "auto", "bootstrap code: auto, always or never")
	show := flag.Bool("show-asm", false, "print the generated assembly")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vmtranslator [flags] <file.vm|dir>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
	if err != nil {
		log.Fatalf("Bad path: %v", err)
	}

	outPath, code, err := translatePath(fullPath, *bootstrap)
	if err != nil {
		log.Fatalf("Translation failed: %v", err)
	}
	if *show {
		fmt.Print(code)
	}
	if err := os.WriteFile(outPath, []byte(code), 0o644); err != nil {
		log.Fatalf("Failed to write %q: %v", outPath, err)
	}
	fmt.Printf("wrote %s (%s)\n", outPath, humanize.Bytes(uint64(len(code))))
}
