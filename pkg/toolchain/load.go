package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"gohack/pkg/asm"
	"gohack/pkg/utils"
)

// ReadSources loads the named files as Sources, naming each by its base name.
func ReadSources(paths []string) ([]Source, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", p)
		}
		sources = append(sources, Source{Name: filepath.Base(p), Text: string(data)})
	}
	return sources, nil
}

// BuildPath builds whatever path names:
//
//	*.hack        machine code, loaded as is
//	*.asm         assembled
//	*.jack, *.vm  built as a one-file program
//	directory     every .jack and .vm file in it, built together
func BuildPath(ctx context.Context, path string, opts Options) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".hack":
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			words, err := asm.ParseHack(string(data))
			if err != nil {
				return nil, errors.Wrapf(err, "load %s", path)
			}
			return &Result{Words: words}, nil

		case ".asm":
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			words, sourceMap, err := asm.Assemble(string(data))
			if err != nil {
				return nil, errors.Wrapf(err, "assemble %s", path)
			}
			return &Result{Asm: string(data), Words: words, SourceMap: sourceMap}, nil
		}
		sources, err := ReadSources([]string{path})
		if err != nil {
			return nil, err
		}
		return Build(ctx, sources, opts)
	}

	var paths []string
	for _, ext := range []string{".jack", ".vm"} {
		found, err := utils.CollectSources(path, ext)
		if err == nil {
			paths = append(paths, found...)
		}
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no .jack or .vm files in %s", path)
	}
	sources, err := ReadSources(paths)
	if err != nil {
		return nil, err
	}
	return Build(ctx, sources, opts)
}
