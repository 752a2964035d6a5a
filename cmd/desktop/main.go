package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gohack/pkg/cpu"
	"gohack/pkg/toolchain"
)

type Game struct {
	vm        *cpu.CPU
	screenImg *ebiten.Image // reused 512x256 canvas
	cycles    int
	statePath string
	status    string

	// the last typed character stays pressed until the next frame
	lastTyped rune
	typedAge  int
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := g.vm.HibernateToFile(g.statePath); err != nil {
			g.status = fmt.Sprintf("save failed: %v", err)
		} else {
			g.status = "saved " + g.statePath
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		if err := g.vm.RestoreFromFile(g.statePath); err != nil {
			g.status = fmt.Sprintf("restore failed: %v", err)
		} else {
			g.status = "restored " + g.statePath
		}
	}

	typed := ebiten.AppendInputChars(nil)
	if len(typed) > 0 {
		g.lastTyped = typed[len(typed)-1]
		g.typedAge = 0
	} else if g.lastTyped != 0 {
		g.typedAge++
		if g.typedAge > 2 {
			g.lastTyped = 0
		}
	}
	var pending []rune
	if g.lastTyped != 0 {
		pending = []rune{g.lastTyped}
	}
	g.vm.SetKey(keyCode(pending, inpututil.AppendPressedKeys(nil)))

	// Fixed clock: cycles instructions per frame.
	if !g.vm.Halted {
		g.vm.Run(g.cycles)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}
	g.screenImg.WritePixels(g.vm.GetFramebufferRGBA())
	screen.DrawImage(g.screenImg, nil)

	if g.vm.Halted {
		ebitenutil.DebugPrintAt(screen, "halted", 4, cpu.ScreenHeight-16)
	}
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 4, 0)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight
}

func main() {
	scale := flag.Int("scale", 2, "window scale")
	speed := flag.Int("speed", 100000, "instructions per frame")
	statePath := flag.String("state", "gohack_state.zip", "snapshot file for F5 (save) and F9 (restore)")
	resume := flag.Bool("resume", false, "start from the snapshot instead of a program")
	flag.Parse()

	vm := cpu.NewCPU()
	switch {
	case *resume:
		if err := vm.RestoreFromFile(*statePath); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
	case flag.NArg() == 1:
		res, err := toolchain.BuildPath(context.Background(), flag.Arg(0), toolchain.Options{})
		if err != nil {
			log.Fatalf("Build failed: %v", err)
		}
		for _, name := range res.Missing {
			log.Printf("warning: %s is called but never defined", name)
		}
		if err := vm.Load(res.Words); err != nil {
			log.Fatalf("Load failed: %v", err)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: desktop [flags] <file.jack|file.vm|file.asm|file.hack|dir>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.ScreenWidth**scale, cpu.ScreenHeight**scale)
	ebiten.SetWindowTitle("GoHack Desktop")

	game := &Game{vm: vm, cycles: *speed, statePath: *statePath}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
