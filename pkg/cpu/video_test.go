package cpu

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestPixel(t *testing.T) {
	c := NewCPU()
	c.RAM[ScreenBase] = 0b101          // x=0 and x=2 on row 0
	c.RAM[ScreenBase+32*3+1] = 1 << 15 // x=31 on row 3

	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{1, 0, false},
		{2, 0, true},
		{31, 3, true},
		{31, 2, false},
		{-1, 0, false},
		{ScreenWidth, 0, false},
	}
	for _, tc := range tests {
		if got := c.Pixel(tc.x, tc.y); got != tc.want {
			t.Errorf("Pixel(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestGetFramebufferImage(t *testing.T) {
	c := NewCPU()
	c.RAM[ScreenBase+ScreenWords-1] = 0x8000 // bottom-right pixel

	img := c.GetFramebufferImage()
	if b := img.Bounds(); b.Dx() != ScreenWidth || b.Dy() != ScreenHeight {
		t.Fatalf("bounds = %v", b)
	}
	if got := img.RGBAAt(ScreenWidth-1, ScreenHeight-1); got != (color.RGBA{0, 0, 0, 0xFF}) {
		t.Errorf("set pixel = %v, want black", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("clear pixel = %v, want white", got)
	}
}

func TestScaledFramebuffer(t *testing.T) {
	c := NewCPU()
	c.RAM[ScreenBase] = 1 // (0, 0)
	img := c.ScaledFramebuffer(3)
	if b := img.Bounds(); b.Dx() != ScreenWidth*3 || b.Dy() != ScreenHeight*3 {
		t.Fatalf("bounds = %v", b)
	}
	for _, p := range [][2]int{{0, 0}, {2, 2}, {1, 2}} {
		if img.RGBAAt(p[0], p[1]).R != 0 {
			t.Errorf("(%d, %d) should be ink", p[0], p[1])
		}
	}
	if img.RGBAAt(3, 0).R != 0xFF {
		t.Errorf("(3, 0) should be paper")
	}
}

func TestSaveScreenshot(t *testing.T) {
	c := NewCPU()
	c.RAM[ScreenBase+32*10] = 0xFFFF

	path := filepath.Join(t.TempDir(), "screen.png")
	if err := c.SaveScreenshot(path, 2); err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1024 || b.Dy() != 512 {
		t.Errorf("bounds = %v, want 1024x512", b)
	}
	if r, _, _, _ := img.At(0, 20).RGBA(); r != 0 {
		t.Errorf("row 10 should be drawn at y=20")
	}

	if err := c.SaveScreenshot(path, 0); err == nil {
		t.Error("expected error for scale 0")
	}
}
