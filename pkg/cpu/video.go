package cpu

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Screen colours: a set bit is a black pixel on a white panel.
var (
	inkRGBA   = [4]byte{0x00, 0x00, 0x00, 0xFF}
	paperRGBA = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
)

// Pixel reports whether the screen pixel at (x, y) is set. Row y occupies 32
// words starting at ScreenBase+32*y; the least significant bit of each word
// is its leftmost pixel.
func (c *CPU) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	word := c.RAM[ScreenBase+y*(ScreenWidth/16)+x/16]
	return word&(1<<(x%16)) != 0
}

// GetFramebufferRGBA decodes the screen map into a 512×256 RGBA8888 byte
// slice (length 512*256*4).
func (c *CPU) GetFramebufferRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)
	for i := 0; i < ScreenWords; i++ {
		word := c.RAM[ScreenBase+i]
		for bit := 0; bit < 16; bit++ {
			colour := paperRGBA
			if word&(1<<bit) != 0 {
				colour = inkRGBA
			}
			copy(pixels[(i*16+bit)*4:], colour[:])
		}
	}
	return pixels
}

// GetFramebufferImage returns the screen as an *image.RGBA.
func (c *CPU) GetFramebufferImage() *image.RGBA {
	pix := c.GetFramebufferRGBA()
	return &image.RGBA{
		Pix:    pix,
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// ScaledFramebuffer enlarges the screen by an integer factor with
// nearest-neighbour sampling, keeping pixels crisp.
func (c *CPU) ScaledFramebuffer(scale int) *image.RGBA {
	src := c.GetFramebufferImage()
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, ScreenWidth*scale, ScreenHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveScreenshot encodes the screen, enlarged scale times, as a PNG and
// writes it to filename.
func (c *CPU) SaveScreenshot(filename string, scale int) error {
	if scale < 1 {
		return fmt.Errorf("invalid screenshot scale %d", scale)
	}
	img := c.ScaledFramebuffer(scale)
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
