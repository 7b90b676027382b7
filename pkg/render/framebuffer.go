// Package render drives the tracer over a frame buffer and gets the
// result onto a terminal or into an image file.
package render

import (
	"image"
	"image/color"
)

// Framebuffer is a packed RGB image, three bytes per pixel, row-major
// from the top-left corner. It is the buffer trace.Sampler.RenderPixel
// writes into.
type Framebuffer struct {
	Width  int
	Height int
	Pix    []byte // len = Width*Height*3
}

// NewFramebuffer creates a black framebuffer with the given dimensions.
// For terminal display, Height should be 2x the terminal rows.
func NewFramebuffer(width, height int) *Framebuffer {
	width, height = max(width, 0), max(height, 0)
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*3),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := 0; i < len(fb.Pix); i += 3 {
		fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2] = c.R, c.G, c.B
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Out of range coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	i := (y*fb.Width + x) * 3
	fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2] = c.R, c.G, c.B
}

// GetPixel returns the opaque color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	i := (y*fb.Width + x) * 3
	return color.RGBA{fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], 255}
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for p := range fb.Width * fb.Height {
		copy(img.Pix[p*4:p*4+3], fb.Pix[p*3:p*3+3])
		img.Pix[p*4+3] = 255
	}
	return img
}
