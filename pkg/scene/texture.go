package scene

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	_ "github.com/ftrvxmtrx/tga" // Register TGA decoder
	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
	_ "golang.org/x/image/bmp" // Register BMP decoder
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// Texture is an RGB image sampled bilinearly by UV, used to modulate a
// material's diffuse and ambient color.
type Texture struct {
	Width  int
	Height int
	Pixels []math3d.Vec3 // Row-major, channels in [0,1]
	Wrap   WrapMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]math3d.Vec3, width*height),
	}
}

// LoadTexture loads a texture from an image file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			tex.SetPixel(x, y, math3d.V3(float64(r), float64(g), float64(b)).Scale(1.0/0xffff))
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c math3d.Vec3) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y), black when out of bounds.
func (t *Texture) GetPixel(x, y int) math3d.Vec3 {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return math3d.Vec3{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the bilinearly filtered color at (u, v). glTF puts v=0
// at the top row of the image, and so does Sample.
func (t *Texture) Sample(u, v float64) math3d.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return math3d.One3()
	}

	fx := t.wrapCoord(u)*float64(t.Width) - 0.5
	fy := t.wrapCoord(v)*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := t.wrapPixel(x0+1, t.Width)
	y1 := t.wrapPixel(y0+1, t.Height)
	x0 = t.wrapPixel(x0, t.Width)
	y0 = t.wrapPixel(y0, t.Height)

	top := t.GetPixel(x0, y0).Lerp(t.GetPixel(x1, y0), tx)
	bot := t.GetPixel(x0, y1).Lerp(t.GetPixel(x1, y1), tx)
	return top.Lerp(bot, ty)
}

// Modulate returns a copy of m whose ambient and diffuse colors are
// multiplied by the texel at (u, v).
func (t *Texture) Modulate(m *trace.Material, u, v float64) *trace.Material {
	base := trace.DefaultMaterial()
	if m != nil {
		base = *m
	}
	texel := t.Sample(u, v)
	base.Kd = base.Kd.Mul(texel)
	base.Ka = base.Ka.Mul(texel)
	return &base
}

func (t *Texture) wrapCoord(c float64) float64 {
	if t.Wrap == WrapClamp {
		return math.Max(0, math.Min(1, c))
	}
	return c - math.Floor(c)
}

func (t *Texture) wrapPixel(x, size int) int {
	if t.Wrap == WrapClamp {
		return max(0, min(x, size-1))
	}
	x %= size
	if x < 0 {
		x += size
	}
	return x
}
