package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// ErrUnsupportedFormat is returned by Save for an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Formats lists the extensions Save understands.
var Formats = []string{".png", ".bmp", ".tga", ".webp"}

// Encode writes img to w in the format named by ext (".png", ".bmp",
// ".tga" or ".webp"). WebP output is lossless.
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tga":
		return tga.Encode(w, img)
	case ".webp":
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}
}

// Save writes img to path, choosing the encoder from the extension.
// The file is only created once the format is known.
func Save(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if !Supported(path) {
		return fmt.Errorf("save %s: %w %q", path, ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := Encode(f, img, ext); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Supported reports whether Save can write path.
func Supported(path string) bool {
	return slices.Contains(Formats, strings.ToLower(filepath.Ext(path)))
}

// Downsample scales img to width x height with CatmullRom filtering,
// averaging a supersampled render down to its output size. The image is
// returned unchanged when it already fits.
func Downsample(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if width <= 0 || height <= 0 || (b.Dx() <= width && b.Dy() <= height) {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
