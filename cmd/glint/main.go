// glint - Whitted ray tracer
// Render JSON scenes and glTF models to an image file, or preview them
// live in the terminal.
//
// Preview controls:
//
//	Mouse drag  - Orbit the camera
//	Scroll      - Zoom in/out
//	W/S         - Orbit up/down
//	A/D         - Orbit left/right
//	+/-         - Adjust zoom
//	] / [       - Increase/decrease recursion depth
//	J           - Toggle jitter
//	R           - Reset view
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/taigrr/glint/pkg/config"
	"github.com/taigrr/glint/pkg/render"
	"github.com/taigrr/glint/pkg/scene"
	"github.com/taigrr/glint/pkg/trace"
)

var (
	configFile    = flag.String("config", "", "Path to a JSON config file")
	output        = flag.String("o", "", "Output image (.png, .bmp, .tga, .webp) (default: out.png)")
	width         = flag.Int("width", 0, "Output width in pixels (default: 320)")
	height        = flag.Int("height", 0, "Output height in pixels (default: 3/4 of width)")
	depth         = flag.Int("depth", -1, "Maximum reflection/refraction depth (default: 3)")
	aa            = flag.Int("aa", 0, "Antialiasing: n gives n*n samples per pixel (default: 1)")
	jitter        = flag.Bool("jitter", false, "Jitter antialiasing samples")
	adaptive      = flag.Bool("adaptive", false, "Adaptive antialiasing")
	adaptiveDepth = flag.Int("adaptive-depth", -1, "Adaptive subdivision depth (default: 3)")
	ambient       = flag.String("ambient", "", "Ambient light override (R,G,B in 0..1)")
	atten         = flag.String("atten", "", "Point light attenuation override (constant,linear,quadratic)")
	seed          = flag.Uint64("seed", 0, "Jitter seed")
	supersample   = flag.Int("supersample", 0, "Render at n times the size and downsample (default: 1)")
	targetFPS     = flag.Int("fps", 0, "Preview target FPS (default: 30)")
	preview       = flag.Bool("preview", false, "Interactive terminal preview instead of writing a file")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "glint - Whitted ray tracer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: glint [options] <scene.json|model.glb|model.gltf>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nPreview controls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit camera\n")
		fmt.Fprintf(os.Stderr, "  Scroll, +/- - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Orbit\n")
		fmt.Fprintf(os.Stderr, "  ] / [       - Recursion depth up/down\n")
		fmt.Fprintf(os.Stderr, "  J           - Toggle jitter\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(scenePath string) error {
	var cfg config.Config
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return err
		}
	}
	err := cfg.Resolve(config.Flags{
		Output:        *output,
		Width:         *width,
		Height:        *height,
		Supersample:   *supersample,
		FPS:           *targetFPS,
		Depth:         *depth,
		Samples:       *aa,
		Jitter:        *jitter,
		Adaptive:      *adaptive,
		AdaptiveDepth: *adaptiveDepth,
		Seed:          *seed,
		Ambient:       *ambient,
		Atten:         *atten,
	})
	if err != nil {
		return err
	}
	// Fail on bad knobs before loading a possibly large model.
	if _, err := cfg.RenderConfig(); err != nil {
		return err
	}
	if !*preview && !render.Supported(cfg.Output) {
		return fmt.Errorf("%w %q (use %s)", render.ErrUnsupportedFormat, filepath.Ext(cfg.Output), strings.Join(render.Formats, ", "))
	}

	s, err := loadScene(scenePath)
	if err != nil {
		return err
	}
	log.Printf("loaded %s: %d objects, %d lights", filepath.Base(scenePath), s.Len(), len(s.Lights()))

	// Context for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if *preview {
		return runPreview(ctx, s, cfg, filepath.Base(scenePath))
	}
	return renderImage(ctx, s, cfg)
}

// errUnknownInput is returned for a scene path with an unknown extension.
var errUnknownInput = errors.New("unsupported input")

// loadScene reads a JSON scene, or wraps a bare glTF model in a default
// lit scene.
func loadScene(path string) (*scene.Scene, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return scene.Load(path)
	case ".glb", ".gltf":
		m, err := scene.LoadGLTF(path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		return scene.ForMesh(m), nil
	default:
		return nil, fmt.Errorf("%w %q (use .json, .glb or .gltf)", errUnknownInput, ext)
	}
}

// renderImage traces the scene once and writes cfg.Output.
func renderImage(ctx context.Context, s *scene.Scene, cfg config.Config) error {
	rc, err := cfg.RenderConfig()
	if err != nil {
		return err
	}

	w, h := cfg.RenderSize()
	s.Camera.AspectRatio = float64(w) / float64(h)
	tr := trace.NewTracer(s, s.Camera, rc)
	fb := render.NewFramebuffer(w, h)
	r := render.NewRenderer(tr, fb)

	start := time.Now()
	step := max(h/10, 1)
	err = r.Render(ctx, func(done, total int) {
		if done%step == 0 || done == total {
			log.Printf("traced %d/%d rows", done, total)
		}
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	var img image.Image = fb.ToImage()
	if cfg.Supersample > 1 {
		img = render.Downsample(img, cfg.Width, cfg.Height)
	}
	if err := render.Save(cfg.Output, img); err != nil {
		return err
	}

	st := tr.Stats()
	log.Printf("wrote %s (%dx%d) in %v: %d primary, %d reflected, %d refracted rays",
		cfg.Output, cfg.Width, cfg.Height, time.Since(start).Round(time.Millisecond),
		st.Primary, st.Reflected, st.Refracted)
	return nil
}
