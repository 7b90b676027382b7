package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/glint/pkg/config"
	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/render"
	"github.com/taigrr/glint/pkg/scene"
	"github.com/taigrr/glint/pkg/trace"
)

const (
	dragStrength = 0.03 // radians per cell of mouse drag
	keyStrength  = 0.05
	maxDepth     = 10
)

// ViewState holds the settings the preview controls change. It is
// written by the event goroutine and read once per frame.
type ViewState struct {
	mu sync.Mutex

	Depth   int
	Jitter  bool
	ShowHUD bool

	width, height int // terminal cells
	resized       bool
	dirty         bool // settings changed since the last frame
}

func (v *ViewState) toggleHUD() {
	v.mu.Lock()
	v.ShowHUD = !v.ShowHUD
	v.dirty = true
	v.mu.Unlock()
}

func (v *ViewState) toggleJitter() {
	v.mu.Lock()
	v.Jitter = !v.Jitter
	v.dirty = true
	v.mu.Unlock()
}

func (v *ViewState) addDepth(d int) {
	v.mu.Lock()
	v.Depth = max(0, min(maxDepth, v.Depth+d))
	v.dirty = true
	v.mu.Unlock()
}

func (v *ViewState) invalidate() {
	v.mu.Lock()
	v.dirty = true
	v.mu.Unlock()
}

func (v *ViewState) resize(w, h int) {
	v.mu.Lock()
	v.width, v.height, v.resized = w, h, true
	v.dirty = true
	v.mu.Unlock()
}

// needsFrame reports whether the image is stale: a setting changed or the
// orbit is still coasting. It clears the changed flag.
func (v *ViewState) needsFrame(o *Orbit) bool {
	v.mu.Lock()
	dirty := v.dirty
	v.dirty = false
	v.mu.Unlock()
	return dirty || o.Moving()
}

// HUD renders an overlay with scene info and frame timing.
type HUD struct {
	filename  string
	objects   int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(filename string, objects int) *HUD {
	return &HUD{filename: filename, objects: objects, fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD directly to the terminal with ANSI escapes.
func (h *HUD) Render(width, height int, show bool, depth int, jitter bool, st trace.StatsSnapshot) {
	const (
		reset     = "\x1b[0m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows (so toggling off works)
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)
	if !show {
		return
	}

	fmt.Printf("%s%s%s %.1f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)
	titleCol := max((width-len(h.filename)-2)/2, 1)
	fmt.Printf("%s%s%s %s %s", moveTo(1, titleCol), bgBlack, fgWhite, h.filename, reset)
	objCol := max(width-14, 1)
	fmt.Printf("%s%s%s %d objects %s", moveTo(1, objCol), bgBlack, fgCyan, h.objects, reset)

	check := "[ ]"
	if jitter {
		check = "[✓]"
	}
	fmt.Printf("%s%s%s depth %d  %s jitter  rays %d/%d/%d %s", moveTo(height, 1), bgBlack, fgWhite,
		depth, check, st.Primary, st.Reflected, st.Refracted, reset)
}

// orbitTarget is the point the preview camera circles: the center of the
// bounded geometry, or a point ahead of the camera.
func orbitTarget(s *scene.Scene) math3d.Vec3 {
	if b, ok := s.Bounds(); ok {
		return b.Center()
	}
	return s.Camera.Position.Add(s.Camera.Forward().Scale(5))
}

func runPreview(ctx context.Context, s *scene.Scene, cfg config.Config, name string) error {
	rc, err := cfg.RenderConfig()
	if err != nil {
		return err
	}

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fb := render.NewFramebuffer(termRenderer.FramebufferSize())

	orbit := NewOrbit(cfg.FPS, orbitTarget(s), s.Camera)
	var orbitMu sync.Mutex

	view := &ViewState{Depth: rc.MaxDepth, Jitter: rc.Jitter, dirty: true}
	hud := NewHUD(name, s.Len())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	impulse := func(yaw, pitch, zoom float64) {
		orbitMu.Lock()
		orbit.ApplyImpulse(yaw, pitch, zoom)
		orbitMu.Unlock()
	}
	zoomStep := orbit.Distance.Position * 0.02

	// Event handler
	go func() {
		var mouseDown bool
		var lastMouseX, lastMouseY int

		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				view.resize(ev.Width, ev.Height)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("w", "up"):
					impulse(0, keyStrength, 0)
				case ev.MatchString("s", "down"):
					impulse(0, -keyStrength, 0)
				case ev.MatchString("a", "left"):
					impulse(-keyStrength, 0, 0)
				case ev.MatchString("d", "right"):
					impulse(keyStrength, 0, 0)
				case ev.MatchString("+", "="):
					impulse(0, 0, -zoomStep)
				case ev.MatchString("-", "_"):
					impulse(0, 0, zoomStep)
				case ev.MatchString("]"):
					view.addDepth(1)
				case ev.MatchString("["):
					view.addDepth(-1)
				case ev.MatchString("j"):
					view.toggleJitter()
				case ev.MatchString("r"):
					orbitMu.Lock()
					orbit.Reset()
					orbitMu.Unlock()
					view.invalidate()
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					view.toggleHUD()
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					impulse(-float64(dx)*dragStrength, float64(dy)*dragStrength, 0)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					impulse(0, 0, -zoomStep)
				case uv.MouseWheelDown:
					impulse(0, 0, zoomStep)
				}
			}
		}
	}()

	// Main loop
	targetDuration := time.Second / time.Duration(cfg.FPS)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		now := time.Now()

		orbitMu.Lock()
		stale := view.needsFrame(orbit)
		orbitMu.Unlock()
		if !stale {
			time.Sleep(targetDuration)
			continue
		}

		view.mu.Lock()
		if view.resized {
			width, height = view.width, view.height
			view.resized = false
			term.Erase()
			term.Resize(width, height)
			termRenderer = render.NewTerminalRenderer(term, width, height)
			fb = render.NewFramebuffer(termRenderer.FramebufferSize())
		}
		frameCfg := rc
		frameCfg.MaxDepth = view.Depth
		frameCfg.Jitter = view.Jitter
		showHUD := view.ShowHUD
		view.mu.Unlock()

		orbitMu.Lock()
		orbit.Update()
		orbit.Apply(s.Camera)
		orbitMu.Unlock()
		if fb.Height > 0 {
			s.Camera.AspectRatio = float64(fb.Width) / float64(fb.Height)
		}

		tr := trace.NewTracer(s, s.Camera, frameCfg)
		r := render.NewRenderer(tr, fb)
		if err := r.Render(ctx, nil); err != nil {
			// Cancelled mid-frame.
			return nil
		}

		termRenderer.Render(fb)
		if err := termRenderer.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, showHUD, frameCfg.MaxDepth, frameCfg.Jitter, tr.Stats())

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
