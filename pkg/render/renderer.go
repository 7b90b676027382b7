package render

import (
	"context"

	"github.com/taigrr/glint/pkg/trace"
)

// Renderer drives a sampler over every pixel of a framebuffer, one row at
// a time on the calling goroutine.
type Renderer struct {
	fb      *Framebuffer
	sampler *trace.Sampler
}

// NewRenderer creates a renderer writing t's image into fb. A nil
// tracer, or one without a scene, makes every render a no-op.
func NewRenderer(t *trace.Tracer, fb *Framebuffer) *Renderer {
	r := &Renderer{fb: fb}
	if t != nil {
		r.sampler = trace.NewSampler(t)
	}
	return r
}

// Framebuffer returns the buffer being rendered into.
func (r *Renderer) Framebuffer() *Framebuffer {
	return r.fb
}

// Tracer returns the tracer in use, or nil.
func (r *Renderer) Tracer() *trace.Tracer {
	if r.sampler == nil {
		return nil
	}
	return r.sampler.Tracer()
}

// Ready reports whether there is a scene to render.
func (r *Renderer) Ready() bool {
	return r.sampler != nil && r.sampler.Tracer().Ready() && r.fb != nil
}

// RenderPixel traces pixel (i, j) into the framebuffer.
func (r *Renderer) RenderPixel(i, j int) {
	if !r.Ready() {
		return
	}
	r.sampler.RenderPixel(r.fb.Pix, r.fb.Width, r.fb.Height, i, j)
}

// RenderLines traces rows [start, stop). Cancellation is checked before
// each row, never mid-row.
func (r *Renderer) RenderLines(ctx context.Context, start, stop int) error {
	if !r.Ready() {
		return nil
	}
	start = max(start, 0)
	stop = min(stop, r.fb.Height)

	for j := start; j < stop; j++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range r.fb.Width {
			r.sampler.RenderPixel(r.fb.Pix, r.fb.Width, r.fb.Height, i, j)
		}
	}
	return nil
}

// Render traces the whole frame top to bottom. progress, when non-nil, is
// called after each finished row with the number of rows done so far.
func (r *Renderer) Render(ctx context.Context, progress func(done, total int)) error {
	if !r.Ready() {
		return nil
	}
	total := r.fb.Height
	for j := range total {
		if err := r.RenderLines(ctx, j, j+1); err != nil {
			return err
		}
		if progress != nil {
			progress(j+1, total)
		}
	}
	return nil
}
