package trace

import (
	"math/rand/v2"

	"github.com/taigrr/glint/pkg/math3d"
)

// Sampler decides how many primary rays to cast for a pixel and where.
// It draws its knobs from the tracer's RenderConfig.
type Sampler struct {
	tracer *Tracer
}

// NewSampler creates a sampler driving t.
func NewSampler(t *Tracer) *Sampler {
	return &Sampler{tracer: t}
}

// Tracer returns the tracer the sampler drives.
func (s *Sampler) Tracer() *Tracer {
	return s.tracer
}

// Sample returns the unclamped average color of pixel (i, j) in a w×h image.
func (s *Sampler) Sample(i, j, w, h int) math3d.Vec3 {
	cfg := s.tracer.cfg
	x := float64(i) / float64(w)
	y := float64(j) / float64(h)
	pw := 1 / float64(w)
	ph := 1 / float64(h)

	switch {
	case cfg.Adaptive:
		return s.adaptive(x, y, pw, ph, cfg.AdaptiveDepth)
	case cfg.Samples > 1:
		return s.grid(x, y, pw, ph, i, j)
	default:
		return s.tracer.Trace(x, y)
	}
}

// RenderPixel samples pixel (i, j) and writes it as three bytes into pix,
// a caller-owned w×h×3 buffer. It does nothing when the tracer has no
// scene or the pixel lies outside the buffer.
func (s *Sampler) RenderPixel(pix []byte, w, h, i, j int) {
	if !s.tracer.Ready() {
		return
	}
	if i < 0 || j < 0 || i >= w || j >= h {
		return
	}
	off := (j*w + i) * 3
	if off+3 > len(pix) {
		return
	}

	c := s.Sample(i, j, w, h).Clamp()
	pix[off] = uint8(c.X * 255)
	pix[off+1] = uint8(c.Y * 255)
	pix[off+2] = uint8(c.Z * 255)
}

// grid averages an n×n regular pattern across the pixel. With jitter on,
// each sample moves randomly within its sub-cell; the generator is seeded
// from the render seed and the pixel so every run is reproducible.
func (s *Sampler) grid(x, y, pw, ph float64, i, j int) math3d.Vec3 {
	cfg := s.tracer.cfg
	n := cfg.Samples
	step := 1 / float64(n)

	var rng *rand.Rand
	if cfg.Jitter {
		rng = rand.New(rand.NewPCG(cfg.Seed, pixelSeed(i, j)))
	}

	var sum math3d.Vec3
	for a := range n {
		for b := range n {
			ox := (float64(a)+0.5)*step - 0.5
			oy := (float64(b)+0.5)*step - 0.5
			if rng != nil {
				ox += (rng.Float64() - 0.5) * step
				oy += (rng.Float64() - 0.5) * step
			}
			sum = sum.Add(s.tracer.Trace(x+ox*pw, y+oy*ph))
		}
	}
	return sum.Scale(step * step)
}

// adaptive samples the corners of the w×h cell centred on (x, y) and
// recurses into its quadrants while all four corners stray from their
// average.
func (s *Sampler) adaptive(x, y, w, h float64, depth int) math3d.Vec3 {
	if depth <= 0 {
		return s.tracer.Trace(x, y)
	}

	hw, hh := w/2, h/2
	corners := [4]math3d.Vec3{
		s.tracer.Trace(x-hw, y-hh),
		s.tracer.Trace(x+hw, y-hh),
		s.tracer.Trace(x-hw, y+hh),
		s.tracer.Trace(x+hw, y+hh),
	}
	avg := corners[0].Add(corners[1]).Add(corners[2]).Add(corners[3]).Scale(0.25)

	if !disagree(corners, avg, s.tracer.cfg.AdaptiveThreshold) {
		return avg
	}

	qw, qh := w/4, h/4
	sum := s.adaptive(x-qw, y-qh, hw, hh, depth-1).
		Add(s.adaptive(x+qw, y-qh, hw, hh, depth-1)).
		Add(s.adaptive(x-qw, y+qh, hw, hh, depth-1)).
		Add(s.adaptive(x+qw, y+qh, hw, hh, depth-1))
	return sum.Scale(0.25)
}

// disagree reports whether every corner differs from avg by more than
// threshold in at least one channel. A cell with any corner on the
// average is left whole.
func disagree(corners [4]math3d.Vec3, avg math3d.Vec3, threshold float64) bool {
	for _, c := range corners {
		if c.Sub(avg).Abs().MaxComponent() <= threshold {
			return false
		}
	}
	return true
}

func pixelSeed(i, j int) uint64 {
	return uint64(uint32(i))<<32 | uint64(uint32(j))
}
