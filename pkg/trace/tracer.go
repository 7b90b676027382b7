package trace

import (
	"math"

	"github.com/taigrr/glint/pkg/math3d"
)

// Tracer casts primary rays through a camera and follows them through
// reflections and refractions up to RenderConfig.MaxDepth bounces.
// A Tracer is safe for concurrent use once constructed.
type Tracer struct {
	scene  Scene
	camera Camera
	cfg    RenderConfig
	stats  *Stats
}

// NewTracer binds a scene and camera to a render configuration. The
// configuration's ambient and attenuation overrides are layered over s
// without modifying it. A nil scene or camera yields a tracer that renders
// black.
func NewTracer(s Scene, cam Camera, cfg RenderConfig) *Tracer {
	t := &Tracer{camera: cam, cfg: cfg, stats: &Stats{}}
	if s != nil {
		t.scene = &sceneView{
			Scene:   s,
			ambient: cfg.Ambient,
			atten:   cfg.Attenuation,
			stats:   t.stats,
		}
	}
	return t
}

// Ready reports whether the tracer has a scene and a camera to render.
func (t *Tracer) Ready() bool {
	return t.scene != nil && t.camera != nil
}

// Config returns the configuration the tracer was built with.
func (t *Tracer) Config() RenderConfig {
	return t.cfg
}

// Scene returns the scene as the tracer sees it, with overrides applied.
func (t *Tracer) Scene() Scene {
	return t.scene
}

// Stats returns a copy of the ray counters.
func (t *Tracer) Stats() StatsSnapshot {
	return t.stats.snapshot()
}

// ResetStats zeroes the ray counters.
func (t *Tracer) ResetStats() {
	t.stats.reset()
}

// Trace returns the clamped color seen through normalized image
// coordinates (x, y).
func (t *Tracer) Trace(x, y float64) math3d.Vec3 {
	if !t.Ready() {
		return math3d.Zero3()
	}
	t.stats.Primary.Add(1)
	r := t.camera.RayThrough(x, y)
	return t.TraceRay(r, math3d.One3(), t.cfg.MaxDepth, 1.0)
}

// TraceRay returns the clamped color carried back along r. weight is the
// throughput accumulated so far, depth the remaining bounce budget and
// prevIndex the refractive index of the medium the ray was spawned from.
func (t *Tracer) TraceRay(r Ray, weight math3d.Vec3, depth int, prevIndex float64) math3d.Vec3 {
	if t.scene == nil {
		return math3d.Zero3()
	}

	hit, ok := t.scene.Intersect(r)
	if !ok {
		return math3d.Zero3()
	}

	color := Shade(t.scene, r, hit)
	if depth <= 0 {
		return color.Clamp()
	}

	m := hit.material()
	p := r.At(hit.T)
	d := r.Dir.Normalize()

	// Orient the normal against the incoming ray so that the epsilon
	// offsets land on the correct side of back-facing hits.
	n := hit.N.Normalize()
	cosi := -n.Dot(d)
	if cosi < 0 {
		n = n.Negate()
		cosi = -cosi
	}

	if !m.Kr.IsZero() {
		w := weight.Mul(m.Kr)
		if t.worthTracing(w) {
			t.stats.Reflected.Add(1)
			reflected := NewRay(p.Add(n.Scale(RayEpsilon)), d.Reflect(n))
			color = color.Add(m.Kr.Mul(t.TraceRay(reflected, w, depth-1, m.Index)))
		}
	}

	if !m.Kt.IsZero() {
		w := weight.Mul(m.Kt)
		if dir, ok := refract(d, n, cosi, m.Index, prevIndex); ok && t.worthTracing(w) {
			t.stats.Refracted.Add(1)
			refracted := NewRay(p.Sub(n.Scale(RayEpsilon)), dir)
			color = color.Add(m.Kt.Mul(t.TraceRay(refracted, w, depth-1, m.Index)))
		}
	}

	return color.Clamp()
}

func (t *Tracer) worthTracing(weight math3d.Vec3) bool {
	return t.cfg.TerminationThreshold <= 0 || weight.MaxComponent() >= t.cfg.TerminationThreshold
}

// refract bends the unit direction d through a surface with unit normal n
// facing the incoming ray. A ray whose previous medium has the material's
// own index is taken to be inside the material and leaving into air.
// ok is false on total internal reflection.
func refract(d, n math3d.Vec3, cosi, index, prevIndex float64) (math3d.Vec3, bool) {
	ni, nt := 1.0, index
	if index == prevIndex {
		ni, nt = index, 1.0
	}
	if nt == 0 {
		return math3d.Vec3{}, false
	}

	nr := ni / nt
	disc := 1 - nr*nr*(1-cosi*cosi)
	if disc <= RayEpsilon {
		return math3d.Vec3{}, false
	}
	return d.Scale(nr).Add(n.Scale(nr*cosi - math.Sqrt(disc))), true
}
