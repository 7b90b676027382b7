package trace

import (
	"sync/atomic"

	"github.com/taigrr/glint/pkg/math3d"
)

// Scene is the read-only geometry and lighting query the tracer consumes.
// Intersect must be free of side effects so that it can be called from
// several goroutines at once.
type Scene interface {
	// Intersect returns the nearest hit along r with t > RayEpsilon.
	Intersect(r Ray) (Hit, bool)
	// AmbientLight is the flat ambient color added once per shading point.
	AmbientLight() math3d.Vec3
	// Lights returns the shadow casting lights in a stable order.
	Lights() []Light
	// AttenuationOverride reports scene-global point light falloff
	// coefficients, if the scene overrides the per-light ones.
	AttenuationOverride() (Attenuation, bool)
}

// Camera maps normalized image coordinates in [0,1)² to world space rays.
type Camera interface {
	RayThrough(x, y float64) Ray
}

// Stats counts the rays cast by a Tracer. Counters are updated atomically.
type Stats struct {
	Primary       atomic.Uint64
	Reflected     atomic.Uint64
	Refracted     atomic.Uint64
	Intersections atomic.Uint64
}

// StatsSnapshot is a plain copy of Stats.
type StatsSnapshot struct {
	Primary       uint64
	Reflected     uint64
	Refracted     uint64
	Intersections uint64
}

func (s *Stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		Primary:       s.Primary.Load(),
		Reflected:     s.Reflected.Load(),
		Refracted:     s.Refracted.Load(),
		Intersections: s.Intersections.Load(),
	}
}

func (s *Stats) reset() {
	s.Primary.Store(0)
	s.Reflected.Store(0)
	s.Refracted.Store(0)
	s.Intersections.Store(0)
}

// sceneView layers the per-render overrides of a RenderConfig over a scene
// without modifying it, and counts intersection queries.
type sceneView struct {
	Scene
	ambient *math3d.Vec3
	atten   *Attenuation
	stats   *Stats
}

func (v *sceneView) Intersect(r Ray) (Hit, bool) {
	v.stats.Intersections.Add(1)
	return v.Scene.Intersect(r)
}

func (v *sceneView) AmbientLight() math3d.Vec3 {
	if v.ambient != nil {
		return *v.ambient
	}
	return v.Scene.AmbientLight()
}

func (v *sceneView) AttenuationOverride() (Attenuation, bool) {
	if v.atten != nil {
		return *v.atten, true
	}
	return v.Scene.AttenuationOverride()
}
