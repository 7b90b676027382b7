// Package scene holds the geometry, lights and camera a render is made of:
// primitives, a BVH over the bounded ones, glTF mesh import and a JSON
// scene description format.
package scene

import (
	"math"

	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

// Scene implements trace.Scene. Bounded objects live in a BVH, unbounded
// ones such as planes are tested one by one.
//
// Build must be called after the last Add and before rendering; after
// that the scene is read only and safe for concurrent Intersect calls.
type Scene struct {
	Camera *Camera

	bounded   []Bounded
	unbounded []Object
	bvh       *BVH

	lights  []trace.Light
	ambient math3d.Vec3
	atten   *trace.Attenuation
}

// New creates an empty scene with a default camera.
func New() *Scene {
	return &Scene{Camera: NewCamera()}
}

// Add inserts an object. Objects implementing Bounded go into the BVH.
func (s *Scene) Add(objs ...Object) {
	for _, o := range objs {
		if b, ok := o.(Bounded); ok {
			s.bounded = append(s.bounded, b)
		} else {
			s.unbounded = append(s.unbounded, o)
		}
	}
	s.bvh = nil
}

// AddMesh adds every triangle of m. A non-nil override replaces the
// mesh's own materials.
func (s *Scene) AddMesh(m *Mesh, override *trace.Material) {
	for _, t := range m.Triangles(override) {
		s.Add(t)
	}
}

// AddLight adds a light. Ambient lights are summed into the scene ambient
// color instead of the shadow casting list.
func (s *Scene) AddLight(l trace.Light) {
	if a, ok := l.(*trace.AmbientLight); ok {
		s.ambient = s.ambient.Add(a.Col)
		return
	}
	s.lights = append(s.lights, l)
}

// SetAmbient replaces the ambient color.
func (s *Scene) SetAmbient(c math3d.Vec3) {
	s.ambient = c
}

// SetAttenuationOverride makes every point light use a instead of its own
// coefficients.
func (s *Scene) SetAttenuationOverride(a trace.Attenuation) {
	s.atten = &a
}

// ClearAttenuationOverride restores per-light coefficients.
func (s *Scene) ClearAttenuationOverride() {
	s.atten = nil
}

// Build constructs the BVH.
func (s *Scene) Build() {
	s.bvh = NewBVH(s.bounded)
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	return len(s.bounded) + len(s.unbounded)
}

// Bounds returns the box around all bounded objects.
func (s *Scene) Bounds() (AABB, bool) {
	if len(s.bounded) == 0 {
		return AABB{}, false
	}
	b := s.bounded[0].Bounds()
	for _, o := range s.bounded[1:] {
		b = b.Union(o.Bounds())
	}
	return b, true
}

// Intersect returns the nearest hit over all objects. Before Build it
// falls back to testing every object.
func (s *Scene) Intersect(r trace.Ray) (trace.Hit, bool) {
	var best trace.Hit
	found := false
	tMax := math.Inf(1)

	if s.bvh != nil {
		if h, ok := s.bvh.Intersect(r, tMax); ok {
			best, found, tMax = h, true, h.T
		}
	} else {
		for _, o := range s.bounded {
			if h, ok := o.Intersect(r, tMax); ok {
				best, found, tMax = h, true, h.T
			}
		}
	}

	for _, o := range s.unbounded {
		if h, ok := o.Intersect(r, tMax); ok {
			best, found, tMax = h, true, h.T
		}
	}
	return best, found
}

func (s *Scene) AmbientLight() math3d.Vec3 {
	return s.ambient
}

func (s *Scene) Lights() []trace.Light {
	return s.lights
}

func (s *Scene) AttenuationOverride() (trace.Attenuation, bool) {
	if s.atten == nil {
		return trace.Attenuation{}, false
	}
	return *s.atten, true
}
