package scene

import (
	"math"

	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

// Sphere is a sphere given by center and radius.
type Sphere struct {
	Center   math3d.Vec3
	Radius   float64
	Material *trace.Material
}

// NewSphere creates a new sphere.
func NewSphere(center math3d.Vec3, radius float64, mat *trace.Material) *Sphere {
	return &Sphere{Center: center, Radius: radius, Material: mat}
}

func (s *Sphere) Intersect(r trace.Ray, tMax float64) (trace.Hit, bool) {
	oc := r.Origin.Sub(s.Center)
	a := r.Dir.Dot(r.Dir)
	halfB := oc.Dot(r.Dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 || a == 0 {
		return trace.Hit{}, false
	}
	sq := math.Sqrt(disc)

	t := (-halfB - sq) / a
	if t <= trace.RayEpsilon || t >= tMax {
		t = (-halfB + sq) / a
		if t <= trace.RayEpsilon || t >= tMax {
			return trace.Hit{}, false
		}
	}

	n := r.At(t).Sub(s.Center).Scale(1 / s.Radius)
	return trace.Hit{T: t, N: n, Material: s.Material}, true
}

func (s *Sphere) Bounds() AABB {
	rad := math3d.Splat(s.Radius)
	return NewAABB(s.Center.Sub(rad), s.Center.Add(rad))
}
