package scene

import (
	"math"

	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

// Plane is an infinite plane through Point with the given Normal.
// It has no bounds and is tested outside the BVH.
type Plane struct {
	Point    math3d.Vec3
	Normal   math3d.Vec3
	Material *trace.Material
}

// NewPlane creates a plane; the normal is normalized.
func NewPlane(point, normal math3d.Vec3, mat *trace.Material) *Plane {
	return &Plane{Point: point, Normal: normal.Normalize(), Material: mat}
}

func (p *Plane) Intersect(r trace.Ray, tMax float64) (trace.Hit, bool) {
	denom := p.Normal.Dot(r.Dir)
	if math.Abs(denom) < 1e-12 {
		return trace.Hit{}, false
	}
	t := p.Point.Sub(r.Origin).Dot(p.Normal) / denom
	if t <= trace.RayEpsilon || t >= tMax {
		return trace.Hit{}, false
	}
	return trace.Hit{T: t, N: p.Normal, Material: p.Material}, true
}
