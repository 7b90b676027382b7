package scene

import (
	"math"

	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

// unitCube is the object space extent of every Box.
var unitCube = NewAABB(math3d.Splat(-0.5), math3d.Splat(0.5))

// Box is the unit cube [-0.5, 0.5]³ placed in the world by an affine
// transform.
type Box struct {
	Material *trace.Material

	transform math3d.Mat4
	inverse   math3d.Mat4
	normal    math3d.Mat4
	bounds    AABB
}

// NewBox creates a box from an object-to-world transform.
func NewBox(transform math3d.Mat4, mat *trace.Material) *Box {
	return &Box{
		Material:  mat,
		transform: transform,
		inverse:   transform.Inverse(),
		normal:    transform.NormalMatrix(),
		bounds:    unitCube.Transform(transform),
	}
}

// NewAxisBox creates an axis aligned box spanning min to max.
func NewAxisBox(min, max math3d.Vec3, mat *trace.Material) *Box {
	size := max.Sub(min)
	center := min.Add(max).Scale(0.5)
	return NewBox(math3d.Translate(center).Mul(math3d.Scale(size)), mat)
}

// Transform returns the object-to-world transform.
func (b *Box) Transform() math3d.Mat4 {
	return b.transform
}

// Intersect moves the ray into object space without normalizing its
// direction, so t is the same in both spaces.
func (b *Box) Intersect(r trace.Ray, tMax float64) (trace.Hit, bool) {
	local := trace.NewRay(b.inverse.MulVec3(r.Origin), b.inverse.MulVec3Dir(r.Dir))

	t0, t1, ok := unitCube.slabs(local, math.Inf(-1), math.Inf(1))
	if !ok {
		return trace.Hit{}, false
	}
	t := t0
	if t <= trace.RayEpsilon {
		t = t1
	}
	if t <= trace.RayEpsilon || t >= tMax {
		return trace.Hit{}, false
	}

	n := b.normal.MulVec3Dir(faceNormal(local.At(t)))
	return trace.Hit{T: t, N: n, Material: b.Material}, true
}

func (b *Box) Bounds() AABB {
	return b.bounds
}

// faceNormal returns the outward axis normal of the unit cube face
// closest to p.
func faceNormal(p math3d.Vec3) math3d.Vec3 {
	a := p.Abs()
	switch {
	case a.X >= a.Y && a.X >= a.Z:
		return math3d.V3(math.Copysign(1, p.X), 0, 0)
	case a.Y >= a.Z:
		return math3d.V3(0, math.Copysign(1, p.Y), 0)
	default:
		return math3d.V3(0, 0, math.Copysign(1, p.Z))
	}
}
