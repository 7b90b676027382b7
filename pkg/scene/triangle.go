package scene

import (
	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

// Triangle is a single triangle. With vertex normals set it shades
// smoothly; otherwise it uses the geometric normal from the winding
// V0, V1, V2.
type Triangle struct {
	V0, V1, V2 math3d.Vec3
	Material   *trace.Material

	// Optional per-vertex attributes.
	N0, N1, N2    math3d.Vec3
	UV0, UV1, UV2 [2]float64
	Texture       *Texture

	normal math3d.Vec3
	smooth bool
	bounds AABB
}

// NewTriangle creates a flat shaded triangle.
func NewTriangle(v0, v1, v2 math3d.Vec3, mat *trace.Material) *Triangle {
	t := &Triangle{V0: v0, V1: v1, V2: v2, Material: mat}
	t.normal = v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	t.bounds = BoundPoints(v0, v1, v2)
	return t
}

// SetNormals enables smooth shading with the given vertex normals.
// Zero normals are ignored.
func (t *Triangle) SetNormals(n0, n1, n2 math3d.Vec3) {
	if n0.IsZero() || n1.IsZero() || n2.IsZero() {
		return
	}
	t.N0, t.N1, t.N2 = n0, n1, n2
	t.smooth = true
}

// Normal returns the geometric normal.
func (t *Triangle) Normal() math3d.Vec3 {
	return t.normal
}

// Intersect uses the Möller-Trumbore algorithm.
func (t *Triangle) Intersect(r trace.Ray, tMax float64) (trace.Hit, bool) {
	const eps = 1e-12

	e1 := t.V1.Sub(t.V0)
	e2 := t.V2.Sub(t.V0)
	h := r.Dir.Cross(e2)
	a := e1.Dot(h)
	if a > -eps && a < eps {
		return trace.Hit{}, false
	}

	f := 1 / a
	s := r.Origin.Sub(t.V0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return trace.Hit{}, false
	}
	q := s.Cross(e1)
	v := f * r.Dir.Dot(q)
	if v < 0 || u+v > 1 {
		return trace.Hit{}, false
	}

	tt := f * e2.Dot(q)
	if tt <= trace.RayEpsilon || tt >= tMax {
		return trace.Hit{}, false
	}

	w := 1 - u - v
	n := t.normal
	if t.smooth {
		n = t.N0.Scale(w).Add(t.N1.Scale(u)).Add(t.N2.Scale(v))
	}

	mat := t.Material
	if t.Texture != nil {
		uu := w*t.UV0[0] + u*t.UV1[0] + v*t.UV2[0]
		vv := w*t.UV0[1] + u*t.UV1[1] + v*t.UV2[1]
		mat = t.Texture.Modulate(mat, uu, vv)
	}

	return trace.Hit{T: tt, N: n, Material: mat}, true
}

func (t *Triangle) Bounds() AABB {
	return t.bounds
}
