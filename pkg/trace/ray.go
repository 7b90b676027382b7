// Package trace is the recursive visibility and shading engine: primary ray
// generation, Whitted-style reflection and refraction, Phong shading with
// shadowed lights, and the per-pixel samplers that drive it.
package trace

import "github.com/taigrr/glint/pkg/math3d"

// RayEpsilon is the offset used to keep secondary and shadow rays from
// re-hitting the surface they start on. Scenes must ignore hits with t <= RayEpsilon.
const RayEpsilon = 1e-5

// Ray is a half line origin + t*dir. Dir is not necessarily unit length.
type Ray struct {
	Origin math3d.Vec3
	Dir    math3d.Vec3
}

// NewRay creates a ray.
func NewRay(origin, dir math3d.Vec3) Ray {
	return Ray{Origin: origin, Dir: dir}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) math3d.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Hit is the nearest intersection reported by a Scene. N is not guaranteed
// to be unit length.
type Hit struct {
	T        float64
	N        math3d.Vec3
	Material *Material
}

func (h Hit) material() *Material {
	if h.Material == nil {
		return &defaultMaterial
	}
	return h.Material
}
