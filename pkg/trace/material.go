package trace

import "github.com/taigrr/glint/pkg/math3d"

// Material holds the Phong and Whitted coefficients of a surface.
// All color-like fields are per channel RGB. Materials are shared by
// pointer and must not be modified once a render has started.
type Material struct {
	Name string

	Ke math3d.Vec3 // emissive
	Ka math3d.Vec3 // ambient
	Kd math3d.Vec3 // diffuse
	Ks math3d.Vec3 // specular
	Kr math3d.Vec3 // reflective
	Kt math3d.Vec3 // transmissive

	Shininess float64
	Index     float64 // index of refraction
}

var defaultMaterial = DefaultMaterial()

// DefaultMaterial returns an opaque, non-reflective mid grey.
func DefaultMaterial() Material {
	return Material{
		Name:  "default",
		Kd:    math3d.Splat(0.8),
		Index: 1,
	}
}

// Opaque reports whether the material blocks all light.
func (m *Material) Opaque() bool {
	return m.Kt.IsZero()
}
