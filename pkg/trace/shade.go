package trace

import (
	"math"

	"github.com/taigrr/glint/pkg/math3d"
)

// Shade evaluates the Phong model at the hit: emission, ambient, and for
// every light the diffuse and specular terms scaled by distance and shadow
// attenuation. The result is not clamped.
func Shade(s Scene, r Ray, h Hit) math3d.Vec3 {
	m := h.material()
	p := r.At(h.T)
	n := h.N.Normalize()
	view := r.Dir.Normalize().Negate()

	color := m.Ke.Add(m.Ka.Mul(s.AmbientLight()))

	for _, l := range s.Lights() {
		// Shadow attenuation already carries the light color, filtered by
		// any transparent occluders.
		light := l.ShadowAttenuation(s, p).Scale(l.DistanceAttenuation(s, p))
		if light.IsZero() {
			continue
		}

		toLight := l.Direction(p).Normalize()
		diffuse := m.Kd.Scale(math.Max(n.Dot(toLight), 0))

		var specular math3d.Vec3
		reflected := toLight.Negate().Reflect(n)
		if rv := view.Dot(reflected); rv > 0 {
			specular = m.Ks.Scale(math.Pow(rv, m.Shininess))
		}

		color = color.Add(light.Mul(diffuse.Add(specular)))
	}

	return color
}
