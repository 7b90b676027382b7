package trace

import (
	"math"

	"github.com/taigrr/glint/pkg/math3d"
)

// maxShadowSteps bounds the number of transparent occluders a shadow ray
// marches through.
const maxShadowSteps = 256

// Light is a light source. Implementations are DirectionalLight, PointLight
// and AmbientLight; the scene is passed in rather than stored so that lights
// stay plain values.
type Light interface {
	// Direction returns the unit direction from p toward the light.
	Direction(p math3d.Vec3) math3d.Vec3
	// Color returns the emitted color as seen from p.
	Color(p math3d.Vec3) math3d.Vec3
	// DistanceAttenuation returns the falloff factor in (0, 1] at p.
	DistanceAttenuation(s Scene, p math3d.Vec3) float64
	// ShadowAttenuation returns the light color that reaches p after
	// passing through any occluders, black if an opaque one blocks it.
	ShadowAttenuation(s Scene, p math3d.Vec3) math3d.Vec3
}

// Attenuation holds point light falloff coefficients.
type Attenuation struct {
	Constant  float64 `json:"constant"`
	Linear    float64 `json:"linear"`
	Quadratic float64 `json:"quadratic"`
}

// Factor returns 1 / max(1, c0 + c1*d + c2*d²).
func (a Attenuation) Factor(d float64) float64 {
	return 1 / math.Max(1, a.Constant+a.Linear*d+a.Quadratic*d*d)
}

// DirectionalLight is infinitely far away and shines along Orientation.
type DirectionalLight struct {
	Orientation math3d.Vec3
	Col         math3d.Vec3
}

// NewDirectionalLight creates a directional light shining along orientation.
func NewDirectionalLight(orientation, color math3d.Vec3) *DirectionalLight {
	return &DirectionalLight{Orientation: orientation.Normalize(), Col: color}
}

func (l *DirectionalLight) Direction(math3d.Vec3) math3d.Vec3 {
	return l.Orientation.Negate().Normalize()
}

func (l *DirectionalLight) Color(math3d.Vec3) math3d.Vec3 {
	return l.Col
}

// DistanceAttenuation is always 1: the light is infinitely far away.
func (l *DirectionalLight) DistanceAttenuation(Scene, math3d.Vec3) float64 {
	return 1
}

func (l *DirectionalLight) ShadowAttenuation(s Scene, p math3d.Vec3) math3d.Vec3 {
	return marchShadow(s, p, l.Direction(p), l.Col, math.Inf(1))
}

// PointLight radiates from Position with distance falloff.
type PointLight struct {
	Position    math3d.Vec3
	Col         math3d.Vec3
	Attenuation Attenuation
}

// NewPointLight creates a point light with no falloff.
func NewPointLight(position, color math3d.Vec3) *PointLight {
	return &PointLight{Position: position, Col: color}
}

func (l *PointLight) Direction(p math3d.Vec3) math3d.Vec3 {
	return l.Position.Sub(p).Normalize()
}

func (l *PointLight) Color(math3d.Vec3) math3d.Vec3 {
	return l.Col
}

// DistanceAttenuation uses the scene-global coefficients when the scene
// overrides them, otherwise the light's own.
func (l *PointLight) DistanceAttenuation(s Scene, p math3d.Vec3) float64 {
	a := l.Attenuation
	if s != nil {
		if global, ok := s.AttenuationOverride(); ok {
			a = global
		}
	}
	return a.Factor(p.Distance(l.Position))
}

// ShadowAttenuation ignores occluders that lie beyond the light.
func (l *PointLight) ShadowAttenuation(s Scene, p math3d.Vec3) math3d.Vec3 {
	return marchShadow(s, p, l.Direction(p), l.Col, p.Distance(l.Position))
}

// AmbientLight is a flat color with no direction, shadow or falloff.
// Scenes fold it into AmbientLight() instead of listing it in Lights().
type AmbientLight struct {
	Col math3d.Vec3
}

func (l *AmbientLight) Direction(math3d.Vec3) math3d.Vec3 {
	return math3d.Zero3()
}

func (l *AmbientLight) Color(math3d.Vec3) math3d.Vec3 {
	return l.Col
}

func (l *AmbientLight) DistanceAttenuation(Scene, math3d.Vec3) float64 {
	return 1
}

func (l *AmbientLight) ShadowAttenuation(Scene, math3d.Vec3) math3d.Vec3 {
	return l.Col
}

// marchShadow walks from p toward a light along the unit vector dir,
// filtering color through every transparent surface it crosses. limit is
// the distance to the light; hits past it are ignored.
func marchShadow(s Scene, p, dir, color math3d.Vec3, limit float64) math3d.Vec3 {
	if s == nil {
		return color
	}

	r := NewRay(p, dir)
	remaining := limit
	for range maxShadowSteps {
		hit, ok := s.Intersect(r)
		if !ok {
			return color
		}
		remaining -= hit.T
		if remaining < RayEpsilon {
			return color
		}
		m := hit.material()
		if m.Opaque() {
			return math3d.Zero3()
		}
		color = color.Mul(m.Kt)
		r = NewRay(r.At(hit.T), dir)
	}
	return color
}
