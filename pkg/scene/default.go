package scene

import (
	"math"

	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

// DefaultAmbient is the ambient level of scenes built by ForMesh.
const DefaultAmbient = 0.2

// ForMesh builds a scene around a bare model: a camera framing its bounds,
// a key directional light, a fill point light, and a floor plane under it.
func ForMesh(m *Mesh) *Scene {
	s := New()
	s.AddMesh(m, nil)

	b := m.Bounds()
	center := b.Center()
	radius := math.Max(b.Size().Len()/2, 1e-3)

	floor := &trace.Material{
		Name:      "floor",
		Ka:        math3d.Splat(0.05),
		Kd:        math3d.Splat(0.5),
		Kr:        math3d.Splat(0.1),
		Shininess: 1,
		Index:     1,
	}
	s.Add(NewPlane(math3d.V3(0, b.Min.Y, 0), math3d.Up(), floor))

	s.SetAmbient(math3d.Splat(DefaultAmbient))
	s.AddLight(trace.NewDirectionalLight(math3d.V3(-1, -2, -1), math3d.Splat(0.8)))
	s.AddLight(trace.NewPointLight(center.Add(math3d.V3(2, 3, 2).Scale(radius)), math3d.Splat(0.4)))

	s.Camera.Orbit(center, 0.6, 0.35, FrameDistance(s.Camera.FOV, radius))
	s.Build()
	return s
}

// FrameDistance returns how far a camera with vertical field of view fov
// must stand to fit a sphere of the given radius, with a small margin.
func FrameDistance(fov, radius float64) float64 {
	return 1.1 * radius / math.Sin(fov/2)
}
