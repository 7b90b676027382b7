package trace

import (
	"math"

	"github.com/taigrr/glint/pkg/math3d"
)

const tolerance = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func vecNear(a, b math3d.Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

type testSphere struct {
	center math3d.Vec3
	radius float64
	mat    *Material
}

func (s testSphere) intersect(r Ray) (Hit, bool) {
	oc := r.Origin.Sub(s.center)
	a := r.Dir.Dot(r.Dir)
	b := 2 * oc.Dot(r.Dir)
	c := oc.Dot(oc) - s.radius*s.radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}, false
	}
	sq := math.Sqrt(disc)
	t := (-b - sq) / (2 * a)
	if t <= RayEpsilon {
		t = (-b + sq) / (2 * a)
	}
	if t <= RayEpsilon {
		return Hit{}, false
	}
	return Hit{T: t, N: r.At(t).Sub(s.center), Material: s.mat}, true
}

type testPlane struct {
	point  math3d.Vec3
	normal math3d.Vec3
	mat    *Material
}

func (p testPlane) intersect(r Ray) (Hit, bool) {
	denom := p.normal.Dot(r.Dir)
	if denom == 0 {
		return Hit{}, false
	}
	t := p.point.Sub(r.Origin).Dot(p.normal) / denom
	if t <= RayEpsilon {
		return Hit{}, false
	}
	return Hit{T: t, N: p.normal, Material: p.mat}, true
}

// testScene is a linear list of spheres and planes.
type testScene struct {
	spheres []testSphere
	planes  []testPlane
	lights  []Light
	ambient math3d.Vec3
	atten   *Attenuation
}

func (s *testScene) Intersect(r Ray) (Hit, bool) {
	var best Hit
	found := false
	consider := func(h Hit, ok bool) {
		if ok && (!found || h.T < best.T) {
			best, found = h, true
		}
	}
	for _, sp := range s.spheres {
		consider(sp.intersect(r))
	}
	for _, pl := range s.planes {
		consider(pl.intersect(r))
	}
	return best, found
}

func (s *testScene) AmbientLight() math3d.Vec3 { return s.ambient }

func (s *testScene) Lights() []Light { return s.lights }

func (s *testScene) AttenuationOverride() (Attenuation, bool) {
	if s.atten != nil {
		return *s.atten, true
	}
	return Attenuation{}, false
}

// testCamera sits at the origin looking down -Z with a 90 degree field of view.
type testCamera struct{}

func (testCamera) RayThrough(x, y float64) Ray {
	return NewRay(math3d.Zero3(), math3d.V3(2*x-1, 1-2*y, -1))
}
