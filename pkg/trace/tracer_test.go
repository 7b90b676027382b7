package trace

import (
	"math"
	"testing"

	"github.com/taigrr/glint/pkg/math3d"
)

func TestTraceMiss(t *testing.T) {
	tests := []struct {
		name  string
		scene *testScene
	}{
		{"empty", &testScene{}},
		{"lit empty", &testScene{
			ambient: math3d.Splat(1),
			lights:  []Light{NewPointLight(math3d.V3(0, 5, 0), math3d.One3())},
		}},
		{"sphere behind camera", &testScene{
			ambient: math3d.Splat(1),
			spheres: []testSphere{{center: math3d.V3(0, 0, 5), radius: 1}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRenderConfig()
			tr := NewTracer(tt.scene, testCamera{}, cfg)
			for _, xy := range [][2]float64{{0, 0}, {0.5, 0.5}, {0.9, 0.1}} {
				if got := tr.Trace(xy[0], xy[1]); got != math3d.Zero3() {
					t.Errorf("Trace(%v) = %v, want black", xy, got)
				}
			}
		})
	}
}

func TestTraceClamp(t *testing.T) {
	light := NewPointLight(math3d.V3(0, 0, 0), math3d.Splat(3))
	tests := []struct {
		name string
		mat  Material
	}{
		{"bright emissive", Material{Ke: math3d.Splat(7), Index: 1}},
		{"huge diffuse", Material{Kd: math3d.V3(10, 20, 30), Ka: math3d.Splat(4), Index: 1}},
		{"huge specular", Material{Ks: math3d.Splat(50), Shininess: 1, Index: 1}},
		{"negative", Material{Kd: math3d.Splat(-2), Index: 1}},
		{"mirror and glass", Material{Kd: math3d.Splat(2), Kr: math3d.Splat(3), Kt: math3d.Splat(3), Index: 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mat := tt.mat
			s := &testScene{
				ambient: math3d.Splat(1),
				lights:  []Light{light},
				spheres: []testSphere{{center: math3d.V3(0, 0, -5), radius: 1, mat: &mat}},
				planes:  []testPlane{{point: math3d.V3(0, -1, 0), normal: math3d.Up(), mat: &mat}},
			}
			cfg := DefaultRenderConfig()
			cfg.MaxDepth = 4
			tr := NewTracer(s, testCamera{}, cfg)
			for _, xy := range [][2]float64{{0.5, 0.5}, {0.5, 0.9}, {0.45, 0.55}} {
				got := tr.Trace(xy[0], xy[1])
				for _, c := range []float64{got.X, got.Y, got.Z} {
					if c < 0 || c > 1 {
						t.Fatalf("Trace(%v) = %v, channel outside [0,1]", xy, got)
					}
				}
			}
		})
	}
}

func TestTraceRecursionBound(t *testing.T) {
	glass := &Material{Kd: math3d.Splat(0.2), Kr: math3d.Splat(0.5), Kt: math3d.Splat(0.5), Index: 1}
	plain := &Material{Kd: math3d.Splat(0.5), Index: 1}

	tests := []struct {
		name     string
		mat      *Material
		pruned   bool
		maxDepth int
	}{
		{"glass depth 0", glass, false, 0},
		{"glass depth 3", glass, false, 3},
		{"glass depth 6", glass, false, 6},
		{"diffuse depth 6", plain, true, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The camera sits inside a large sphere so every ray keeps hitting it.
			s := &testScene{
				ambient: math3d.Splat(0.1),
				spheres: []testSphere{{center: math3d.Zero3(), radius: 10, mat: tt.mat}},
			}
			cfg := DefaultRenderConfig()
			cfg.MaxDepth = tt.maxDepth
			tr := NewTracer(s, testCamera{}, cfg)
			tr.Trace(0.3, 0.6)

			st := tr.Stats()
			calls := st.Primary + st.Reflected + st.Refracted
			bound := uint64(1)<<(tt.maxDepth+1) - 1
			if calls > bound {
				t.Errorf("traceRay calls = %d, want <= %d", calls, bound)
			}
			if tt.pruned && st.Reflected+st.Refracted != 0 {
				t.Errorf("secondary rays = %d, want 0 for a diffuse scene", st.Reflected+st.Refracted)
			}
			if !tt.pruned && tt.maxDepth > 0 && st.Reflected == 0 {
				t.Error("expected reflected rays")
			}
		})
	}
}

func TestTraceTerminationThreshold(t *testing.T) {
	dim := &Material{Kr: math3d.Splat(0.1), Index: 1}
	s := &testScene{spheres: []testSphere{{center: math3d.Zero3(), radius: 10, mat: dim}}}

	cfg := DefaultRenderConfig()
	cfg.MaxDepth = 5
	full := NewTracer(s, testCamera{}, cfg)
	full.Trace(0.5, 0.5)
	if got := full.Stats().Reflected; got != 5 {
		t.Fatalf("reflected without threshold = %d, want 5", got)
	}

	// Throughput after two bounces is 0.01, below 0.05.
	cfg.TerminationThreshold = 0.05
	pruned := NewTracer(s, testCamera{}, cfg)
	pruned.Trace(0.5, 0.5)
	if got := pruned.Stats().Reflected; got != 1 {
		t.Errorf("reflected with threshold = %d, want 1", got)
	}
}

func TestTraceMirror(t *testing.T) {
	mirror := &Material{Ka: math3d.Splat(0.1), Kr: math3d.One3(), Index: 1}
	target := &Material{Ka: math3d.V3(0.2, 0.4, 0.6), Index: 1}
	s := &testScene{
		ambient: math3d.One3(),
		planes: []testPlane{
			{point: math3d.V3(0, 0, -1), normal: math3d.V3(0, 0, 1), mat: mirror},
			{point: math3d.V3(0, 0, 1), normal: math3d.V3(0, 0, -1), mat: target},
		},
	}

	cfg := DefaultRenderConfig()
	cfg.MaxDepth = 1
	tr := NewTracer(s, testCamera{}, cfg)

	r := NewRay(math3d.Zero3(), math3d.V3(0, 0, -1))
	got := tr.TraceRay(r, math3d.One3(), 1, 1)

	mirrorHit, _ := s.Intersect(r)
	reflected := NewRay(r.At(mirrorHit.T), math3d.V3(0, 0, 1))
	targetHit, _ := s.Intersect(reflected)
	want := Shade(s, r, mirrorHit).Add(mirror.Kr.Mul(Shade(s, reflected, targetHit))).Clamp()

	if !vecNear(got, want) {
		t.Errorf("TraceRay = %v, want %v", got, want)
	}
	if !vecNear(got, math3d.V3(0.3, 0.5, 0.7)) {
		t.Errorf("TraceRay = %v, want (0.3, 0.5, 0.7)", got)
	}

	if direct := tr.TraceRay(r, math3d.One3(), 0, 1); !vecNear(direct, math3d.Splat(0.1)) {
		t.Errorf("depth 0 = %v, want mirror shading only", direct)
	}
}

func TestTraceEndToEnd(t *testing.T) {
	mat := &Material{
		Ka:        math3d.Splat(0.1),
		Kd:        math3d.V3(0.5, 0.2, 0.1),
		Ks:        math3d.Splat(0.2),
		Kr:        math3d.One3(),
		Shininess: 10,
		Index:     1,
	}
	s := &testScene{
		ambient: math3d.One3(),
		lights:  []Light{NewPointLight(math3d.Zero3(), math3d.One3())},
		spheres: []testSphere{{center: math3d.V3(0, 0, -5), radius: 1, mat: mat}},
	}

	cfg := DefaultRenderConfig()
	cfg.MaxDepth = 0
	tr := NewTracer(s, testCamera{}, cfg)
	sampler := NewSampler(tr)

	const w, h = 4, 4
	got := sampler.Sample(2, 2, w, h)
	want := math3d.V3(0.8, 0.5, 0.4)
	if !vecNear(got, want) {
		t.Errorf("Sample(center) = %v, want %v", got, want)
	}

	pix := make([]byte, w*h*3)
	sampler.RenderPixel(pix, w, h, 2, 2)
	off := (2*w + 2) * 3
	for k, wb := range []byte{204, 127, 102} {
		if d := int(pix[off+k]) - int(wb); d < -1 || d > 1 {
			t.Errorf("pixel channel %d = %d, want %d", k, pix[off+k], wb)
		}
	}
	if st := tr.Stats(); st.Reflected != 0 || st.Refracted != 0 {
		t.Errorf("depth 0 spawned secondary rays: %+v", st)
	}
}

func TestTraceOverrides(t *testing.T) {
	mat := &Material{Ka: math3d.One3(), Index: 1}
	s := &testScene{
		ambient: math3d.Splat(0.2),
		spheres: []testSphere{{center: math3d.V3(0, 0, -5), radius: 1, mat: mat}},
	}

	cfg := DefaultRenderConfig()
	base := NewTracer(s, testCamera{}, cfg).Trace(0.5, 0.5)
	if !vecNear(base, math3d.Splat(0.2)) {
		t.Fatalf("scene ambient = %v, want 0.2", base)
	}

	amb := math3d.V3(0.5, 0, 1)
	cfg.Ambient = &amb
	got := NewTracer(s, testCamera{}, cfg).Trace(0.5, 0.5)
	if !vecNear(got, amb) {
		t.Errorf("override ambient = %v, want %v", got, amb)
	}
	if s.ambient != math3d.Splat(0.2) {
		t.Error("override modified the scene")
	}
}

func TestRefract(t *testing.T) {
	n := math3d.V3(0, 0, 1)

	t.Run("normal incidence", func(t *testing.T) {
		d := math3d.V3(0, 0, -1)
		got, ok := refract(d, n, 1, 1.5, 1)
		if !ok || !vecNear(got, d) {
			t.Errorf("refract = %v, %v; want %v, true", got, ok, d)
		}
	})

	t.Run("bends toward normal entering", func(t *testing.T) {
		d := math3d.V3(1, 0, -1).Normalize()
		got, ok := refract(d, n, -n.Dot(d), 1.5, 1)
		if !ok {
			t.Fatal("unexpected total internal reflection")
		}
		if got.X >= d.X {
			t.Errorf("refracted x = %v, want < %v", got.X, d.X)
		}
		if !near(got.Len(), 1) {
			t.Errorf("refracted length = %v, want 1", got.Len())
		}
	})

	t.Run("total internal reflection leaving", func(t *testing.T) {
		d := math3d.V3(math.Sin(1.2), 0, -math.Cos(1.2))
		if _, ok := refract(d, n, -n.Dot(d), 1.5, 1.5); ok {
			t.Error("expected total internal reflection")
		}
	})
}

func TestReflectionCarriesMaterialIndex(t *testing.T) {
	// A mirror of index 1.5 bounces the ray up into the underside of a
	// glass slab of the same index at 60 degrees. The reflected ray is
	// taken to be inside the glass, so it meets total internal reflection.
	mirror := &Material{Kr: math3d.One3(), Index: 1.5}
	glass := &Material{Kt: math3d.One3(), Index: 1.5}
	s := &testScene{
		planes: []testPlane{
			{point: math3d.Zero3(), normal: math3d.Up(), mat: mirror},
			{point: math3d.V3(0, 2, 0), normal: math3d.V3(0, -1, 0), mat: glass},
		},
	}

	tests := []struct {
		name          string
		mirrorIndex   float64
		wantRefracted uint64
	}{
		{"same index", 1.5, 0},
		{"air mirror", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mirror.Index = tt.mirrorIndex
			tr := NewTracer(s, testCamera{}, DefaultRenderConfig())
			r := NewRay(math3d.V3(0, 1, 0), math3d.V3(math.Sin(math.Pi/3), -0.5, 0))
			tr.TraceRay(r, math3d.One3(), 3, 1)

			st := tr.Stats()
			if st.Reflected != 1 {
				t.Errorf("reflected = %d, want 1", st.Reflected)
			}
			if st.Refracted != tt.wantRefracted {
				t.Errorf("refracted = %d, want %d", st.Refracted, tt.wantRefracted)
			}
		})
	}
}

func TestRefractLeavingThroughBackFace(t *testing.T) {
	// From the center of a glass ball the hit normal points along the ray.
	// The exit ray must start outside the ball and reach the green wall.
	glass := &Material{Kt: math3d.One3(), Index: 1.5}
	wall := &Material{Ke: math3d.V3(0, 1, 0), Index: 1}
	s := &testScene{
		spheres: []testSphere{{center: math3d.Zero3(), radius: 1, mat: glass}},
		planes:  []testPlane{{point: math3d.V3(0, 0, -5), normal: math3d.V3(0, 0, 1), mat: wall}},
	}

	tr := NewTracer(s, testCamera{}, DefaultRenderConfig())
	got := tr.TraceRay(NewRay(math3d.Zero3(), math3d.V3(0, 0, -1)), math3d.One3(), 2, 1.5)
	if !vecNear(got, math3d.V3(0, 1, 0)) {
		t.Errorf("TraceRay = %v, want the wall's green", got)
	}
	if st := tr.Stats(); st.Refracted != 1 {
		t.Errorf("refracted = %d, want 1", st.Refracted)
	}
}

func TestNilScene(t *testing.T) {
	tr := NewTracer(nil, testCamera{}, DefaultRenderConfig())
	if tr.Ready() {
		t.Fatal("tracer without scene reports ready")
	}
	if got := tr.Trace(0.5, 0.5); got != math3d.Zero3() {
		t.Errorf("Trace = %v, want black", got)
	}

	pix := []byte{1, 2, 3}
	NewSampler(tr).RenderPixel(pix, 1, 1, 0, 0)
	if pix[0] != 1 || pix[1] != 2 || pix[2] != 3 {
		t.Errorf("RenderPixel wrote %v without a scene", pix)
	}
}

func BenchmarkTraceGlass(b *testing.B) {
	glass := &Material{Kd: math3d.Splat(0.2), Kr: math3d.Splat(0.3), Kt: math3d.Splat(0.7), Index: 1.5}
	s := &testScene{
		ambient: math3d.Splat(0.1),
		lights:  []Light{NewPointLight(math3d.V3(2, 4, 0), math3d.One3())},
		spheres: []testSphere{{center: math3d.V3(0, 0, -5), radius: 1, mat: glass}},
		planes:  []testPlane{{point: math3d.V3(0, -1, 0), normal: math3d.Up()}},
	}
	cfg := DefaultRenderConfig()
	cfg.MaxDepth = 5
	tr := NewTracer(s, testCamera{}, cfg)

	for b.Loop() {
		tr.Trace(0.5, 0.5)
	}
}
