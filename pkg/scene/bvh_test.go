package scene

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

func randomSpheres(n int, rng *rand.Rand) []Bounded {
	objs := make([]Bounded, n)
	for i := range objs {
		c := math3d.V3(rng.Float64()*20-10, rng.Float64()*20-10, rng.Float64()*20-30)
		objs[i] = NewSphere(c, 0.2+rng.Float64(), nil)
	}
	return objs
}

func linearHit(objs []Bounded, r trace.Ray) (trace.Hit, bool) {
	var best trace.Hit
	found := false
	tMax := math.Inf(1)
	for _, o := range objs {
		if h, ok := o.Intersect(r, tMax); ok {
			best, found, tMax = h, true, h.T
		}
	}
	return best, found
}

func TestBVHMatchesLinearSearch(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	objs := randomSpheres(200, rng)
	bvh := NewBVH(objs)

	if bvh.Len() != len(objs) {
		t.Fatalf("Len = %d, want %d", bvh.Len(), len(objs))
	}
	if d := bvh.Depth(); d < 2 || d > 20 {
		t.Errorf("Depth = %d, want a balanced tree", d)
	}

	for i := range 500 {
		dir := math3d.V3(rng.Float64()*2-1, rng.Float64()*2-1, -1)
		r := trace.NewRay(math3d.Zero3(), dir)

		want, wantOK := linearHit(objs, r)
		got, gotOK := bvh.Intersect(r, math.Inf(1))
		if gotOK != wantOK {
			t.Fatalf("ray %d: hit = %v, want %v", i, gotOK, wantOK)
		}
		if gotOK && math.Abs(got.T-want.T) > eps {
			t.Fatalf("ray %d: t = %v, want %v", i, got.T, want.T)
		}
	}
}

func TestBVHEmpty(t *testing.T) {
	bvh := NewBVH(nil)
	if _, ok := bvh.Intersect(trace.NewRay(math3d.Zero3(), math3d.V3(0, 0, -1)), math.Inf(1)); ok {
		t.Error("empty BVH reported a hit")
	}
	if _, ok := bvh.Bounds(); ok {
		t.Error("empty BVH has bounds")
	}
}

func TestBVHDoesNotReorderInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	objs := randomSpheres(32, rng)
	first := objs[0]
	NewBVH(objs)
	if objs[0] != first {
		t.Error("NewBVH reordered the caller's slice")
	}
}

func TestAABBHit(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	tests := []struct {
		name string
		ray  trace.Ray
		tMax float64
		want bool
	}{
		{"through", trace.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)), math.Inf(1), true},
		{"from inside", trace.NewRay(math3d.Zero3(), math3d.V3(1, 2, 3)), math.Inf(1), true},
		{"parallel outside", trace.NewRay(math3d.V3(0, 2, 5), math3d.V3(0, 0, -1)), math.Inf(1), false},
		{"pointing away", trace.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, 1)), math.Inf(1), false},
		{"closer than box", trace.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)), 3, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := box.Hit(tc.ray, trace.RayEpsilon, tc.tMax); got != tc.want {
				t.Errorf("Hit = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(math3d.Splat(-1), math3d.Splat(1))
	got := box.Transform(math3d.Translate(math3d.V3(5, 0, 0)).Mul(math3d.RotateZ(math.Pi / 4)))

	r := math.Sqrt2
	if !vecNear(got.Min, math3d.V3(5-r, -r, -1)) || !vecNear(got.Max, math3d.V3(5+r, r, 1)) {
		t.Errorf("Transform = %v", got)
	}
	if got.LongestAxis() == 2 {
		t.Error("longest axis should not be Z")
	}
	if !got.ContainsPoint(math3d.V3(5, 0, 0)) {
		t.Error("transformed box lost its center")
	}
}

func BenchmarkBVHIntersect(b *testing.B) {
	rng := rand.New(rand.NewPCG(5, 6))
	bvh := NewBVH(randomSpheres(1000, rng))
	r := trace.NewRay(math3d.Zero3(), math3d.V3(0.1, -0.05, -1))

	for b.Loop() {
		bvh.Intersect(r, math.Inf(1))
	}
}

func BenchmarkBVHBuild(b *testing.B) {
	rng := rand.New(rand.NewPCG(7, 8))
	objs := randomSpheres(1000, rng)

	for b.Loop() {
		NewBVH(objs)
	}
}
