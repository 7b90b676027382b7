package scene

import (
	"math"
	"testing"

	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

// quadMesh returns a unit quad in the XY plane made of two faces plus one
// degenerate face, using material 0.
func quadMesh() *Mesh {
	m := NewMesh("quad")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(1, 0, 0)},
		{Position: math3d.V3(1, 1, 0)},
		{Position: math3d.V3(0, 1, 0)},
	}
	m.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{0, 2, 3}, Material: 0},
		{V: [3]int{0, 0, 1}, Material: 0},
	}
	m.Materials = []*trace.Material{{Name: "tile", Index: 1}}
	m.CalculateBounds()
	return m
}

func TestMeshBounds(t *testing.T) {
	m := quadMesh()

	if m.TriangleCount() != 3 {
		t.Errorf("TriangleCount = %d, want 3", m.TriangleCount())
	}
	if !vecNear(m.Center(), math3d.V3(0.5, 0.5, 0)) {
		t.Errorf("Center = %v", m.Center())
	}
	if !vecNear(m.Size(), math3d.V3(1, 1, 0)) {
		t.Errorf("Size = %v", m.Size())
	}
}

func TestMeshSmoothNormals(t *testing.T) {
	m := quadMesh()
	if m.HasNormals() {
		t.Fatal("fresh mesh should have no normals")
	}

	m.CalculateSmoothNormals()
	if !m.HasNormals() {
		t.Fatal("HasNormals false after CalculateSmoothNormals")
	}
	for i, v := range m.Vertices {
		if !vecNear(v.Normal, math3d.V3(0, 0, 1)) {
			t.Errorf("vertex %d normal = %v, want +Z", i, v.Normal)
		}
	}
}

func TestMeshTriangles(t *testing.T) {
	override := &trace.Material{Name: "override"}

	tests := []struct {
		name     string
		override *trace.Material
		want     string
	}{
		{"face materials", nil, "tile"},
		{"override", override, "override"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := quadMesh()
			m.Textures = []*Texture{NewTexture(1, 1)}

			tris := m.Triangles(tc.override)
			if len(tris) != 2 {
				t.Fatalf("got %d triangles, want 2 (degenerate face skipped)", len(tris))
			}
			for _, tri := range tris {
				if tri.Material == nil || tri.Material.Name != tc.want {
					t.Errorf("material = %v, want %s", tri.Material, tc.want)
				}
				if (tri.Texture != nil) != (tc.override == nil) {
					t.Errorf("texture = %v with override %v", tri.Texture, tc.override)
				}
			}
		})
	}
}

func TestMeshTransform(t *testing.T) {
	m := quadMesh()
	m.CalculateSmoothNormals()

	// Stretch along X and tilt the quad around Y.
	mat := math3d.RotateY(math.Pi / 4).Mul(math3d.Scale(math3d.V3(3, 1, 1)))
	m.Transform(mat)

	for i, f := range m.Faces[:2] {
		a := m.Vertices[f.V[0]].Position
		b := m.Vertices[f.V[1]].Position
		c := m.Vertices[f.V[2]].Position
		face := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for _, vi := range f.V {
			n := m.Vertices[vi].Normal
			if math.Abs(n.Len()-1) > 1e-9 {
				t.Errorf("face %d: normal %v not unit length", i, n)
			}
			if !vecNear(n, face) {
				t.Errorf("face %d: vertex normal %v, face normal %v", i, n, face)
			}
		}
	}

	if got := m.Size().X; math.Abs(got-3*math.Cos(math.Pi/4)) > 1e-9 {
		t.Errorf("bounds not recomputed: size.X = %v", got)
	}
}

func TestMeshMaterialOutOfRange(t *testing.T) {
	m := quadMesh()
	for _, i := range []int{-1, 1, 42} {
		if got := m.Material(i); got != nil {
			t.Errorf("Material(%d) = %v, want nil", i, got)
		}
	}
	if m.Material(0) == nil {
		t.Error("Material(0) = nil")
	}
}
