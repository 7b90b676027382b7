package scene

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

// maxNodeDepth bounds node hierarchy recursion in malformed files.
const maxNodeDepth = 64

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in smooth vertex normals when the file has none.
	CalculateNormals bool
	// Textures decodes base color textures.
	Textures bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		Textures:         true,
	}
}

// LoadGLTF loads a .gltf or .glb file with the default options.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load reads every triangle primitive reachable from the default scene,
// with node transforms applied, and converts the PBR materials to Phong.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	l.loadMaterials(doc, filepath.Dir(path), mesh)

	roots, ok := sceneRoots(doc)
	if ok {
		for _, n := range roots {
			if err := l.processNode(doc, n, math3d.Identity(), mesh, 0); err != nil {
				return nil, err
			}
		}
	} else {
		// No scene graph: take every mesh as is.
		for _, m := range doc.Meshes {
			if err := l.processMesh(doc, m, math3d.Identity(), mesh); err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
			}
		}
	}

	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyMesh)
	}
	if l.CalculateNormals && !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// ErrEmptyMesh is returned when a model contains no triangles.
var ErrEmptyMesh = errors.New("no triangles")

func sceneRoots(doc *gltf.Document) ([]int, bool) {
	if len(doc.Scenes) == 0 {
		return nil, false
	}
	idx := 0
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		idx = *doc.Scene
	}
	return doc.Scenes[idx].Nodes, true
}

func (l *GLTFLoader) processNode(doc *gltf.Document, idx int, parent math3d.Mat4, mesh *Mesh, depth int) error {
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}
	if idx < 0 || idx >= len(doc.Nodes) {
		return fmt.Errorf("node %d: out of range", idx)
	}

	node := doc.Nodes[idx]
	world := parent.Mul(nodeTransform(node))

	if node.Mesh != nil && *node.Mesh < len(doc.Meshes) {
		m := doc.Meshes[*node.Mesh]
		if err := l.processMesh(doc, m, world, mesh); err != nil {
			return fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	for _, child := range node.Children {
		if err := l.processNode(doc, child, world, mesh, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeTransform returns the node's local matrix, from Matrix when given,
// else from translation, rotation and scale. Zero values mean "absent".
func nodeTransform(n *gltf.Node) math3d.Mat4 {
	m := math3d.Mat4(n.Matrix)
	if !m.IsZero() && m != math3d.Identity() {
		return m
	}

	scale := math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2])
	if scale.IsZero() {
		scale = math3d.One3()
	}
	t := math3d.Translate(math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2]))
	return t.Mul(math3d.FromQuaternion(n.Rotation)).Mul(math3d.Scale(scale))
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, world math3d.Mat4, mesh *Mesh) error {
	nm := world.NormalMatrix()

	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float64
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: world.MulVec3(p)}
			if i < len(normals) {
				v.Normal = nm.MulVec3Dir(normals[i]).Normalize()
			}
			if i < len(uvs) {
				v.UV = uvs[i]
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{V: [3]int{base + indices[i], base + indices[i+1], base + indices[i+2]}, Material: material}
			if f.V[0] >= len(mesh.Vertices) || f.V[1] >= len(mesh.Vertices) || f.V[2] >= len(mesh.Vertices) {
				return fmt.Errorf("index out of range in face %d", i/3)
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

// loadMaterials maps every glTF material to Phong coefficients. A texture
// that cannot be decoded is dropped, leaving the base color factor.
func (l *GLTFLoader) loadMaterials(doc *gltf.Document, dir string, mesh *Mesh) {
	for i, gm := range doc.Materials {
		mesh.Materials = append(mesh.Materials, convertMaterial(i, gm))

		var tex *Texture
		if l.Textures && gm.PBRMetallicRoughness != nil && gm.PBRMetallicRoughness.BaseColorTexture != nil {
			tex, _ = loadTexture(doc, dir, gm.PBRMetallicRoughness.BaseColorTexture.Index)
		}
		mesh.Textures = append(mesh.Textures, tex)
	}
}

// convertMaterial approximates a metallic-roughness material with Phong
// coefficients: base color becomes diffuse, metalness becomes mirror
// reflection, roughness sets the specular exponent and blended alpha
// becomes transmission.
func convertMaterial(i int, gm *gltf.Material) *trace.Material {
	baseColor := [4]float64{1, 1, 1, 1}
	metallic, roughness := 1.0, 1.0
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			baseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
	}

	base := math3d.V3(baseColor[0], baseColor[1], baseColor[2])
	m := &trace.Material{
		Name:      gm.Name,
		Ke:        math3d.V3(gm.EmissiveFactor[0], gm.EmissiveFactor[1], gm.EmissiveFactor[2]),
		Kd:        base.Scale(1 - metallic),
		Ka:        base.Scale(0.1),
		Ks:        math3d.Splat(0.04).Lerp(base, metallic),
		Kr:        base.Scale(metallic),
		Shininess: shininess(roughness),
		Index:     1,
	}
	if metallic == 0 {
		m.Kr = math3d.Zero3()
	}
	if gm.AlphaMode == gltf.AlphaBlend && baseColor[3] < 1 {
		m.Kt = math3d.Splat(1 - baseColor[3])
		m.Kd = m.Kd.Scale(baseColor[3])
		m.Index = 1.5
	}
	if m.Name == "" {
		m.Name = fmt.Sprintf("material%d", i)
	}
	return m
}

// shininess converts perceptual roughness to a Phong exponent using the
// Beckmann correspondence n = 2/α² - 2 with α = roughness².
func shininess(roughness float64) float64 {
	a := math.Max(roughness*roughness, 1e-3)
	return math.Min(math.Max(2/(a*a)-2, 1), 1000)
}

func loadTexture(doc *gltf.Document, dir string, idx int) (*Texture, error) {
	if idx < 0 || idx >= len(doc.Textures) || doc.Textures[idx].Source == nil {
		return nil, fmt.Errorf("texture %d: no source", idx)
	}
	src := *doc.Textures[idx].Source
	if src < 0 || src >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d: image %d out of range", idx, src)
	}
	img := doc.Images[src]

	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil, fmt.Errorf("image %d: buffer has no data", src)
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case strings.HasPrefix(img.URI, "data:"):
		var err error
		if data, err = img.MarshalData(); err != nil {
			return nil, fmt.Errorf("image %d: %w", src, err)
		}
	case img.URI != "":
		var err error
		if data, err = os.ReadFile(filepath.Join(dir, img.URI)); err != nil {
			return nil, fmt.Errorf("image %d: %w", src, err)
		}
	default:
		return nil, fmt.Errorf("image %d: no data", src)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", src, err)
	}
	return TextureFromImage(decoded), nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	floats, err := readFloats(doc, accessor, 3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		result[i] = math3d.V3(floats[i*3], floats[i*3+1], floats[i*3+2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([][2]float64, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	floats, err := readFloats(doc, accessor, 2)
	if err != nil {
		return nil, err
	}
	result := make([][2]float64, accessor.Count)
	for i := range result {
		result[i] = [2]float64{floats[i*2], floats[i*2+1]}
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}
	result := make([]int, accessor.Count)
	for i := range result {
		off := start + i*stride
		switch size {
		case 1:
			result[i] = int(data[off])
		case 2:
			result[i] = int(uint16(data[off]) | uint16(data[off+1])<<8)
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return result, nil
}

func accessorAt(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

// readFloats reads n float32 components per element.
func readFloats(doc *gltf.Document, accessor *gltf.Accessor, n int) ([]float64, error) {
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected FLOAT components, got %v", accessor.ComponentType)
	}
	data, start, stride, err := accessorBytes(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}

	out := make([]float64, accessor.Count*n)
	for i := range accessor.Count {
		off := start + i*stride
		for j := range n {
			out[i*n+j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off+j*4:])))
		}
	}
	return out, nil
}

// accessorBytes returns the backing buffer, the first element offset and
// the element stride, after checking that every element is in bounds.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, 0, fmt.Errorf("buffer %d out of range", bufferView.Buffer)
	}
	data := doc.Buffers[bufferView.Buffer].Data
	if data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(data) {
			return nil, 0, 0, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(data))
		}
	}
	return data, start, stride, nil
}
