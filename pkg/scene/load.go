package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

var (
	// ErrUnknownType is returned for an unrecognized light or object type.
	ErrUnknownType = errors.New("unknown type")
	// ErrUnknownMaterial is returned when an object names a material that
	// is not defined.
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrInvalidObject is returned for objects with impossible parameters.
	ErrInvalidObject = errors.New("invalid object")
)

// Vec is a JSON [x, y, z] triple.
type Vec [3]float64

func (v Vec) vec3() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// Description is the JSON scene file format.
type Description struct {
	Camera      CameraDesc              `json:"camera"`
	Ambient     *Vec                    `json:"ambient,omitempty"`
	Attenuation *trace.Attenuation      `json:"attenuation,omitempty"`
	Materials   map[string]MaterialDesc `json:"materials,omitempty"`
	Lights      []LightDesc             `json:"lights,omitempty"`
	Objects     []ObjectDesc            `json:"objects"`
}

// CameraDesc positions the camera. Angles are in degrees; LookAt, when
// set, overrides Yaw and Pitch.
type CameraDesc struct {
	Position Vec     `json:"position"`
	LookAt   *Vec    `json:"look_at,omitempty"`
	Yaw      float64 `json:"yaw,omitempty"`
	Pitch    float64 `json:"pitch,omitempty"`
	FOV      float64 `json:"fov,omitempty"`
}

// MaterialDesc mirrors trace.Material. An index of 0 means 1.
type MaterialDesc struct {
	Ke        Vec     `json:"ke"`
	Ka        Vec     `json:"ka"`
	Kd        Vec     `json:"kd"`
	Ks        Vec     `json:"ks"`
	Kr        Vec     `json:"kr"`
	Kt        Vec     `json:"kt"`
	Shininess float64 `json:"shininess"`
	Index     float64 `json:"index"`
}

// LightDesc is a "point", "directional" or "ambient" light.
type LightDesc struct {
	Type        string            `json:"type"`
	Position    Vec               `json:"position"`
	Direction   Vec               `json:"direction"`
	Color       Vec               `json:"color"`
	Attenuation trace.Attenuation `json:"attenuation"`
}

// TransformDesc composes translate * rotate(Z·Y·X, degrees) * scale.
type TransformDesc struct {
	Translate Vec  `json:"translate"`
	Rotate    Vec  `json:"rotate"`
	Scale     *Vec `json:"scale,omitempty"`
}

// Matrix returns the object-to-world matrix.
func (t *TransformDesc) Matrix() math3d.Mat4 {
	if t == nil {
		return math3d.Identity()
	}
	scale := math3d.One3()
	if t.Scale != nil {
		scale = t.Scale.vec3()
	}
	rad := t.Rotate.vec3().Scale(math.Pi / 180)
	rot := math3d.RotateZ(rad.Z).Mul(math3d.RotateY(rad.Y)).Mul(math3d.RotateX(rad.X))
	return math3d.Translate(t.Translate.vec3()).Mul(rot).Mul(math3d.Scale(scale))
}

// ObjectDesc is one "sphere", "box", "plane", "triangle" or "mesh".
// Only the fields of its type are read.
type ObjectDesc struct {
	Type     string `json:"type"`
	Material string `json:"material,omitempty"`

	Center Vec     `json:"center"`
	Radius float64 `json:"radius"`

	Min       *Vec           `json:"min,omitempty"`
	Max       *Vec           `json:"max,omitempty"`
	Transform *TransformDesc `json:"transform,omitempty"`

	Point  Vec `json:"point"`
	Normal Vec `json:"normal"`

	Vertices [3]Vec `json:"vertices"`

	File string `json:"file,omitempty"`
}

// Load reads a JSON scene file. Mesh paths are relative to the file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	s, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from JSON. dir resolves relative mesh paths.
func Parse(data []byte, dir string) (*Scene, error) {
	var desc Description
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return desc.Build(dir)
}

// Build turns the description into a ready to render scene.
func (d *Description) Build(dir string) (*Scene, error) {
	s := New()
	d.Camera.apply(s.Camera)

	if d.Ambient != nil {
		s.SetAmbient(d.Ambient.vec3())
	}
	if d.Attenuation != nil {
		s.SetAttenuationOverride(*d.Attenuation)
	}

	materials := make(map[string]*trace.Material, len(d.Materials))
	for name, md := range d.Materials {
		materials[name] = md.material(name)
	}

	for i, ld := range d.Lights {
		l, err := ld.light()
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		s.AddLight(l)
	}

	for i, od := range d.Objects {
		if err := od.addTo(s, materials, dir); err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, od.Type, err)
		}
	}

	s.Build()
	return s, nil
}

func (c CameraDesc) apply(cam *Camera) {
	cam.Position = c.Position.vec3()
	cam.Yaw = c.Yaw * math.Pi / 180
	cam.Pitch = c.Pitch * math.Pi / 180
	if c.FOV > 0 {
		cam.FOV = c.FOV * math.Pi / 180
	}
	if c.LookAt != nil {
		cam.LookAt(c.LookAt.vec3())
	}
}

func (m MaterialDesc) material(name string) *trace.Material {
	index := m.Index
	if index == 0 {
		index = 1
	}
	return &trace.Material{
		Name:      name,
		Ke:        m.Ke.vec3(),
		Ka:        m.Ka.vec3(),
		Kd:        m.Kd.vec3(),
		Ks:        m.Ks.vec3(),
		Kr:        m.Kr.vec3(),
		Kt:        m.Kt.vec3(),
		Shininess: m.Shininess,
		Index:     index,
	}
}

func (l LightDesc) light() (trace.Light, error) {
	switch l.Type {
	case "point":
		pl := trace.NewPointLight(l.Position.vec3(), l.Color.vec3())
		pl.Attenuation = l.Attenuation
		return pl, nil
	case "directional":
		dir := l.Direction.vec3()
		if dir.IsZero() {
			return nil, fmt.Errorf("%w: directional light without direction", ErrInvalidObject)
		}
		return trace.NewDirectionalLight(dir, l.Color.vec3()), nil
	case "ambient":
		return &trace.AmbientLight{Col: l.Color.vec3()}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, l.Type)
	}
}

func (o ObjectDesc) addTo(s *Scene, materials map[string]*trace.Material, dir string) error {
	var mat *trace.Material
	if o.Material != "" {
		var ok bool
		if mat, ok = materials[o.Material]; !ok {
			return fmt.Errorf("%w %q", ErrUnknownMaterial, o.Material)
		}
	}

	switch o.Type {
	case "sphere":
		if o.Radius <= 0 {
			return fmt.Errorf("%w: radius %g", ErrInvalidObject, o.Radius)
		}
		s.Add(NewSphere(o.Center.vec3(), o.Radius, mat))
	case "box":
		if o.Min != nil && o.Max != nil {
			s.Add(NewAxisBox(o.Min.vec3(), o.Max.vec3(), mat))
		} else {
			s.Add(NewBox(o.Transform.Matrix(), mat))
		}
	case "plane":
		if o.Normal.vec3().IsZero() {
			return fmt.Errorf("%w: plane without normal", ErrInvalidObject)
		}
		s.Add(NewPlane(o.Point.vec3(), o.Normal.vec3(), mat))
	case "triangle":
		t := NewTriangle(o.Vertices[0].vec3(), o.Vertices[1].vec3(), o.Vertices[2].vec3(), mat)
		if t.Normal().IsZero() {
			return fmt.Errorf("%w: degenerate triangle", ErrInvalidObject)
		}
		s.Add(t)
	case "mesh":
		path := o.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		m, err := LoadGLTF(path)
		if err != nil {
			return err
		}
		if o.Transform != nil {
			m.Transform(o.Transform.Matrix())
		}
		s.AddMesh(m, mat)
	default:
		return fmt.Errorf("%w %q", ErrUnknownType, o.Type)
	}
	return nil
}
