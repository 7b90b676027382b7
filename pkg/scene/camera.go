package scene

import (
	"math"

	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

// maxPitch keeps the camera off the poles where yaw is undefined.
const maxPitch = math.Pi/2 - 0.01

// Camera is a pinhole camera with position and yaw/pitch orientation.
type Camera struct {
	// Position in world space
	Position math3d.Vec3

	// Orientation (Euler angles in radians)
	Pitch float64 // Rotation around X axis (look up/down)
	Yaw   float64 // Rotation around Y axis (look left/right)

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
}

// NewCamera creates a camera at the origin looking down -Z.
func NewCamera() *Camera {
	return &Camera{
		FOV:         math.Pi / 3, // 60 degrees
		AspectRatio: 1,
	}
}

// Forward returns the forward direction vector.
func (c *Camera) Forward() math3d.Vec3 {
	// Forward is -Z in camera space, rotated by yaw and pitch
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the right direction vector.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(
		math.Cos(c.Yaw),
		0,
		-math.Sin(c.Yaw),
	)
}

// Up returns the up direction vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// LookAt turns the camera toward target.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	if dir.IsZero() {
		return
	}
	c.Pitch = math.Asin(math.Max(-1, math.Min(1, dir.Y)))
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
}

// Orbit places the camera distance away from target at the given yaw and
// elevation (radians, positive is above the target) and looks at target.
func (c *Camera) Orbit(target math3d.Vec3, yaw, pitch, distance float64) {
	pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))
	offset := math3d.V3(
		math.Sin(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Cos(yaw)*math.Cos(pitch),
	).Scale(distance)
	c.Position = target.Add(offset)
	c.Yaw = yaw
	c.Pitch = -pitch
}

// RayThrough returns the ray through normalized image coordinates (x, y),
// with (0, 0) the top-left corner and y growing downward.
func (c *Camera) RayThrough(x, y float64) trace.Ray {
	h := math.Tan(c.FOV / 2)
	w := h * c.AspectRatio
	dir := c.Forward().
		Add(c.Right().Scale((2*x - 1) * w)).
		Add(c.Up().Scale((1 - 2*y) * h))
	return trace.NewRay(c.Position, dir.Normalize())
}
