package main

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/scene"
)

// Orbit limits.
const (
	maxOrbitPitch   = 1.5
	minDistanceFrac = 0.05 // of the starting distance
)

// OrbitAxis tracks position and velocity for one orbit parameter with
// spring decay.
type OrbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewOrbitAxis creates an axis at pos with a harmonica spring for smooth
// velocity decay.
func NewOrbitAxis(fps int, pos float64) OrbitAxis {
	return OrbitAxis{
		Position: pos,
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *OrbitAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Moving reports whether the axis still has visible velocity.
func (a *OrbitAxis) Moving() bool {
	return math.Abs(a.Velocity) > 1e-4
}

// Orbit is a camera circling a target, driven by impulses that decay
// through springs.
type Orbit struct {
	Yaw, Pitch, Distance OrbitAxis
	Target               math3d.Vec3

	fps  int
	home [3]float64 // yaw, pitch, distance at creation
}

// NewOrbit starts an orbit around target from the camera's current
// position.
func NewOrbit(fps int, target math3d.Vec3, cam *scene.Camera) *Orbit {
	offset := cam.Position.Sub(target)
	dist := offset.Len()
	var yaw, pitch float64
	if dist > 0 {
		pitch = math.Asin(math.Max(-1, math.Min(1, offset.Y/dist)))
		yaw = math.Atan2(offset.X, offset.Z)
	} else {
		dist = 1
	}

	o := &Orbit{Target: target, fps: fps, home: [3]float64{yaw, pitch, dist}}
	o.Reset()
	return o
}

// Reset returns to the starting view with no motion.
func (o *Orbit) Reset() {
	o.Yaw = NewOrbitAxis(o.fps, o.home[0])
	o.Pitch = NewOrbitAxis(o.fps, o.home[1])
	o.Distance = NewOrbitAxis(o.fps, o.home[2])
}

// ApplyImpulse adds angular velocity (radians per frame) and zoom
// velocity (world units per frame).
func (o *Orbit) ApplyImpulse(yaw, pitch, zoom float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
	o.Distance.Velocity += zoom
}

// Update advances every axis one frame and keeps pitch and distance in
// range.
func (o *Orbit) Update() {
	o.Yaw.Update()
	o.Pitch.Update()
	o.Distance.Update()

	if math.Abs(o.Pitch.Position) > maxOrbitPitch {
		o.Pitch.Position = math.Copysign(maxOrbitPitch, o.Pitch.Position)
		o.Pitch.Velocity = 0
	}
	if minDist := o.home[2] * minDistanceFrac; o.Distance.Position < minDist {
		o.Distance.Position = minDist
		o.Distance.Velocity = 0
	}
}

// Moving reports whether any axis is still in motion.
func (o *Orbit) Moving() bool {
	return o.Yaw.Moving() || o.Pitch.Moving() || o.Distance.Moving()
}

// Apply places cam on the orbit.
func (o *Orbit) Apply(cam *scene.Camera) {
	cam.Orbit(o.Target, o.Yaw.Position, o.Pitch.Position, o.Distance.Position)
}
