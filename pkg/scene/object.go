package scene

import "github.com/taigrr/glint/pkg/trace"

// Object is a primitive a ray can hit. Intersect reports the nearest hit
// with RayEpsilon < t < tMax and must not modify the object.
type Object interface {
	Intersect(r trace.Ray, tMax float64) (trace.Hit, bool)
}

// Bounded is an Object with finite extent, eligible for the BVH.
type Bounded interface {
	Object
	Bounds() AABB
}
