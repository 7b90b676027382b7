package scene

import (
	"cmp"
	"slices"

	"github.com/taigrr/glint/pkg/trace"
)

// leafThreshold is the largest number of objects stored in one leaf.
const leafThreshold = 4

// BVHNode is a node of a bounding volume hierarchy. Leaves hold objects,
// internal nodes hold two children.
type BVHNode struct {
	Bounds  AABB
	Left    *BVHNode
	Right   *BVHNode
	Objects []Bounded
}

// BVH accelerates nearest-hit queries over bounded objects.
type BVH struct {
	Root  *BVHNode
	count int
}

// NewBVH builds a hierarchy by median split along the longest axis.
// The input slice is not modified.
func NewBVH(objects []Bounded) *BVH {
	if len(objects) == 0 {
		return &BVH{}
	}
	objs := slices.Clone(objects)
	return &BVH{Root: buildBVH(objs), count: len(objs)}
}

func buildBVH(objs []Bounded) *BVHNode {
	bounds := objs[0].Bounds()
	for _, o := range objs[1:] {
		bounds = bounds.Union(o.Bounds())
	}

	if len(objs) <= leafThreshold {
		return &BVHNode{Bounds: bounds, Objects: objs}
	}

	axis := bounds.LongestAxis()
	slices.SortFunc(objs, func(a, b Bounded) int {
		return cmp.Compare(a.Bounds().Center().Component(axis), b.Bounds().Center().Component(axis))
	})

	mid := len(objs) / 2
	return &BVHNode{
		Bounds: bounds,
		Left:   buildBVH(objs[:mid]),
		Right:  buildBVH(objs[mid:]),
	}
}

// Len returns the number of objects in the hierarchy.
func (b *BVH) Len() int {
	return b.count
}

// Bounds returns the box around every object; ok is false when empty.
func (b *BVH) Bounds() (AABB, bool) {
	if b.Root == nil {
		return AABB{}, false
	}
	return b.Root.Bounds, true
}

// Intersect returns the nearest hit closer than tMax.
func (b *BVH) Intersect(r trace.Ray, tMax float64) (trace.Hit, bool) {
	if b.Root == nil {
		return trace.Hit{}, false
	}
	return b.Root.intersect(r, tMax)
}

func (n *BVHNode) intersect(r trace.Ray, tMax float64) (trace.Hit, bool) {
	if !n.Bounds.Hit(r, trace.RayEpsilon, tMax) {
		return trace.Hit{}, false
	}

	var best trace.Hit
	found := false

	if n.Objects != nil {
		for _, o := range n.Objects {
			if h, ok := o.Intersect(r, tMax); ok {
				best, found, tMax = h, true, h.T
			}
		}
		return best, found
	}

	if h, ok := n.Left.intersect(r, tMax); ok {
		best, found, tMax = h, true, h.T
	}
	if h, ok := n.Right.intersect(r, tMax); ok {
		best, found = h, true
	}
	return best, found
}

// Depth returns the height of the tree.
func (b *BVH) Depth() int {
	return b.Root.depth()
}

func (n *BVHNode) depth() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.Left.depth(), n.Right.depth())
}
