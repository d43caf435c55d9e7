// Package component implements the declarative scene graph: leaf shapes
// wrapping kernel primitives, composites that fold their children through
// boolean and loft operations, and the placement of nodes relative to one
// another.
//
// Every node has a local transform, composed with its ancestors' transforms
// into a cached world transform. World-space bodies and bounding boxes are
// derived from it on demand and cached until the next mutation of the node
// or one of its ancestors.
package component

import (
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/placement"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Node is a node of the component tree. The set of implementations is
// closed: *Box, *Cylinder, *Sphere, *Rect, *Circle, *Union, *Difference,
// *Intersection and *Loft.
type Node interface {
	// Name returns the node's name, or its kind when unnamed.
	Name() string
	SetName(name string)

	Parent() Node
	Children() []Node

	LocalTransform() sdf.M44
	WorldTransform() sdf.M44

	// Bodies returns world-space copies of the node's geometry. The result
	// is cached; callers must not mutate it.
	Bodies() ([]kernel.Body, error)

	BoundingBox() (sdf.Box3, error)
	Min() (v3.Vec, error)
	Max() (v3.Vec, error)
	Mid() (v3.Vec, error)
	Size() (v3.Vec, error)

	// Plane returns the world-space supporting plane of a planar node.
	Plane() (kernel.Plane, bool)

	Translate(tx, ty, tz float64)
	TX(tx float64)
	TY(ty float64)
	TZ(tz float64)
	Rotate(rx, ry, rz float64)
	RotateAbout(rx, ry, rz float64, center v3.Vec)
	RX(degrees float64)
	RY(degrees float64)
	RZ(degrees float64)
	Scale(sx, sy, sz float64) error
	ScaleAbout(sx, sy, sz float64, center v3.Vec) error

	// Place translates the node by the X component of x, the Y component of
	// y and the Z component of z.
	Place(x, y, z placement.Translation) error

	// Copy returns a detached deep copy occupying the same world pose.
	Copy() (Node, error)

	// Generation increases every time the node's caches are cleared.
	Generation() uint64

	core() *node
	rawBodies() []kernel.Body
	localPlane() (kernel.Plane, bool)
	clone() (Node, error)
}

// cache holds everything derived from the transform chain. It is cleared as
// a whole.
type cache struct {
	world      *sdf.M44
	inverse    *sdf.M44
	bounds     *sdf.Box3
	bodies     []kernel.Body
	haveBodies bool
}

// node is the state shared by every Node implementation.
type node struct {
	self     Node
	ctx      *Context
	kind     string
	name     string
	local    sdf.M44
	parent   Node
	children []Node
	cache    cache
	gen      uint64
}

func (n *node) initNode(self Node, ctx *Context, kind string) {
	n.self = self
	n.ctx = ctx
	n.kind = kind
	n.local = placement.Identity()
}

func (n *node) core() *node { return n }

func (n *node) Name() string {
	if n.name == "" {
		return n.kind
	}
	return n.name
}

func (n *node) SetName(name string) { n.name = name }

func (n *node) Parent() Node { return n.parent }

func (n *node) Children() []Node {
	out := make([]Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *node) LocalTransform() sdf.M44 { return n.local }

func (n *node) Generation() uint64 { return n.gen }

func (n *node) WorldTransform() sdf.M44 {
	if n.cache.world == nil {
		w := n.local
		if n.parent != nil {
			w = placement.World(n.local, n.parent.WorldTransform())
		}
		n.cache.world = &w
	}
	return *n.cache.world
}

func (n *node) inverseWorld() sdf.M44 {
	if n.cache.inverse == nil {
		inv := n.WorldTransform().Inverse()
		n.cache.inverse = &inv
	}
	return *n.cache.inverse
}

func (n *node) Bodies() ([]kernel.Body, error) {
	if n.cache.haveBodies {
		return n.cache.bodies, nil
	}
	world := n.WorldTransform()
	bodies, err := copyBodies(n.ctx.Kernel, n.self.rawBodies(), &world)
	if err != nil {
		return nil, err
	}
	n.cache.bodies = bodies
	n.cache.haveBodies = true
	return bodies, nil
}

func (n *node) BoundingBox() (sdf.Box3, error) {
	if n.cache.bounds == nil {
		bb, err := ExactBoundingBox(n.ctx.Kernel, n.self)
		if err != nil {
			return sdf.Box3{}, err
		}
		n.cache.bounds = &bb
	}
	return *n.cache.bounds, nil
}

func (n *node) Min() (v3.Vec, error) {
	bb, err := n.BoundingBox()
	return bb.Min, err
}

func (n *node) Max() (v3.Vec, error) {
	bb, err := n.BoundingBox()
	return bb.Max, err
}

func (n *node) Mid() (v3.Vec, error) {
	bb, err := n.BoundingBox()
	return bb.Center(), err
}

func (n *node) Size() (v3.Vec, error) {
	bb, err := n.BoundingBox()
	return bb.Size(), err
}

func (n *node) Plane() (kernel.Plane, bool) {
	p, ok := n.self.localPlane()
	if !ok {
		return kernel.Plane{}, false
	}
	return p.Transform(n.WorldTransform()), true
}

// apply composes m after the local transform.
func (n *node) apply(m sdf.M44) {
	n.local = placement.Then(n.local, m)
	n.invalidate()
}

func (n *node) Translate(tx, ty, tz float64) {
	n.apply(placement.Translate(tx, ty, tz))
}

func (n *node) TX(tx float64) { n.Translate(tx, 0, 0) }
func (n *node) TY(ty float64) { n.Translate(0, ty, 0) }
func (n *node) TZ(tz float64) { n.Translate(0, 0, tz) }

func (n *node) Rotate(rx, ry, rz float64) {
	n.RotateAbout(rx, ry, rz, placement.Origin)
}

func (n *node) RotateAbout(rx, ry, rz float64, center v3.Vec) {
	n.apply(placement.Rotate(rx, ry, rz, center))
}

func (n *node) RX(degrees float64) { n.Rotate(degrees, 0, 0) }
func (n *node) RY(degrees float64) { n.Rotate(0, degrees, 0) }
func (n *node) RZ(degrees float64) { n.Rotate(0, 0, degrees) }

func (n *node) Scale(sx, sy, sz float64) error {
	return n.ScaleAbout(sx, sy, sz, placement.Origin)
}

func (n *node) ScaleAbout(sx, sy, sz float64, center v3.Vec) error {
	m, err := placement.Scale(sx, sy, sz, center)
	if err != nil {
		return err
	}
	n.apply(m)
	return nil
}

func (n *node) Place(x, y, z placement.Translation) error {
	for _, t := range []placement.Translation{x, y, z} {
		if err := t.Err(); err != nil {
			return err
		}
	}
	n.Translate(x.X(), y.Y(), z.Z())
	return nil
}

// invalidate clears the caches of n and its whole subtree.
func (n *node) invalidate() {
	n.cache = cache{}
	n.gen++
	for _, c := range n.children {
		c.core().invalidate()
	}
}

func (n *node) Copy() (Node, error) {
	c, err := n.self.clone()
	if err != nil {
		return nil, err
	}
	cn := c.core()
	cn.name = n.name
	cn.local = n.WorldTransform()
	if err := cn.copyChildren(n); err != nil {
		return nil, err
	}
	return c, nil
}

// copyChildren attaches copies of src's children to n with their original
// local transforms. Geometry is not refolded; the clone already carries the
// folded result.
func (n *node) copyChildren(src *node) error {
	for _, child := range src.children {
		cc, err := child.Copy()
		if err != nil {
			return err
		}
		ccn := cc.core()
		ccn.local = child.LocalTransform()
		ccn.parent = n.self
		ccn.invalidate()
		n.children = append(n.children, cc)
	}
	return nil
}

// CopyOf copies n and returns the copy with n's concrete type.
func CopyOf[T Node](n T) (T, error) {
	c, err := n.Copy()
	if err != nil {
		var zero T
		return zero, err
	}
	return c.(T), nil
}

// AtMin is the minimum corner of n's bounding box, as an alignment operand.
func AtMin(n Node) placement.Place {
	return at(n.Min())
}

// AtMax is the maximum corner of n's bounding box.
func AtMax(n Node) placement.Place {
	return at(n.Max())
}

// AtMid is the center of n's bounding box.
func AtMid(n Node) placement.Place {
	return at(n.Mid())
}

func at(p v3.Vec, err error) placement.Place {
	if err != nil {
		return placement.Invalid(err)
	}
	return placement.At(p)
}

// copyBodies copies bodies through k, transforming each copy by m when m is
// non-nil.
func copyBodies(k kernel.Kernel, bodies []kernel.Body, m *sdf.M44) ([]kernel.Body, error) {
	out := make([]kernel.Body, 0, len(bodies))
	for _, b := range bodies {
		c, err := k.Copy(b)
		if err != nil {
			return nil, err
		}
		if m != nil {
			if err := k.Transform(c, *m); err != nil {
				return nil, err
			}
		}
		out = append(out, c)
	}
	return out, nil
}
