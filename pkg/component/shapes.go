package component

import (
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/placement"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

var (
	unitX = v3.Vec{X: 1}
	unitY = v3.Vec{Y: 1}
)

// shape is a leaf wrapping exactly one kernel body, held in the node's local
// frame. Only the transform changes after construction.
type shape struct {
	node
	body kernel.Body
}

func (s *shape) initShape(self Node, ctx *Context, kind string, body kernel.Body) {
	s.initNode(self, ctx, kind)
	s.body = body
}

func (s *shape) rawBodies() []kernel.Body { return []kernel.Body{s.body} }

func (s *shape) localPlane() (kernel.Plane, bool) { return kernel.Plane{}, false }

func (s *shape) copyBody() (kernel.Body, error) {
	return s.ctx.Kernel.Copy(s.body)
}

// face returns face i of the world-space body.
func (s *shape) face(i int) (kernel.Face, error) {
	bodies, err := s.Bodies()
	if err != nil {
		return nil, err
	}
	faces := bodies[0].Faces()
	if i < 0 || i >= len(faces) {
		return nil, errors.Errorf("component: %s has no face %d", s.Name(), i)
	}
	return faces[i], nil
}

// Face indices of a box body.
const (
	boxTop = iota
	boxBottom
	boxFront
	boxLeft
	boxBack
	boxRight
)

// Box is a cuboid spanning [0,x]×[0,y]×[0,z] in its local frame.
type Box struct {
	shape
}

// NewBox creates an x by y by z box with a corner at the origin.
func NewBox(ctx *Context, x, y, z float64) (*Box, error) {
	body, err := ctx.Kernel.CreateBox(kernel.OrientedBox{
		Center:    v3.Vec{X: x / 2, Y: y / 2, Z: z / 2},
		LengthDir: unitX,
		WidthDir:  unitY,
		Length:    x,
		Width:     y,
		Height:    z,
	})
	if err != nil {
		return nil, errors.Wrap(err, "box")
	}
	b := &Box{}
	b.initShape(b, ctx, "Box", body)
	return b, nil
}

func (b *Box) clone() (Node, error) {
	body, err := b.copyBody()
	if err != nil {
		return nil, err
	}
	c := &Box{}
	c.initShape(c, b.ctx, "Box", body)
	return c, nil
}

func (b *Box) Top() (kernel.Face, error)    { return b.face(boxTop) }
func (b *Box) Bottom() (kernel.Face, error) { return b.face(boxBottom) }
func (b *Box) Front() (kernel.Face, error)  { return b.face(boxFront) }
func (b *Box) Left() (kernel.Face, error)   { return b.face(boxLeft) }
func (b *Box) Back() (kernel.Face, error)   { return b.face(boxBack) }
func (b *Box) Right() (kernel.Face, error)  { return b.face(boxRight) }

// noFace marks a cylinder end that degenerates to a point.
const noFace = -1

const cylinderSide = 0

// Cylinder is a cylinder or truncated cone standing on the XY plane with its
// axis along +Z.
type Cylinder struct {
	shape
	top    int
	bottom int
}

// NewCylinder creates a cylinder of the given height and radius.
func NewCylinder(ctx *Context, height, radius float64) (*Cylinder, error) {
	return NewCone(ctx, height, radius, radius)
}

// NewCone creates a cone with the given bottom and top radii. Either radius
// may be zero.
func NewCone(ctx *Context, height, radius, topRadius float64) (*Cylinder, error) {
	k := ctx.Kernel
	c := &Cylinder{top: 2, bottom: 1}

	var (
		body kernel.Body
		err  error
	)
	if radius == 0 {
		// The kernel needs a non-zero base, so build the cone upside down
		// and turn it over.
		body, err = k.CreateCylinderOrCone(placement.Origin, topRadius, v3.Vec{Z: height}, radius)
		if err != nil {
			return nil, errors.Wrap(err, "cylinder")
		}
		flip := placement.Translate(0, 0, height).Mul(sdf.Scale3d(v3.Vec{X: 1, Y: -1, Z: -1}))
		if err := k.Transform(body, flip); err != nil {
			return nil, errors.Wrap(err, "cylinder")
		}
		c.top, c.bottom = 1, noFace
	} else {
		body, err = k.CreateCylinderOrCone(placement.Origin, radius, v3.Vec{Z: height}, topRadius)
		if err != nil {
			return nil, errors.Wrap(err, "cylinder")
		}
		if topRadius == 0 {
			c.top = noFace
		}
	}
	c.initShape(c, ctx, "Cylinder", body)
	return c, nil
}

func (c *Cylinder) clone() (Node, error) {
	body, err := c.copyBody()
	if err != nil {
		return nil, err
	}
	cp := &Cylinder{top: c.top, bottom: c.bottom}
	cp.initShape(cp, c.ctx, "Cylinder", body)
	return cp, nil
}

// Top returns the top face, or nil when the top radius is zero.
func (c *Cylinder) Top() (kernel.Face, error) {
	if c.top == noFace {
		return nil, nil
	}
	return c.face(c.top)
}

// Bottom returns the bottom face, or nil when the bottom radius is zero.
func (c *Cylinder) Bottom() (kernel.Face, error) {
	if c.bottom == noFace {
		return nil, nil
	}
	return c.face(c.bottom)
}

func (c *Cylinder) Side() (kernel.Face, error) { return c.face(cylinderSide) }

// Sphere is a sphere centered on the origin.
type Sphere struct {
	shape
}

func NewSphere(ctx *Context, radius float64) (*Sphere, error) {
	body, err := ctx.Kernel.CreateSphere(placement.Origin, radius)
	if err != nil {
		return nil, errors.Wrap(err, "sphere")
	}
	s := &Sphere{}
	s.initShape(s, ctx, "Sphere", body)
	return s, nil
}

func (s *Sphere) clone() (Node, error) {
	body, err := s.copyBody()
	if err != nil {
		return nil, err
	}
	c := &Sphere{}
	c.initShape(c, s.ctx, "Sphere", body)
	return c, nil
}

func (s *Sphere) Surface() (kernel.Face, error) { return s.face(0) }

// planarShape is a leaf holding a single-face sheet body.
type planarShape struct {
	shape
}

func (p *planarShape) localPlane() (kernel.Plane, bool) {
	return p.body.Faces()[0].Plane()
}

// Rect is an x by y rectangle in the XY plane with a corner at the origin.
type Rect struct {
	planarShape
}

// NewRect creates a rectangle. It is taken from the bottom face of a box
// standing on the XY plane.
func NewRect(ctx *Context, x, y float64) (*Rect, error) {
	k := ctx.Kernel
	box, err := k.CreateBox(kernel.OrientedBox{
		Center:    v3.Vec{X: x / 2, Y: y / 2, Z: 0.5},
		LengthDir: unitX,
		WidthDir:  unitY,
		Length:    x,
		Width:     y,
		Height:    1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "rect")
	}
	body, err := k.CopyFace(box.Faces()[boxBottom])
	if err != nil {
		return nil, errors.Wrap(err, "rect")
	}
	r := &Rect{}
	r.initShape(r, ctx, "Rect", body)
	return r, nil
}

func (r *Rect) clone() (Node, error) {
	body, err := r.copyBody()
	if err != nil {
		return nil, err
	}
	c := &Rect{}
	c.initShape(c, r.ctx, "Rect", body)
	return c, nil
}

// Circle is a disk in the XY plane centered on the origin.
type Circle struct {
	planarShape
}

// NewCircle creates a disk. It is taken from the top face of a cylinder
// ending at the XY plane.
func NewCircle(ctx *Context, radius float64) (*Circle, error) {
	k := ctx.Kernel
	cyl, err := k.CreateCylinderOrCone(v3.Vec{Z: -1}, radius, placement.Origin, radius)
	if err != nil {
		return nil, errors.Wrap(err, "circle")
	}
	body, err := k.CopyFace(cyl.Faces()[2])
	if err != nil {
		return nil, errors.Wrap(err, "circle")
	}
	c := &Circle{}
	c.initShape(c, ctx, "Circle", body)
	return c, nil
}

func (c *Circle) clone() (Node, error) {
	body, err := c.copyBody()
	if err != nil {
		return nil, err
	}
	cp := &Circle{}
	cp.initShape(cp, c.ctx, "Circle", body)
	return cp, nil
}
