package component

import (
	"github.com/chazu/facet/pkg/kernel"
	"github.com/pkg/errors"
)

// planeRule says how an operator treats the planes of the children it folds.
type planeRule int

const (
	unionPlanes planeRule = iota
	differencePlanes
	intersectionPlanes
	// sectionPlanes requires every child to be planar and parallel to the
	// first one.
	sectionPlanes
)

// reconcilePlanes checks a child's plane against the operator's
// representative plane and returns the representative plane after the child
// is folded in. established reports whether the operator already holds
// geometry; before that only sections are checked and the child's plane is
// adopted.
func reconcilePlanes(rule planeRule, established bool, current, child *kernel.Plane) (*kernel.Plane, error) {
	if rule == sectionPlanes {
		switch {
		case child == nil:
			return nil, errors.Wrap(ErrInvalidSection, "section is not planar")
		case !established:
			return child, nil
		case !current.IsParallelTo(*child):
			return nil, errors.Wrap(ErrInvalidSection, "section is not parallel to the first")
		}
		return current, nil
	}
	if !established {
		return child, nil
	}
	switch rule {
	case unionPlanes:
		if (current == nil) != (child == nil) {
			return nil, errors.Wrap(ErrIncompatibleDimensionality, "cannot union a planar entity with a 3d entity")
		}
	case differencePlanes:
		if current == nil && child != nil {
			return nil, errors.Wrap(ErrIncompatibleDimensionality, "cannot subtract a planar entity from a 3d entity")
		}
	case intersectionPlanes:
		if current == nil {
			return child, nil
		}
	}
	if current != nil && child != nil && !current.IsCoplanarTo(*child) {
		return nil, errors.Wrapf(ErrIncompatibleDimensionality, "cannot %s planar entities that are non-coplanar", rule)
	}
	return current, nil
}

func (r planeRule) String() string {
	switch r {
	case differencePlanes:
		return "subtract"
	case intersectionPlanes:
		return "intersect"
	case sectionPlanes:
		return "loft"
	default:
		return "union"
	}
}

// combine applies op to every target with every tool.
func combine(k kernel.Kernel, targets, tools []kernel.Body, op kernel.BooleanOp) error {
	for _, target := range targets {
		for _, tool := range tools {
			if err := k.BooleanOperation(target, tool, op); err != nil {
				return errors.Wrapf(err, "%s", op)
			}
		}
	}
	return nil
}

// Union joins its children into a single body.
type Union struct {
	composite
}

func NewUnion(ctx *Context, children ...Node) (*Union, error) {
	u := &Union{}
	u.initNode(u, ctx, "Union")
	if err := u.Add(children...); err != nil {
		return nil, err
	}
	return u, nil
}

// Add folds more children into the union.
func (u *Union) Add(children ...Node) error {
	return u.addChildren(children, u.fold)
}

func (u *Union) fold(child Node, bodies []kernel.Body, plane *kernel.Plane) error {
	p, err := reconcilePlanes(unionPlanes, len(u.bodies) > 0, u.plane, plane)
	if err != nil {
		return err
	}
	u.plane = p
	for _, b := range bodies {
		if len(u.bodies) == 0 {
			u.bodies = []kernel.Body{b}
			continue
		}
		if err := combine(u.ctx.Kernel, u.bodies, []kernel.Body{b}, kernel.OpUnion); err != nil {
			return err
		}
	}
	return nil
}

func (u *Union) clone() (Node, error) {
	c := &Union{}
	c.initNode(c, u.ctx, "Union")
	if err := u.copyGeometry(&c.composite); err != nil {
		return nil, err
	}
	return c, nil
}

// Difference subtracts every later child from the bodies of the first.
type Difference struct {
	composite
	seeded bool
}

func NewDifference(ctx *Context, children ...Node) (*Difference, error) {
	d := &Difference{}
	d.initNode(d, ctx, "Difference")
	if err := d.Add(children...); err != nil {
		return nil, err
	}
	return d, nil
}

// Add subtracts more children. The first child ever added is the target.
func (d *Difference) Add(children ...Node) error {
	return d.addChildren(children, d.fold)
}

func (d *Difference) fold(child Node, bodies []kernel.Body, plane *kernel.Plane) error {
	if !d.seeded {
		d.bodies = bodies
		d.plane = plane
		d.seeded = true
		return nil
	}
	if _, err := reconcilePlanes(differencePlanes, len(d.bodies) > 0, d.plane, plane); err != nil {
		return err
	}
	return combine(d.ctx.Kernel, d.bodies, bodies, kernel.OpDifference)
}

func (d *Difference) clone() (Node, error) {
	c := &Difference{seeded: d.seeded}
	c.initNode(c, d.ctx, "Difference")
	if err := d.copyGeometry(&c.composite); err != nil {
		return nil, err
	}
	return c, nil
}

// Intersection keeps the region common to all of its children. Its plane is
// the first plane found among its children.
type Intersection struct {
	composite
	seeded bool
}

func NewIntersection(ctx *Context, children ...Node) (*Intersection, error) {
	i := &Intersection{}
	i.initNode(i, ctx, "Intersection")
	if err := i.Add(children...); err != nil {
		return nil, err
	}
	return i, nil
}

// Add intersects more children into the result.
func (i *Intersection) Add(children ...Node) error {
	return i.addChildren(children, i.fold)
}

func (i *Intersection) fold(child Node, bodies []kernel.Body, plane *kernel.Plane) error {
	p, err := reconcilePlanes(intersectionPlanes, len(i.bodies) > 0, i.plane, plane)
	if err != nil {
		return err
	}
	i.plane = p
	if !i.seeded {
		i.bodies = bodies
		i.seeded = true
		return nil
	}
	return combine(i.ctx.Kernel, i.bodies, bodies, kernel.OpIntersection)
}

func (i *Intersection) clone() (Node, error) {
	c := &Intersection{seeded: i.seeded}
	c.initNode(c, i.ctx, "Intersection")
	if err := i.copyGeometry(&c.composite); err != nil {
		return nil, err
	}
	return c, nil
}
