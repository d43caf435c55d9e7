package component

import (
	"github.com/chazu/facet/pkg/kernel"
	"github.com/pkg/errors"
)

// composite is a node owning an ordered list of children and the geometry
// folded from them, both in its own local frame.
type composite struct {
	node
	bodies []kernel.Body
	plane  *kernel.Plane // representative plane, local frame
}

func (c *composite) rawBodies() []kernel.Body { return c.bodies }

func (c *composite) localPlane() (kernel.Plane, bool) {
	if c.plane == nil {
		return kernel.Plane{}, false
	}
	return *c.plane, true
}

// foldFunc merges a child's bodies, already expressed in the composite's
// frame, into the composite's result. plane is the child's plane in the same
// frame, or nil for a solid child. The fold owns bodies.
type foldFunc func(child Node, bodies []kernel.Body, plane *kernel.Plane) error

// addChildren attaches children in order. A child that already has a parent
// is copied first. Each child's transform is re-expressed relative to the
// composite so that later transforms of the composite apply to the child and
// the folded result alike. A child that cannot be folded keeps the transform
// it had before the call.
func (c *composite) addChildren(children []Node, fold foldFunc) error {
	for _, child := range children {
		if child == nil {
			return errors.Errorf("component: nil child added to %s", c.Name())
		}
		if child.Parent() != nil {
			cp, err := child.Copy()
			if err != nil {
				return err
			}
			child = cp
		} else if c.isSelfOrAncestor(child) {
			return errors.Wrapf(ErrCycle, "add %s to %s", child.Name(), c.Name())
		}

		cn := child.core()
		prev := cn.local
		cn.local = c.inverseWorld().Mul(child.WorldTransform())
		cn.invalidate()

		bodies, err := c.foldChild(child, fold)
		if err != nil {
			cn.local = prev
			cn.invalidate()
			return err
		}

		cn.parent = c.self
		cn.invalidate()
		c.children = append(c.children, child)
		c.ctx.Log.Debug().
			Str("composite", c.Name()).
			Str("child", child.Name()).
			Int("bodies", len(bodies)).
			Msg("folded child")
	}
	c.invalidate()
	return nil
}

// foldChild folds a detached child whose transform is already relative to c.
// Detached, the child's world frame is the composite's local frame.
func (c *composite) foldChild(child Node, fold foldFunc) ([]kernel.Body, error) {
	bodies, err := child.Bodies()
	if err != nil {
		return nil, err
	}
	var plane *kernel.Plane
	if p, ok := child.Plane(); ok {
		plane = &p
	}
	if err := fold(child, bodies, plane); err != nil {
		return nil, err
	}
	return bodies, nil
}

func (c *composite) isSelfOrAncestor(n Node) bool {
	for p := c.self; p != nil; p = p.Parent() {
		if p == n {
			return true
		}
	}
	return false
}

// copyGeometry deep-copies c's folded result into dst.
func (c *composite) copyGeometry(dst *composite) error {
	bodies, err := copyBodies(c.ctx.Kernel, c.bodies, nil)
	if err != nil {
		return err
	}
	dst.bodies = bodies
	if c.plane != nil {
		p := *c.plane
		dst.plane = &p
	}
	return nil
}
