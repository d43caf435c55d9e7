package component

import (
	"github.com/chazu/facet/pkg/kernel"
	"github.com/pkg/errors"
)

// Loft is a solid swept through an ordered list of planar sections. Its
// sections become its children.
type Loft struct {
	composite
	faces   []kernel.Face
	section *kernel.Plane // plane of the first section while folding
}

// NewLoft lofts through sections in order. Every section must be planar and
// consist of a single face.
func NewLoft(ctx *Context, sections ...Node) (*Loft, error) {
	l := &Loft{}
	l.initNode(l, ctx, "Loft")
	if err := l.addChildren(sections, l.fold); err != nil {
		return nil, err
	}
	if len(l.faces) < 2 {
		return nil, errors.Wrapf(ErrInvalidSection, "loft needs at least two sections, got %d", len(l.faces))
	}
	body, err := ctx.Kernel.Loft(l.faces)
	if err != nil {
		return nil, errors.Wrap(err, "loft")
	}
	l.faces = nil
	l.section = nil
	l.bodies = []kernel.Body{body}
	l.invalidate()
	return l, nil
}

func (l *Loft) fold(child Node, bodies []kernel.Body, plane *kernel.Plane) error {
	p, err := reconcilePlanes(sectionPlanes, len(l.faces) > 0, l.section, plane)
	if err != nil {
		return errors.Wrap(err, child.Name())
	}
	var faces []kernel.Face
	for _, b := range bodies {
		faces = append(faces, b.Faces()...)
	}
	if len(faces) != 1 {
		return errors.Wrapf(ErrInvalidSection, "%s has %d faces, want 1", child.Name(), len(faces))
	}
	l.section = p
	l.faces = append(l.faces, faces[0])
	return nil
}

func (l *Loft) clone() (Node, error) {
	c := &Loft{}
	c.initNode(c, l.ctx, "Loft")
	if err := l.copyGeometry(&c.composite); err != nil {
		return nil, err
	}
	return c, nil
}

func (l *Loft) face(i int) (kernel.Face, error) {
	bodies, err := l.Bodies()
	if err != nil {
		return nil, err
	}
	faces := bodies[0].Faces()
	if i >= len(faces) {
		return nil, errors.Errorf("component: %s has no face %d", l.Name(), i)
	}
	return faces[i], nil
}

// Top is the face at the last section.
func (l *Loft) Top() (kernel.Face, error) { return l.face(0) }

// Bottom is the face at the first section.
func (l *Loft) Bottom() (kernel.Face, error) { return l.face(1) }

// Sides are the lateral faces between consecutive sections.
func (l *Loft) Sides() ([]kernel.Face, error) {
	bodies, err := l.Bodies()
	if err != nil {
		return nil, err
	}
	faces := bodies[0].Faces()
	if len(faces) < 2 {
		return nil, nil
	}
	return faces[2:], nil
}
