package sdfx

import (
	"math"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/placement"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// BooleanOperation combines tool into target in place. tool is left as it was.
func (k *SdfxKernel) BooleanOperation(target, tool kernel.Body, op kernel.BooleanOp) error {
	t, err := unwrap(target)
	if err != nil {
		return err
	}
	o, err := unwrap(tool)
	if err != nil {
		return err
	}

	switch {
	case !t.IsSheet() && !o.IsSheet():
		return solidBoolean(t, o, op)
	case t.IsSheet() && o.IsSheet():
		return sheetBoolean(t, o, op)
	case t.IsSheet():
		return sheetSolidBoolean(t, o, op)
	default:
		return solidSheetBoolean(t, o, op)
	}
}

func solidBoolean(t, o *body, op kernel.BooleanOp) error {
	tb, ob := t.bounds(), o.bounds()
	var (
		solid sdf.SDF3
		h     hull
	)
	switch op {
	case kernel.OpUnion:
		solid = sdf.Union3D(t.solid, o.solid)
		h = t.mergeHull().merge(o.mergeHull())
	case kernel.OpDifference:
		solid = sdf.Difference3D(t.solid, o.solid)
		h = boxHull(tb)
	case kernel.OpIntersection:
		solid = sdf.Intersect3D(t.solid, o.solid)
		h = boxHull(overlap(tb, ob))
	default:
		return errors.Errorf("sdfx: unknown boolean operation %d", op)
	}

	rules := faceRules[op]
	var faces []*face
	for _, f := range t.faces {
		if c := clip(f, o.solid, ob, rules[0]); c != nil {
			faces = append(faces, c)
		}
	}
	for _, f := range o.faces {
		c := clip(f, t.solid, tb, rules[1])
		if c == nil {
			continue
		}
		if op == kernel.OpDifference {
			c = c.flipped()
		}
		faces = append(faces, c)
	}

	t.solid = solid
	t.hull = h
	t.tight = nil
	t.faces = faces
	return nil
}

// faceRule picks the side of a face that is tested against the other
// operand, and whether the face survives where that side is inside it.
type faceRule struct {
	side   float64 // +1 off the front of the face, -1 behind it
	inside bool
}

// faceRules holds the rules for target and tool faces of each operation.
var faceRules = map[kernel.BooleanOp][2]faceRule{
	kernel.OpUnion:        {{side: 1}, {side: 1}},
	kernel.OpDifference:   {{side: -1}, {side: 1, inside: true}},
	kernel.OpIntersection: {{side: -1, inside: true}, {side: -1, inside: true}},
}

const (
	// clipOffset keeps the tested side off faces that are flush with the
	// other solid's surface.
	clipOffset = 1e-6
	// clipSamples is the grid used to measure the part of a face that
	// survives.
	clipSamples = 128
)

// clip returns what is left of f after testing it against other, or nil
// when nothing is left. Faces clear of other pass or drop whole; curved
// faces that reach into other are dropped.
func clip(f *face, other sdf.SDF3, otherBounds sdf.Box3, r faceRule) *face {
	if !overlaps(f.bounds(), otherBounds) {
		if r.inside {
			return nil
		}
		return f.clone()
	}
	if f.kind != kernel.SurfacePlane {
		return nil
	}

	bb := f.profile.BoundingBox()
	cut := &planeSection{
		solid: other,
		frame: f.frame.Mul(sdf.Translate3d(v3.Vec{Z: r.side * clipOffset})),
		bb:    bb,
	}
	var profile sdf.SDF2
	if r.inside {
		profile = sdf.Intersect2D(f.profile, cut)
	} else {
		profile = sdf.Difference2D(f.profile, cut)
	}

	size := bb.Size()
	dx, dy := size.X/clipSamples, size.Y/clipSamples
	total, kept := 0, 0
	for i := 0; i < clipSamples; i++ {
		for j := 0; j < clipSamples; j++ {
			p := v2.Vec{X: bb.Min.X + (float64(i)+0.5)*dx, Y: bb.Min.Y + (float64(j)+0.5)*dy}
			if f.profile.Evaluate(p) > 0 {
				continue
			}
			total++
			if profile.Evaluate(p) <= 0 {
				kept++
			}
		}
	}
	switch {
	case kept == 0:
		return nil
	case kept == total:
		return f.clone()
	}
	c := f.clone()
	c.profile = profile
	c.area = f.area * float64(kept) / float64(total)
	c.perimeter = 0
	return c
}

func overlaps(a, b sdf.Box3) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}

// overlap returns the common part of a and b, collapsed to a point or slab
// when they are disjoint.
func overlap(a, b sdf.Box3) sdf.Box3 {
	lo := a.Min.Max(b.Min)
	hi := a.Max.Min(b.Max)
	return sdf.Box3{Min: lo, Max: hi.Max(lo)}
}

func sheetBoolean(t, o *body, op kernel.BooleanOp) error {
	tf, of := t.sheet(), o.sheet()
	tp, _ := tf.Plane()
	op2, _ := of.Plane()
	if !tp.IsCoplanarTo(op2) {
		return errors.Wrap(kernel.ErrIncompatibleBodies, "sdfx: sheets are not coplanar")
	}
	tool := sdf.Transform2D(of.profile, planarTransform(tf.frame.Inverse().Mul(of.frame)))

	var profile sdf.SDF2
	switch op {
	case kernel.OpUnion:
		profile = sdf.Union2D(tf.profile, tool)
	case kernel.OpDifference:
		profile = sdf.Difference2D(tf.profile, tool)
	case kernel.OpIntersection:
		profile = sdf.Intersect2D(tf.profile, tool)
	default:
		return errors.Errorf("sdfx: unknown boolean operation %d", op)
	}
	reshape(tf, profile)
	return nil
}

// sheetSolidBoolean cuts a sheet with a solid. Only Difference and
// Intersection make sense; a union would mix dimensions.
func sheetSolidBoolean(t, o *body, op kernel.BooleanOp) error {
	tf := t.sheet()
	cut := &planeSection{solid: o.solid, frame: tf.frame, bb: tf.profile.BoundingBox()}
	switch op {
	case kernel.OpDifference:
		reshape(tf, sdf.Difference2D(tf.profile, cut))
	case kernel.OpIntersection:
		reshape(tf, sdf.Intersect2D(tf.profile, cut))
	default:
		return errors.Wrapf(kernel.ErrIncompatibleBodies, "sdfx: %s of a sheet and a solid", op)
	}
	return nil
}

// solidSheetBoolean intersects a solid with a sheet, turning the target into
// a sheet.
func solidSheetBoolean(t, o *body, op kernel.BooleanOp) error {
	if op != kernel.OpIntersection {
		return errors.Wrapf(kernel.ErrIncompatibleBodies, "sdfx: %s of a solid and a sheet", op)
	}
	of := o.sheet().clone()
	cut := &planeSection{solid: t.solid, frame: of.frame, bb: of.profile.BoundingBox()}
	reshape(of, sdf.Intersect2D(of.profile, cut))
	t.solid = nil
	t.hull = hull{}
	t.tight = nil
	t.faces = []*face{of}
	return nil
}

// reshape replaces a planar face's profile and re-measures it.
func reshape(f *face, profile sdf.SDF2) {
	bb := profile.BoundingBox()
	f.profile = profile
	f.local = sdf.Box3{
		Min: v3.Vec{X: bb.Min.X, Y: bb.Min.Y},
		Max: v3.Vec{X: bb.Max.X, Y: bb.Max.Y},
	}
	s := placement.ScaleFactor(f.frame)
	f.area = measureArea(profile) * s * s
	f.perimeter = 0
}

// planarTransform reduces m, which must map the local XY plane onto itself
// up to a Z offset, to the equivalent 2D transform.
func planarTransform(m sdf.M44) sdf.M33 {
	o := m.MulPosition(v3.Vec{})
	ex := m.MulPosition(v3.Vec{X: 1}).Sub(o)
	ey := m.MulPosition(v3.Vec{Y: 1}).Sub(o)
	s := math.Hypot(ex.X, ex.Y)
	sy := s
	if ex.X*ey.Y-ex.Y*ey.X < 0 {
		sy = -s
	}
	return sdf.Translate2d(v2.Vec{X: o.X, Y: o.Y}).
		Mul(sdf.Rotate2d(math.Atan2(ex.Y, ex.X))).
		Mul(sdf.Scale2d(v2.Vec{X: s, Y: sy}))
}

// planeSection is the 2D cross-section of a solid in the XY plane of frame.
type planeSection struct {
	solid sdf.SDF3
	frame sdf.M44
	bb    sdf.Box2
}

func (p *planeSection) Evaluate(q v2.Vec) float64 {
	return p.solid.Evaluate(p.frame.MulPosition(v3.Vec{X: q.X, Y: q.Y}))
}

func (p *planeSection) BoundingBox() sdf.Box2 {
	return p.bb
}
