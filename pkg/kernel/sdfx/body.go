package sdfx

import (
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/placement"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Compile-time interface checks.
var _ kernel.Body = (*body)(nil)
var _ kernel.Face = (*face)(nil)

// body wraps either an sdf.SDF3 (solid) or a single planar face (sheet).
// Solids carry a hull next to the distance field; the field's own bounding
// box only grows through transforms and booleans.
type body struct {
	solid sdf.SDF3
	faces []*face
	hull  hull
	tight *sdf.Box3 // bounds of a loose hull, once measured
}

func (b *body) EntityKind() kernel.EntityKind { return kernel.EntityBody }

// Faces returns the body's faces. After a boolean operation these are the
// surviving planar pieces of both operands and the untouched curved ones.
func (b *body) Faces() []kernel.Face {
	out := make([]kernel.Face, len(b.faces))
	for i, f := range b.faces {
		out[i] = f
	}
	return out
}

// IsSheet reports whether the body is a planar sheet.
func (b *body) IsSheet() bool {
	return b.solid == nil
}

// sheet returns the face of a sheet body.
func (b *body) sheet() *face {
	return b.faces[0]
}

// bounds returns the world-space box of the body.
func (b *body) bounds() sdf.Box3 {
	if b.IsSheet() {
		return b.sheet().bounds()
	}
	bb := b.hull.box()
	if !b.hull.loose {
		return bb
	}
	if b.tight == nil {
		t := tighten(b.solid, bb)
		b.tight = &t
	}
	return *b.tight
}

// mergeHull returns a hull for b that can be merged into another body's.
func (b *body) mergeHull() hull {
	if b.hull.loose {
		return boxHull(b.bounds())
	}
	return b.hull
}

func (b *body) clone() *body {
	c := &body{solid: b.solid, faces: make([]*face, len(b.faces)), hull: b.hull, tight: b.tight}
	for i, f := range b.faces {
		c.faces[i] = f.clone()
	}
	return c
}

func (b *body) transform(m sdf.M44) {
	if b.solid != nil {
		b.solid = sdf.Transform3D(b.solid, m)
		b.hull = b.hull.transform(m)
		b.tight = nil
	}
	for _, f := range b.faces {
		f.transform(m)
	}
}

// face is an analytic face. Its frame maps face-local coordinates to world
// space; face-local +Z is the outward normal and planar faces lie in the
// local XY plane, bounded by profile.
type face struct {
	kind      kernel.SurfaceKind
	frame     sdf.M44
	local     sdf.Box3 // extent in face-local coordinates
	profile   sdf.SDF2 // planar faces only
	area      float64
	perimeter float64 // planar faces; zero when unknown
}

func (f *face) EntityKind() kernel.EntityKind { return kernel.EntityFace }

func (f *face) Surface() kernel.SurfaceKind { return f.kind }

func (f *face) Area() float64 { return f.area }

// Plane returns the supporting plane of a planar face.
func (f *face) Plane() (kernel.Plane, bool) {
	if f.kind != kernel.SurfacePlane {
		return kernel.Plane{}, false
	}
	o := f.frame.MulPosition(v3.Vec{})
	n := f.frame.MulPosition(v3.Vec{Z: 1}).Sub(o)
	return kernel.NewPlane(o, n), true
}

// bounds returns the face's axis-aligned world-space box.
func (f *face) bounds() sdf.Box3 {
	return f.frame.MulBox(f.local)
}

func (f *face) clone() *face {
	c := *f
	return &c
}

func (f *face) transform(m sdf.M44) {
	s := placement.ScaleFactor(m)
	f.frame = m.Mul(f.frame)
	f.area *= s * s
	f.perimeter *= s
}

// flipped returns a copy of f whose normal points the other way. The local
// XY plane maps to the same place, so the profile is unchanged.
func (f *face) flipped() *face {
	c := f.clone()
	c.frame = c.frame.Mul(sdf.Scale3d(v3.Vec{X: 1, Y: 1, Z: -1}))
	return c
}

// planarFace builds a planar face over profile, placed by frame.
func planarFace(frame sdf.M44, profile sdf.SDF2, area, perimeter float64) *face {
	bb := profile.BoundingBox()
	return &face{
		kind:  kernel.SurfacePlane,
		frame: frame,
		local: sdf.Box3{
			Min: v3.Vec{X: bb.Min.X, Y: bb.Min.Y},
			Max: v3.Vec{X: bb.Max.X, Y: bb.Max.Y},
		},
		profile:   profile,
		area:      area,
		perimeter: perimeter,
	}
}

// unwrap extracts the underlying body from a kernel.Body.
func unwrap(b kernel.Body) (*body, error) {
	sb, ok := b.(*body)
	if !ok || sb == nil {
		return nil, errors.Errorf("sdfx: foreign body %T", b)
	}
	return sb, nil
}

// unwrapFace extracts the underlying face from a kernel.Face.
func unwrapFace(f kernel.Face) (*face, error) {
	sf, ok := f.(*face)
	if !ok || sf == nil {
		return nil, errors.Errorf("sdfx: foreign face %T", f)
	}
	return sf, nil
}

// areaSamples is the grid resolution used to re-measure profile areas after
// 2D boolean operations.
const areaSamples = 256

// measureArea estimates the area enclosed by a 2D distance field by sampling
// cell centers over its bounding box.
func measureArea(s sdf.SDF2) float64 {
	bb := s.BoundingBox()
	size := bb.Size()
	if size.X <= 0 || size.Y <= 0 {
		return 0
	}
	dx := size.X / areaSamples
	dy := size.Y / areaSamples
	inside := 0
	for i := 0; i < areaSamples; i++ {
		for j := 0; j < areaSamples; j++ {
			p := v2.Vec{X: bb.Min.X + (float64(i)+0.5)*dx, Y: bb.Min.Y + (float64(j)+0.5)*dy}
			if s.Evaluate(p) <= 0 {
				inside++
			}
		}
	}
	return float64(inside) * dx * dy
}

// Solid returns the distance field of a solid body created by this package.
func Solid(b kernel.Body) (sdf.SDF3, error) {
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	if sb.IsSheet() {
		return nil, errors.New("sdfx: sheet bodies have no distance field")
	}
	return sb.solid, nil
}
