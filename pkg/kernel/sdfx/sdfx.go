// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Solids are signed distance
// fields; faces of primitives are tracked analytically next to them.
package sdfx

import (
	"math"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// axisTolerance bounds how far reference axes may stray from world X/Y.
const axisTolerance = 1e-12

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells int
}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{meshCells: DefaultMeshCells}
}

// SetMeshCells sets the marching cubes resolution used by ToMesh.
func (k *SdfxKernel) SetMeshCells(cells int) {
	if cells > 0 {
		k.meshCells = cells
	}
}

var (
	unitX = v3.Vec{X: 1}
	unitY = v3.Vec{Y: 1}
	unitZ = v3.Vec{Z: 1}
)

// flipX is a 180 degree turn about the X axis.
var flipX = sdf.Scale3d(v3.Vec{X: 1, Y: -1, Z: -1})

// CreateBox creates a box from an oriented box descriptor. Faces are ordered
// top, bottom, front, left, back, right, relative to the box's own axes.
func (k *SdfxKernel) CreateBox(ob kernel.OrientedBox) (kernel.Body, error) {
	if ob.Length <= 0 || ob.Width <= 0 || ob.Height <= 0 {
		return nil, errors.Errorf("sdfx: box extents must be positive, got %g x %g x %g", ob.Length, ob.Width, ob.Height)
	}
	s, err := sdf.Box3D(v3.Vec{X: ob.Length, Y: ob.Width, Z: ob.Height}, 0)
	if err != nil {
		return nil, errors.Wrap(err, "sdfx.Box3D")
	}
	orient, err := basis(ob.LengthDir, ob.WidthDir)
	if err != nil {
		return nil, err
	}
	m := sdf.Translate3d(ob.Center).Mul(orient)

	l, w, h := ob.Length, ob.Width, ob.Height
	hx, hy, hz := l/2, w/2, h/2
	quarter := math.Pi / 2
	local := []struct {
		frame sdf.M44
		sizeU float64
		sizeV float64
	}{
		{sdf.Translate3d(v3.Vec{Z: hz}), l, w},                             // top
		{sdf.Translate3d(v3.Vec{Z: -hz}).Mul(flipX), l, w},                 // bottom
		{sdf.Translate3d(v3.Vec{Y: -hy}).Mul(sdf.RotateX(quarter)), l, h},  // front
		{sdf.Translate3d(v3.Vec{X: -hx}).Mul(sdf.RotateY(-quarter)), h, w}, // left
		{sdf.Translate3d(v3.Vec{Y: hy}).Mul(sdf.RotateX(-quarter)), l, h},  // back
		{sdf.Translate3d(v3.Vec{X: hx}).Mul(sdf.RotateY(quarter)), h, w},   // right
	}
	half := v3.Vec{X: hx, Y: hy, Z: hz}
	b := &body{
		solid: sdf.Transform3D(s, m),
		hull:  hull{pieces: []piece{flatPiece(m, sdf.Box3{Min: half.Neg(), Max: half})}},
	}
	for _, lf := range local {
		profile := sdf.Box2D(v2.Vec{X: lf.sizeU, Y: lf.sizeV}, 0)
		b.faces = append(b.faces, planarFace(m.Mul(lf.frame), profile, lf.sizeU*lf.sizeV, 2*(lf.sizeU+lf.sizeV)))
	}
	return b, nil
}

// CreateCylinderOrCone creates a cylinder, or a cone when the radii differ,
// from base to apex. Faces are ordered side, bottom, top; the top face is
// omitted when apexRadius is zero.
func (k *SdfxKernel) CreateCylinderOrCone(base v3.Vec, baseRadius float64, apex v3.Vec, apexRadius float64) (kernel.Body, error) {
	if baseRadius <= 0 {
		return nil, errors.Wrapf(kernel.ErrUnsupported, "sdfx: base radius must be positive, got %g", baseRadius)
	}
	if apexRadius < 0 {
		return nil, errors.Errorf("sdfx: apex radius must not be negative, got %g", apexRadius)
	}
	axis := apex.Sub(base)
	height := axis.Length()
	if height <= 0 {
		return nil, errors.New("sdfx: cylinder base and apex coincide")
	}

	var (
		s    sdf.SDF3
		err  error
		kind kernel.SurfaceKind
		side float64
	)
	if baseRadius == apexRadius {
		s, err = sdf.Cylinder3D(height, baseRadius, 0)
		kind = kernel.SurfaceCylinder
		side = 2 * math.Pi * baseRadius * height
	} else {
		s, err = sdf.Cone3D(height, baseRadius, apexRadius, 0)
		kind = kernel.SurfaceCone
		slant := math.Hypot(height, baseRadius-apexRadius)
		side = math.Pi * (baseRadius + apexRadius) * slant
	}
	if err != nil {
		return nil, errors.Wrap(err, "sdfx: cylinder")
	}

	// m places a frame with its origin at base and +Z along the axis.
	m := sdf.Translate3d(base).Mul(rotationBetween(unitZ, axis.Normalize()))
	top := m.Mul(sdf.Translate3d(v3.Vec{Z: height}))
	b := &body{
		solid: sdf.Transform3D(s, m.Mul(sdf.Translate3d(v3.Vec{Z: height / 2}))),
		hull:  hull{pieces: []piece{diskPiece(m, baseRadius), diskPiece(top, apexRadius)}},
	}

	rmax := math.Max(baseRadius, apexRadius)
	b.faces = append(b.faces, &face{
		kind:  kind,
		frame: m,
		local: sdf.Box3{Min: v3.Vec{X: -rmax, Y: -rmax}, Max: v3.Vec{X: rmax, Y: rmax, Z: height}},
		area:  side,
	})
	b.faces = append(b.faces, disk(m.Mul(flipX), baseRadius))
	if apexRadius > 0 {
		b.faces = append(b.faces, disk(top, apexRadius))
	}
	return b, nil
}

func disk(frame sdf.M44, r float64) *face {
	profile, err := sdf.Circle2D(r)
	if err != nil {
		// r has already been checked to be positive.
		panic(err)
	}
	return planarFace(frame, profile, math.Pi*r*r, 2*math.Pi*r)
}

// CreateSphere creates a sphere with a single face.
func (k *SdfxKernel) CreateSphere(center v3.Vec, radius float64) (kernel.Body, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, errors.Wrap(err, "sdfx.Sphere3D")
	}
	m := sdf.Translate3d(center)
	ball := piece{
		center: center,
		axes:   [3]v3.Vec{{X: radius}, {Y: radius}, {Z: radius}},
		round:  true,
	}
	return &body{
		solid: sdf.Transform3D(s, m),
		hull:  hull{pieces: []piece{ball}},
		faces: []*face{{
			kind:  kernel.SurfaceSphere,
			frame: m,
			local: sdf.Box3{Min: v3.Vec{X: -radius, Y: -radius, Z: -radius}, Max: v3.Vec{X: radius, Y: radius, Z: radius}},
			area:  4 * math.Pi * radius * radius,
		}},
	}, nil
}

// Copy returns an independent body with identical shape.
func (k *SdfxKernel) Copy(b kernel.Body) (kernel.Body, error) {
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return sb.clone(), nil
}

// CopyFace returns a sheet body holding a copy of a planar face.
func (k *SdfxKernel) CopyFace(f kernel.Face) (kernel.Body, error) {
	sf, err := unwrapFace(f)
	if err != nil {
		return nil, err
	}
	if sf.kind != kernel.SurfacePlane {
		return nil, errors.Wrapf(kernel.ErrUnsupported, "sdfx: cannot copy %s face into a sheet", sf.kind)
	}
	return &body{faces: []*face{sf.clone()}}, nil
}

// Transform applies m to b in place.
func (k *SdfxKernel) Transform(b kernel.Body, m sdf.M44) error {
	sb, err := unwrap(b)
	if err != nil {
		return err
	}
	sb.transform(m)
	return nil
}

// MeasureOrientedBoundingBox measures an entity along the world X and Y
// axes; other reference axes are not supported.
func (k *SdfxKernel) MeasureOrientedBoundingBox(e kernel.Entity, axis1, axis2 v3.Vec) (kernel.OrientedBounds, error) {
	if axis1.Sub(unitX).Length() > axisTolerance || axis2.Sub(unitY).Length() > axisTolerance {
		return kernel.OrientedBounds{}, errors.Wrap(kernel.ErrUnsupported, "sdfx: bounding boxes are measured along world X and Y only")
	}
	var bb sdf.Box3
	switch v := e.(type) {
	case *body:
		bb = v.bounds()
	case *face:
		bb = v.bounds()
	default:
		return kernel.OrientedBounds{}, errors.Errorf("sdfx: cannot measure %T", e)
	}
	size := bb.Size()
	return kernel.OrientedBounds{
		Center: bb.Center(),
		Length: size.X,
		Width:  size.Y,
		Height: size.Z,
	}, nil
}

// solidOf returns a distance field for b. Sheets become a thin slab so they
// can be meshed.
func (k *SdfxKernel) solidOf(b *body) sdf.SDF3 {
	if !b.IsSheet() {
		return b.solid
	}
	f := b.sheet()
	size := f.local.Size()
	thickness := math.Max(size.X, size.Y) * 2 / float64(k.meshCells)
	if thickness <= 0 {
		thickness = 1e-3
	}
	return sdf.Transform3D(sdf.Extrude3D(f.profile, thickness), f.frame)
}

// ToMesh converts a body to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(b kernel.Body) (*kernel.Mesh, error) {
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	sdf3 := k.solidOf(sb)

	renderer := render.NewMarchingCubesUniform(k.meshCells)
	triangles := render.ToTriangles(sdf3, renderer)

	mesh := kernel.NewMesh(len(triangles))
	for _, tri := range triangles {
		mesh.AddTriangle(tri[0], tri[1], tri[2], tri.Normal())
	}
	return mesh, nil
}

// rotationBetween returns a rotation taking unit vector from onto unit vector to.
func rotationBetween(from, to v3.Vec) sdf.M44 {
	c := from.Dot(to)
	axis := from.Cross(to)
	if axis.Length() < axisTolerance {
		if c > 0 {
			return sdf.Identity3d()
		}
		perp := from.Cross(unitZ)
		if perp.Length() < axisTolerance {
			perp = from.Cross(unitY)
		}
		return sdf.Rotate3d(perp.Normalize(), math.Pi)
	}
	return sdf.Rotate3d(axis.Normalize(), math.Atan2(axis.Length(), c))
}

// basis returns the rotation taking X onto lengthDir and Y onto widthDir.
func basis(lengthDir, widthDir v3.Vec) (sdf.M44, error) {
	if lengthDir.Length() == 0 || widthDir.Length() == 0 {
		return sdf.M44{}, errors.New("sdfx: box axis directions must be non-zero")
	}
	a1 := lengthDir.Normalize()
	a2 := widthDir.Normalize()
	if math.Abs(a1.Dot(a2)) > 1e-9 {
		return sdf.M44{}, errors.New("sdfx: box axis directions must be orthogonal")
	}
	if a1 == unitX && a2 == unitY {
		return sdf.Identity3d(), nil
	}
	r := rotationBetween(unitX, a1)
	y := r.MulPosition(unitY)
	angle := math.Atan2(y.Cross(a2).Dot(a1), y.Dot(a2))
	return sdf.Rotate3d(a1, angle).Mul(r), nil
}
