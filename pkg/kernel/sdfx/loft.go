package sdfx

import (
	"math"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/placement"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// offsetTolerance is the smallest separation between consecutive sections.
const offsetTolerance = 1e-9

// section is a loft cross-section expressed in the loft's reference frame.
type section struct {
	src     *face
	profile sdf.SDF2
	z       float64
}

// Loft joins parallel planar sections in order. Each consecutive pair is
// lofted with sdf.Loft3D and the pieces are unioned.
func (k *SdfxKernel) Loft(sections []kernel.Face) (kernel.Body, error) {
	if len(sections) < 2 {
		return nil, errors.Errorf("sdfx: loft needs at least two sections, got %d", len(sections))
	}
	faces := make([]*face, len(sections))
	for i, s := range sections {
		f, err := unwrapFace(s)
		if err != nil {
			return nil, err
		}
		if f.kind != kernel.SurfacePlane {
			return nil, errors.Wrapf(kernel.ErrUnsupported, "sdfx: loft section %d is a %s face", i, f.kind)
		}
		faces[i] = f
	}

	ref := faces[0].frame
	secs, err := resolveSections(faces, ref)
	if err != nil {
		return nil, err
	}
	if secs[1].z < secs[0].z {
		// Sections run against the first normal; look from the other side.
		ref = ref.Mul(sdf.Scale3d(v3.Vec{X: 1, Y: 1, Z: -1}))
		if secs, err = resolveSections(faces, ref); err != nil {
			return nil, err
		}
	}

	pieces := make([]sdf.SDF3, 0, len(secs)-1)
	for i := 0; i+1 < len(secs); i++ {
		lo, hi := secs[i], secs[i+1]
		h := hi.z - lo.z
		if h <= offsetTolerance {
			return nil, errors.Errorf("sdfx: loft sections %d and %d are not in increasing order", i, i+1)
		}
		piece, err := sdf.Loft3D(lo.profile, hi.profile, h, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "sdfx.Loft3D: sections %d and %d", i, i+1)
		}
		pieces = append(pieces, sdf.Transform3D(piece, sdf.Translate3d(v3.Vec{Z: (lo.z + hi.z) / 2})))
	}

	b := &body{solid: sdf.Transform3D(sdf.Union3D(pieces...), ref), hull: hull{loose: true}}
	for i := 0; i+1 < len(secs); i++ {
		b.hull.pieces = append(b.hull.pieces, flatPiece(ref, span(secs[i], secs[i+1])))
	}

	first, last := secs[0], secs[len(secs)-1]
	top := planarFace(ref.Mul(sdf.Translate3d(v3.Vec{Z: last.z})), last.profile, last.src.area, last.src.perimeter)
	bottom := planarFace(ref.Mul(sdf.Translate3d(v3.Vec{Z: first.z})), first.profile, first.src.area, first.src.perimeter).flipped()
	b.faces = append(b.faces, top, bottom)

	s := placement.ScaleFactor(ref)
	for i := 0; i+1 < len(secs); i++ {
		lo, hi := secs[i], secs[i+1]
		b.faces = append(b.faces, &face{
			kind:  kernel.SurfaceRuled,
			frame: ref,
			local: span(lo, hi),
			area:  (hi.z - lo.z) * s * (lo.src.perimeter + hi.src.perimeter) / 2,
		})
	}
	return b, nil
}

// span is the prism between two sections that holds the piece lofted
// between them.
func span(lo, hi section) sdf.Box3 {
	bl, bh := lo.profile.BoundingBox(), hi.profile.BoundingBox()
	return sdf.Box3{
		Min: v3.Vec{X: math.Min(bl.Min.X, bh.Min.X), Y: math.Min(bl.Min.Y, bh.Min.Y), Z: lo.z},
		Max: v3.Vec{X: math.Max(bl.Max.X, bh.Max.X), Y: math.Max(bl.Max.Y, bh.Max.Y), Z: hi.z},
	}
}

// resolveSections expresses every face in ref's local frame. All faces must
// be parallel to the first.
func resolveSections(faces []*face, ref sdf.M44) ([]section, error) {
	p0, _ := faces[0].Plane()
	inv := ref.Inverse()
	out := make([]section, len(faces))
	for i, f := range faces {
		p, _ := f.Plane()
		if !p.IsParallelTo(p0) {
			return nil, errors.Wrapf(kernel.ErrUnsupported, "sdfx: loft section %d is not parallel to the first", i)
		}
		m := inv.Mul(f.frame)
		out[i] = section{
			src:     f,
			profile: sdf.Transform2D(f.profile, planarTransform(m)),
			z:       m.MulPosition(v3.Vec{}).Z,
		}
	}
	return out, nil
}
