package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// piece is a convex patch centered at center and spanned by up to three
// half-axis vectors. A flat piece is a parallelogram or parallelepiped; a
// round piece is an ellipse or ellipsoid. Both keep their shape under affine
// transforms, so their axis-aligned extents stay exact.
type piece struct {
	center v3.Vec
	axes   [3]v3.Vec
	round  bool
}

// extent returns the half size of the piece along the world axes.
func (p piece) extent() v3.Vec {
	var e v3.Vec
	for _, a := range p.axes {
		if p.round {
			e = e.Add(v3.Vec{X: a.X * a.X, Y: a.Y * a.Y, Z: a.Z * a.Z})
		} else {
			e = e.Add(a.Abs())
		}
	}
	if p.round {
		e = v3.Vec{X: math.Sqrt(e.X), Y: math.Sqrt(e.Y), Z: math.Sqrt(e.Z)}
	}
	return e
}

func (p piece) transform(m sdf.M44) piece {
	out := piece{center: m.MulPosition(p.center), round: p.round}
	for i, a := range p.axes {
		out.axes[i] = direction(m, a)
	}
	return out
}

// direction applies the linear part of m to v.
func direction(m sdf.M44, v v3.Vec) v3.Vec {
	return m.MulPosition(v).Sub(m.MulPosition(v3.Vec{}))
}

// hull is a set of pieces whose union contains a solid. When loose is false
// the solid touches the box of the hull on every side.
type hull struct {
	pieces []piece
	loose  bool
}

func (h hull) box() sdf.Box3 {
	if len(h.pieces) == 0 {
		return sdf.Box3{}
	}
	var bb sdf.Box3
	for i, p := range h.pieces {
		e := p.extent()
		pb := sdf.Box3{Min: p.center.Sub(e), Max: p.center.Add(e)}
		if i == 0 {
			bb = pb
			continue
		}
		bb = bb.Extend(pb)
	}
	return bb
}

func (h hull) transform(m sdf.M44) hull {
	out := hull{pieces: make([]piece, len(h.pieces)), loose: h.loose}
	for i, p := range h.pieces {
		out.pieces[i] = p.transform(m)
	}
	return out
}

func (h hull) merge(o hull) hull {
	pieces := make([]piece, 0, len(h.pieces)+len(o.pieces))
	pieces = append(pieces, h.pieces...)
	pieces = append(pieces, o.pieces...)
	return hull{pieces: pieces, loose: h.loose || o.loose}
}

// boxHull returns a loose hull covering bb.
func boxHull(bb sdf.Box3) hull {
	h := bb.Size().MulScalar(0.5)
	return hull{
		pieces: []piece{{
			center: bb.Center(),
			axes:   [3]v3.Vec{{X: h.X}, {Y: h.Y}, {Z: h.Z}},
		}},
		loose: true,
	}
}

// flatPiece spans the local box lb placed by frame.
func flatPiece(frame sdf.M44, lb sdf.Box3) piece {
	h := lb.Size().MulScalar(0.5)
	return piece{
		center: frame.MulPosition(lb.Center()),
		axes: [3]v3.Vec{
			direction(frame, v3.Vec{X: h.X}),
			direction(frame, v3.Vec{Y: h.Y}),
			direction(frame, v3.Vec{Z: h.Z}),
		},
	}
}

// diskPiece is a disk of radius r in the local XY plane of frame.
func diskPiece(frame sdf.M44, r float64) piece {
	return piece{
		center: frame.MulPosition(v3.Vec{}),
		axes:   [3]v3.Vec{direction(frame, v3.Vec{X: r}), direction(frame, v3.Vec{Y: r})},
		round:  true,
	}
}

const (
	// boundsSamples is the sampling grid used to find a solid's extreme
	// layers inside a loose region.
	boundsSamples = 20
	// boundsSteps is the number of bisection steps used to settle each
	// extreme to well below a grid cell.
	boundsSteps = 32
)

// tighten shrinks region, which must contain the solid, to the box of the
// solid's surface. Each side is found by sampling a grid over the region and
// bisecting outward from the inside samples of the extreme layer. When no
// sample lands inside the solid it returns the padded region.
func tighten(s sdf.SDF3, region sdf.Box3) sdf.Box3 {
	size := region.Size()
	pad := size.MulScalar(0.01).AddScalar(1e-6)
	region = sdf.Box3{Min: region.Min.Sub(pad), Max: region.Max.Add(pad)}
	n := boundsSamples
	step := region.Size().DivScalar(float64(n - 1))
	at := func(i, j, k int) v3.Vec {
		return region.Min.Add(v3.Vec{X: float64(i) * step.X, Y: float64(j) * step.Y, Z: float64(k) * step.Z})
	}

	inside := make([]bool, n*n*n)
	found := false
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				if s.Evaluate(at(i, j, k)) <= 0 {
					inside[(i*n+j)*n+k] = true
					found = true
				}
			}
		}
	}
	if !found {
		return region
	}

	out := region
	for axis := 0; axis < 3; axis++ {
		for _, sign := range []int{-1, 1} {
			v := extreme(s, inside, n, at, step.Get(axis), axis, sign)
			if sign > 0 {
				out.Max.Set(axis, v)
			} else {
				out.Min.Set(axis, v)
			}
		}
	}
	return out
}

// extreme returns the coordinate of the solid's boundary along axis, on the
// side given by sign. Layers are scanned from that side inward and the first
// one holding inside samples is bisected outward, one stride at most.
func extreme(s sdf.SDF3, inside []bool, n int, at func(i, j, k int) v3.Vec, stride float64, axis, sign int) float64 {
	cell := func(layer, a, b int) [3]int {
		switch axis {
		case 0:
			return [3]int{layer, a, b}
		case 1:
			return [3]int{a, layer, b}
		}
		return [3]int{a, b, layer}
	}
	var dir v3.Vec
	dir.Set(axis, float64(sign))

	layer := 0
	if sign > 0 {
		layer = n - 1
	}
	for ; layer >= 0 && layer < n; layer -= sign {
		best := math.Inf(-1)
		var edge float64
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				c := cell(layer, a, b)
				if !inside[(c[0]*n+c[1])*n+c[2]] {
					continue
				}
				p := at(c[0], c[1], c[2])
				edge = p.Get(axis)
				if d := bisect(s, p, dir, stride); d > best {
					best = d
				}
			}
		}
		if !math.IsInf(best, -1) {
			return edge + float64(sign)*best
		}
	}
	// Unreachable while some sample is inside.
	return 0
}

// bisect returns how far the surface lies from the inside point p along dir,
// searching up to reach.
func bisect(s sdf.SDF3, p, dir v3.Vec, reach float64) float64 {
	lo, hi := 0.0, reach
	for i := 0; i < boundsSteps; i++ {
		mid := (lo + hi) / 2
		if s.Evaluate(p.Add(dir.MulScalar(mid))) <= 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
