package placement

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Place is "this point of this node": the left or right operand of an
// alignment. It is ephemeral and may carry the error that occurred while
// resolving the point, which then flows into any Translation built from it.
type Place struct {
	point v3.Vec
	err   error
}

// At returns a Place for a fixed point.
func At(p v3.Vec) Place {
	return Place{point: p}
}

// Invalid returns a Place that failed to resolve.
func Invalid(err error) Place {
	return Place{err: err}
}

// Point returns the resolved point.
func (p Place) Point() (v3.Vec, error) {
	return p.point, p.err
}

// To returns the translation that moves p onto q.
func (p Place) To(q Place) Translation {
	if p.err != nil {
		return Translation{err: p.err}
	}
	if q.err != nil {
		return Translation{err: q.err}
	}
	return Translation{v: q.point.Sub(p.point)}
}

// ToPoint returns the translation that moves p onto v.
func (p Place) ToPoint(v v3.Vec) Translation {
	return p.To(At(v))
}

// ToScalar returns the translation that moves p onto (f, f, f). Only the
// component used by the caller matters, so this reads as "move p to f".
func (p Place) ToScalar(f float64) Translation {
	return p.To(At(v3.Vec{X: f, Y: f, Z: f}))
}

// Translation is the result of an alignment: a vector, or the error that
// prevented computing it.
type Translation struct {
	v   v3.Vec
	err error
}

// Vector wraps a plain vector as a Translation.
func Vector(v v3.Vec) Translation {
	return Translation{v: v}
}

// None is the zero translation.
func None() Translation {
	return Translation{}
}

// Offset adds d to every component, leaving an explicit gap between aligned
// points.
func (t Translation) Offset(d float64) Translation {
	if t.err != nil {
		return t
	}
	return Translation{v: v3.Vec{X: t.v.X + d, Y: t.v.Y + d, Z: t.v.Z + d}}
}

// Scale multiplies every component by f.
func (t Translation) Scale(f float64) Translation {
	if t.err != nil {
		return t
	}
	return Translation{v: t.v.MulScalar(f)}
}

// Vec returns the translation vector.
func (t Translation) Vec() (v3.Vec, error) {
	return t.v, t.err
}

// Err returns the error carried by the translation, if any.
func (t Translation) Err() error {
	return t.err
}

func (t Translation) X() float64 { return t.v.X }
func (t Translation) Y() float64 { return t.v.Y }
func (t Translation) Z() float64 { return t.v.Z }
