// Package placement implements the affine transform algebra used to position
// component nodes. Transforms are sdfx 4x4 matrices in column-vector
// convention: a point p is mapped by m.MulPosition(p), and "apply m, then n"
// is written n.Mul(m).
package placement

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// ErrNonUniformScale is returned when a scale would stretch one axis more
// than another. Leaf shapes rely on their face layout surviving a transform,
// which only holds for uniform scales.
var ErrNonUniformScale = errors.New("non-uniform scaling is not supported")

// ErrZeroScale is returned for a scale factor of zero.
var ErrZeroScale = errors.New("scale factor must be non-zero")

// Origin is the world origin.
var Origin = v3.Vec{}

// Axis names one of the three world axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Unit returns the unit vector along the axis.
func (a Axis) Unit() v3.Vec {
	switch a {
	case AxisY:
		return v3.Vec{Y: 1}
	case AxisZ:
		return v3.Vec{Z: 1}
	default:
		return v3.Vec{X: 1}
	}
}

// Component returns the coordinate of v along the axis.
func (a Axis) Component(v v3.Vec) float64 {
	switch a {
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	default:
		return v.X
	}
}

// Identity returns the identity transform.
func Identity() sdf.M44 {
	return sdf.Identity3d()
}

// Translate returns a translation by (tx, ty, tz).
func Translate(tx, ty, tz float64) sdf.M44 {
	return sdf.Translate3d(v3.Vec{X: tx, Y: ty, Z: tz})
}

// about conjugates m so that it acts about center: T(+c)·m·T(-c).
func about(m sdf.M44, center v3.Vec) sdf.M44 {
	if center == Origin {
		return m
	}
	back := v3.Vec{X: -center.X, Y: -center.Y, Z: -center.Z}
	return sdf.Translate3d(center).Mul(m).Mul(sdf.Translate3d(back))
}

// Rotation returns a rotation of degrees about an axis-parallel line through center.
func Rotation(axis Axis, degrees float64, center v3.Vec) sdf.M44 {
	rad := degrees * math.Pi / 180.0
	var r sdf.M44
	switch axis {
	case AxisY:
		r = sdf.RotateY(rad)
	case AxisZ:
		r = sdf.RotateZ(rad)
	default:
		r = sdf.RotateX(rad)
	}
	return about(r, center)
}

// Rotate composes up to three rotations, applied in X, Y, Z order, each about
// center. Axes with an angle of exactly zero are skipped.
func Rotate(rx, ry, rz float64, center v3.Vec) sdf.M44 {
	m := sdf.Identity3d()
	steps := []struct {
		axis    Axis
		degrees float64
	}{
		{AxisX, rx},
		{AxisY, ry},
		{AxisZ, rz},
	}
	for _, s := range steps {
		if s.degrees == 0 {
			continue
		}
		m = Rotation(s.axis, s.degrees, center).Mul(m)
	}
	return m
}

// Scale returns a scale about center. The magnitudes of all three factors
// must match; signs may differ, which mirrors across the corresponding plane.
func Scale(sx, sy, sz float64, center v3.Vec) (sdf.M44, error) {
	if math.Abs(sx) != math.Abs(sy) || math.Abs(sy) != math.Abs(sz) {
		return sdf.M44{}, errors.Wrapf(ErrNonUniformScale, "scale (%g, %g, %g)", sx, sy, sz)
	}
	if sx == 0 {
		return sdf.M44{}, errors.WithStack(ErrZeroScale)
	}
	return about(sdf.Scale3d(v3.Vec{X: sx, Y: sy, Z: sz}), center), nil
}

// Then returns the transform that applies m first and next second.
func Then(m, next sdf.M44) sdf.M44 {
	return next.Mul(m)
}

// World composes a node's local transform with its parent's world transform.
// The local transform is applied first.
func World(local, parentWorld sdf.M44) sdf.M44 {
	return parentWorld.Mul(local)
}

// Relative re-expresses a world transform in the frame whose world transform
// is frame: the result r satisfies World(r, frame) == world.
func Relative(world, frame sdf.M44) sdf.M44 {
	return frame.Inverse().Mul(world)
}

// ScaleFactor returns the uniform scale carried by m, measured as the length
// of the image of the unit X vector.
func ScaleFactor(m sdf.M44) float64 {
	o := m.MulPosition(Origin)
	x := m.MulPosition(v3.Vec{X: 1})
	return x.Sub(o).Length()
}

// Equal reports whether two transforms agree within tol on every cell.
func Equal(a, b sdf.M44, tol float64) bool {
	return a.Equals(b, tol)
}
