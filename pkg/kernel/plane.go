package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// PlaneTolerance is the distance and angle tolerance used by coplanarity tests.
const PlaneTolerance = 1e-9

// Plane is an infinite plane through Origin with unit Normal.
type Plane struct {
	Origin v3.Vec
	Normal v3.Vec
}

// NewPlane returns a plane through origin with the given (not necessarily
// unit) normal.
func NewPlane(origin, normal v3.Vec) Plane {
	return Plane{Origin: origin, Normal: normal.Normalize()}
}

// IsParallelTo reports whether the planes' normals are parallel or antiparallel.
func (p Plane) IsParallelTo(q Plane) bool {
	return p.Normal.Cross(q.Normal).Length() <= PlaneTolerance
}

// IsCoplanarTo reports whether p and q describe the same geometric plane.
// Orientation is ignored.
func (p Plane) IsCoplanarTo(q Plane) bool {
	if !p.IsParallelTo(q) {
		return false
	}
	return math.Abs(p.Distance(q.Origin)) <= PlaneTolerance
}

// Distance returns the signed distance from v to the plane.
func (p Plane) Distance(v v3.Vec) float64 {
	return v.Sub(p.Origin).Dot(p.Normal)
}

// Transform maps the plane through m.
func (p Plane) Transform(m sdf.M44) Plane {
	o := m.MulPosition(p.Origin)
	n := m.MulPosition(p.Origin.Add(p.Normal)).Sub(o)
	return NewPlane(o, n)
}
