// Package kernel defines the boundary to the geometry kernel: the service
// that constructs primitive bodies, transforms them, runs boolean and loft
// operations and measures them. The component tree treats it as opaque;
// implementations (see kernel/sdfx) live behind this interface so backends
// can be swapped without touching the rest of the system.
package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// ErrIncompatibleBodies is returned by BooleanOperation when the target and
// tool cannot be combined, e.g. a sheet unioned with a solid.
var ErrIncompatibleBodies = errors.New("bodies are topologically incompatible")

// ErrUnsupported is returned for requests a backend cannot serve.
var ErrUnsupported = errors.New("operation not supported by kernel")

// EntityKind distinguishes the geometric entities a kernel hands out.
type EntityKind int

const (
	EntityBody EntityKind = iota
	EntityFace
)

func (k EntityKind) String() string {
	switch k {
	case EntityBody:
		return "body"
	case EntityFace:
		return "face"
	default:
		return "unknown"
	}
}

// Entity is any kernel value that can be measured.
type Entity interface {
	EntityKind() EntityKind
}

// Body is an opaque handle to a solid or sheet body owned by a kernel.
type Body interface {
	Entity
	// Faces returns the body's faces in the kernel's deterministic order.
	Faces() []Face
	// IsSheet reports whether the body is a zero-thickness planar sheet.
	IsSheet() bool
}

// SurfaceKind classifies the underlying surface of a face.
type SurfaceKind int

const (
	SurfacePlane SurfaceKind = iota
	SurfaceCylinder
	SurfaceCone
	SurfaceSphere
	SurfaceRuled // lateral face of a loft
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfacePlane:
		return "plane"
	case SurfaceCylinder:
		return "cylinder"
	case SurfaceCone:
		return "cone"
	case SurfaceSphere:
		return "sphere"
	case SurfaceRuled:
		return "ruled"
	default:
		return "unknown"
	}
}

// Face is a bounded surface of a body.
type Face interface {
	Entity
	Surface() SurfaceKind
	Area() float64
	// Plane returns the supporting plane, oriented along the outward normal.
	// ok is false for curved faces.
	Plane() (p Plane, ok bool)
}

// BooleanOp selects the boolean operation applied by BooleanOperation.
type BooleanOp int

const (
	OpUnion BooleanOp = iota
	OpDifference
	OpIntersection
)

func (op BooleanOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// OrientedBox describes a box primitive: its center, the directions of its
// length and width edges, and its three extents. The height direction is
// LengthDir × WidthDir.
type OrientedBox struct {
	Center    v3.Vec
	LengthDir v3.Vec
	WidthDir  v3.Vec
	Length    float64
	Width     float64
	Height    float64
}

// OrientedBounds is the result of a bounding-box measurement along two
// reference axes.
type OrientedBounds struct {
	Center v3.Vec
	Length float64 // along axis1
	Width  float64 // along axis2
	Height float64 // along axis1 × axis2
}

// Kernel is the abstract geometry kernel interface. All operations run to
// completion before returning; a failed call leaves its inputs as they were
// only where noted.
type Kernel interface {
	// Primitives
	CreateBox(b OrientedBox) (Body, error)
	// CreateCylinderOrCone fails if baseRadius is not positive; a cone with
	// its point at the base has to be built apex-first and flipped.
	CreateCylinderOrCone(base v3.Vec, baseRadius float64, apex v3.Vec, apexRadius float64) (Body, error)
	CreateSphere(center v3.Vec, radius float64) (Body, error)

	// Copies
	Copy(b Body) (Body, error)
	CopyFace(f Face) (Body, error)

	// Transform mutates b in place.
	Transform(b Body, m sdf.M44) error

	// BooleanOperation mutates target in place.
	BooleanOperation(target, tool Body, op BooleanOp) error

	// Loft builds a new body through the ordered planar sections. The
	// result's faces are ordered top (last section), bottom (first
	// section), then the lateral faces.
	Loft(sections []Face) (Body, error)

	// MeasureOrientedBoundingBox measures e along axis1, axis2 and their cross product.
	MeasureOrientedBoundingBox(e Entity, axis1, axis2 v3.Vec) (OrientedBounds, error)

	// Mesh output
	ToMesh(b Body) (*Mesh, error)
}

// ToBox3 converts oriented bounds measured along the world X and Y axes into
// an axis-aligned box.
func (o OrientedBounds) ToBox3() sdf.Box3 {
	half := v3.Vec{X: o.Length / 2.0, Y: o.Width / 2.0, Z: o.Height / 2.0}
	return sdf.Box3{Min: o.Center.Sub(half), Max: o.Center.Add(half)}
}
