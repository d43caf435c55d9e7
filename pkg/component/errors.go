package component

import (
	"github.com/chazu/facet/pkg/placement"
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedTransform is returned for non-uniform scales.
	ErrUnsupportedTransform = placement.ErrNonUniformScale

	// ErrIncompatibleDimensionality is returned when a boolean operator mixes
	// planar and solid children, or planar children on different planes.
	ErrIncompatibleDimensionality = errors.New("incompatible dimensionality")

	// ErrInvalidSection is returned when a loft section is not planar or does
	// not resolve to exactly one face.
	ErrInvalidSection = errors.New("invalid loft section")

	// ErrUnsupportedEntity is returned by ExactBoundingBox for values it
	// cannot measure.
	ErrUnsupportedEntity = errors.New("unsupported entity")

	// ErrNoGeometry is returned when a bounding box is requested for
	// something without bodies.
	ErrNoGeometry = errors.New("nothing to measure")

	// ErrCycle is returned when a composite would become its own descendant.
	ErrCycle = errors.New("component cannot contain itself")
)
