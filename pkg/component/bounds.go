package component

import (
	"github.com/chazu/facet/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Reference axes for bounding box measurements.
var (
	measureAxis1 = v3.Vec{X: 1}
	measureAxis2 = v3.Vec{Y: 1}
)

// ExactBoundingBox returns the axis-aligned world-space box of entity, which
// may be a kernel.Entity, a Node (measured through its bodies) or a slice of
// either. Boxes of several entities are combined.
func ExactBoundingBox(k kernel.Kernel, entity any) (sdf.Box3, error) {
	var (
		bb    sdf.Box3
		found bool
	)
	err := walkEntities(entity, func(e kernel.Entity) error {
		ob, err := k.MeasureOrientedBoundingBox(e, measureAxis1, measureAxis2)
		if err != nil {
			return err
		}
		box := ob.ToBox3()
		if found {
			bb = bb.Extend(box)
		} else {
			bb, found = box, true
		}
		return nil
	})
	if err != nil {
		return sdf.Box3{}, err
	}
	if !found {
		return sdf.Box3{}, errors.WithStack(ErrNoGeometry)
	}
	return bb, nil
}

func walkEntities(entity any, fn func(kernel.Entity) error) error {
	switch v := entity.(type) {
	case Node:
		bodies, err := v.Bodies()
		if err != nil {
			return err
		}
		return walkSlice(bodies, fn)
	case kernel.Entity:
		return fn(v)
	case []Node:
		return walkSlice(v, fn)
	case []kernel.Body:
		return walkSlice(v, fn)
	case []kernel.Face:
		return walkSlice(v, fn)
	case []kernel.Entity:
		return walkSlice(v, fn)
	case []any:
		return walkSlice(v, fn)
	default:
		return errors.Wrapf(ErrUnsupportedEntity, "cannot get bounding box for type %T", entity)
	}
}

func walkSlice[T any](items []T, fn func(kernel.Entity) error) error {
	for _, item := range items {
		if err := walkEntities(item, fn); err != nil {
			return err
		}
	}
	return nil
}
