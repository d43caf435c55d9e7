package document

import (
	"io"
	"math"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// snapshotScale sets the precision of measured coordinates: 1e6 keeps six
// decimal places.
const snapshotScale = 1e6

// Snapshot is a deterministic description of a document. Ids are left out so
// snapshots of equal designs compare equal.
type Snapshot struct {
	Name   string             `yaml:"name"`
	Design string             `yaml:"design"`
	Root   OccurrenceSnapshot `yaml:"root"`
}

type OccurrenceSnapshot struct {
	Name     string               `yaml:"name"`
	Visible  bool                 `yaml:"visible"`
	Features int                  `yaml:"features,omitempty"`
	Bodies   []BodySnapshot       `yaml:"bodies,omitempty"`
	Children []OccurrenceSnapshot `yaml:"children,omitempty"`
}

type BodySnapshot struct {
	Kind  string     `yaml:"kind"`
	Faces int        `yaml:"faces"`
	Min   [3]float64 `yaml:"min,flow"`
	Max   [3]float64 `yaml:"max,flow"`
}

// Snapshot measures every body through k.
func (d *Document) Snapshot(k kernel.Kernel) (Snapshot, error) {
	root, err := snapshotOccurrence(d.root, k)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Name: d.Name, Design: d.Design.String(), Root: root}, nil
}

// WriteSnapshot encodes the document's snapshot as YAML.
func (d *Document) WriteSnapshot(w io.Writer, k kernel.Kernel) error {
	snap, err := d.Snapshot(k)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	return enc.Close()
}

func snapshotOccurrence(o *Occurrence, k kernel.Kernel) (OccurrenceSnapshot, error) {
	out := OccurrenceSnapshot{
		Name:     o.name,
		Visible:  o.visible,
		Features: len(o.features),
	}
	for _, b := range o.bodies {
		ob, err := k.MeasureOrientedBoundingBox(b, v3.Vec{X: 1}, v3.Vec{Y: 1})
		if err != nil {
			return OccurrenceSnapshot{}, errors.Wrapf(err, "measure body in %q", o.name)
		}
		bb := ob.ToBox3()
		kind := "solid"
		if b.IsSheet() {
			kind = "sheet"
		}
		out.Bodies = append(out.Bodies, BodySnapshot{
			Kind:  kind,
			Faces: len(b.Faces()),
			Min:   roundVec(bb.Min),
			Max:   roundVec(bb.Max),
		})
	}
	for _, c := range o.children {
		cs, err := snapshotOccurrence(c, k)
		if err != nil {
			return OccurrenceSnapshot{}, err
		}
		out.Children = append(out.Children, cs)
	}
	return out, nil
}

func roundVec(v v3.Vec) [3]float64 {
	return [3]float64{round(v.X), round(v.Y), round(v.Z)}
}

// round drops digits past snapshotScale; adding zero folds -0 into 0.
func round(f float64) float64 {
	return math.Round(f*snapshotScale)/snapshotScale + 0
}
