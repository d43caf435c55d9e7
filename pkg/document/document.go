// Package document is the in-memory document model that component trees are
// realized into: a session of named documents, each holding a tree of
// occurrences that own kernel bodies.
package document

import (
	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrNoOpenEdit is returned when a body is added to a parametric document
// outside of a base feature edit.
var ErrNoOpenEdit = errors.New("parametric documents require an open base feature edit")

// ErrClosed is returned for operations on a closed document.
var ErrClosed = errors.New("document is closed")

// DesignType selects whether a document records feature history.
type DesignType int

const (
	DesignParametric DesignType = iota
	DesignDirect
)

func (t DesignType) String() string {
	switch t {
	case DesignParametric:
		return "parametric"
	case DesignDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Camera is a viewport camera.
type Camera struct {
	Eye    v3.Vec
	Target v3.Vec
	Up     v3.Vec
	Smooth bool
}

// DefaultCamera looks at the origin from the +X+Y+Z octant.
func DefaultCamera() Camera {
	return Camera{
		Eye:    v3.Vec{X: 100, Y: 100, Z: 100},
		Up:     v3.Vec{Z: 1},
		Smooth: true,
	}
}

// Document is a named design holding a root occurrence.
type Document struct {
	ID     uuid.UUID
	Name   string
	Design DesignType
	Camera Camera

	root   *Occurrence
	closed bool
}

func newDocument(name string, design DesignType) *Document {
	d := &Document{
		ID:     uuid.New(),
		Name:   name,
		Design: design,
		Camera: DefaultCamera(),
	}
	d.root = &Occurrence{ID: uuid.New(), name: "root", visible: true, doc: d}
	return d
}

// New returns a standalone document outside of any session.
func New(name string, design DesignType) *Document {
	return newDocument(name, design)
}

// Root returns the root occurrence.
func (d *Document) Root() *Occurrence {
	return d.root
}

func (d *Document) IsParametric() bool {
	return d.Design == DesignParametric
}

// SetParametric switches the design type.
func (d *Document) SetParametric(parametric bool) {
	if parametric {
		d.Design = DesignParametric
	} else {
		d.Design = DesignDirect
	}
}

func (d *Document) Closed() bool {
	return d.closed
}

// Walk visits every occurrence depth-first, parents before children. The
// walk stops at the first error.
func (d *Document) Walk(fn func(o *Occurrence) error) error {
	return d.root.walk(fn)
}

// Session is the set of open documents and the active one.
type Session struct {
	docs   []*Document
	active *Document
	log    zerolog.Logger
}

// NewSession returns an empty session.
func NewSession(log zerolog.Logger) *Session {
	return &Session{log: log}
}

// Documents returns the open documents in creation order.
func (s *Session) Documents() []*Document {
	out := make([]*Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Find returns the open document with the given name, or nil.
func (s *Session) Find(name string) *Document {
	for _, d := range s.docs {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func (s *Session) Active() *Document {
	return s.active
}

// Add opens a new document and returns it. The active document is unchanged.
func (s *Session) Add(name string, design DesignType) *Document {
	d := newDocument(name, design)
	s.docs = append(s.docs, d)
	s.log.Debug().Str("document", name).Str("design", design.String()).Msg("document created")
	return d
}

// Activate makes d the active document.
func (s *Session) Activate(d *Document) error {
	if d.closed {
		return errors.Wrapf(ErrClosed, "activate %q", d.Name)
	}
	s.active = d
	return nil
}

// Close closes d without saving. Closing the active document leaves no
// document active.
func (s *Session) Close(d *Document) {
	for i, od := range s.docs {
		if od == d {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			break
		}
	}
	d.closed = true
	if s.active == d {
		s.active = nil
	}
	s.log.Debug().Str("document", d.Name).Msg("document closed")
}

// Setup ensures a clean document called name is open and active. An
// existing document of that name is closed first and its camera carried over
// to the replacement.
func (s *Session) Setup(name string, parametric bool) (*Document, error) {
	var saved *Camera
	if old := s.Find(name); old != nil {
		if err := s.Activate(old); err != nil {
			return nil, err
		}
		cam := old.Camera
		saved = &cam
		s.Close(old)
	}

	design := DesignDirect
	if parametric {
		design = DesignParametric
	}
	d := s.Add(name, design)
	if err := s.Activate(d); err != nil {
		return nil, err
	}
	if saved != nil {
		d.Camera = *saved
	}
	return d, nil
}

// Occurrence is a named grouping of bodies within a document.
type Occurrence struct {
	ID uuid.UUID

	name     string
	visible  bool
	doc      *Document
	parent   *Occurrence
	bodies   []kernel.Body
	children []*Occurrence
	features []*BaseFeature
}

func (o *Occurrence) Name() string { return o.name }

func (o *Occurrence) SetName(name string) { o.name = name }

func (o *Occurrence) Visible() bool { return o.visible }

func (o *Occurrence) SetVisible(v bool) { o.visible = v }

func (o *Occurrence) Parent() *Occurrence { return o.parent }

func (o *Occurrence) Document() *Document { return o.doc }

func (o *Occurrence) Bodies() []kernel.Body {
	out := make([]kernel.Body, len(o.bodies))
	copy(out, o.bodies)
	return out
}

func (o *Occurrence) Children() []*Occurrence {
	out := make([]*Occurrence, len(o.children))
	copy(out, o.children)
	return out
}

func (o *Occurrence) Features() []*BaseFeature {
	out := make([]*BaseFeature, len(o.features))
	copy(out, o.features)
	return out
}

// Path returns the names from the root's child down to o, root excluded.
func (o *Occurrence) Path() []string {
	if o.parent == nil {
		return nil
	}
	return append(o.parent.Path(), o.name)
}

// IsVisible reports whether o and all of its ancestors are visible.
func (o *Occurrence) IsVisible() bool {
	for p := o; p != nil; p = p.parent {
		if !p.visible {
			return false
		}
	}
	return true
}

// AddOccurrence creates a visible child occurrence.
func (o *Occurrence) AddOccurrence(name string) (*Occurrence, error) {
	if o.doc.closed {
		return nil, errors.Wrapf(ErrClosed, "add occurrence %q", name)
	}
	c := &Occurrence{ID: uuid.New(), name: name, visible: true, doc: o.doc, parent: o}
	o.children = append(o.children, c)
	return c, nil
}

// StartEdit opens a new base feature on o.
func (o *Occurrence) StartEdit() *BaseFeature {
	f := &BaseFeature{ID: uuid.New(), occ: o, editing: true}
	o.features = append(o.features, f)
	return f
}

// AddBody adds b to o. In a parametric document f must be an open edit on
// o; in a direct document f must be nil.
func (o *Occurrence) AddBody(b kernel.Body, f *BaseFeature) error {
	if o.doc.closed {
		return errors.WithStack(ErrClosed)
	}
	if o.doc.IsParametric() {
		if f == nil || !f.editing || f.occ != o {
			return errors.Wrapf(ErrNoOpenEdit, "add body to %q", o.name)
		}
		f.bodies++
	} else if f != nil {
		return errors.Errorf("document: direct design %q does not record base features", o.doc.Name)
	}
	o.bodies = append(o.bodies, b)
	return nil
}

func (o *Occurrence) walk(fn func(o *Occurrence) error) error {
	if err := fn(o); err != nil {
		return err
	}
	for _, c := range o.children {
		if err := c.walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// BaseFeature groups bodies added directly, outside of parametric history.
type BaseFeature struct {
	ID uuid.UUID

	occ     *Occurrence
	editing bool
	bodies  int
}

// Editing reports whether the feature is still open.
func (f *BaseFeature) Editing() bool { return f.editing }

// BodyCount returns how many bodies were added through f.
func (f *BaseFeature) BodyCount() int { return f.bodies }

// FinishEdit closes the feature.
func (f *BaseFeature) FinishEdit() error {
	if !f.editing {
		return errors.New("document: base feature edit already finished")
	}
	f.editing = false
	return nil
}
