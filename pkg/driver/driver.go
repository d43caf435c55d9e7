// Package driver runs a design function against a fresh document.
package driver

import (
	"fmt"
	"runtime/debug"

	"github.com/chazu/facet/pkg/component"
	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/document"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultDocumentName is the document a design runs in when no name is given.
const DefaultDocumentName = config.DefaultDocumentName

// DesignFunc builds a design. Geometry it realizes goes into ctx.Document.
type DesignFunc func(ctx *component.Context) error

// Reporter shows a failure to the user.
type Reporter func(title, trace string)

// Options controls RunDesign.
type Options struct {
	DocumentName string
	Parametric   bool
	// ReportErrors passes the failure trace to Reporter.
	ReportErrors bool
	Reporter     Reporter
	Log          zerolog.Logger
}

// RunDesign sets up the document named in opts, replacing any open document
// of that name, and invokes fn with a context bound to it. A failure or panic
// in fn is logged with its full trace and reported when requested. Whatever
// fn built before failing is left in the document.
//
// The returned document is non-nil whenever setup succeeded, also when fn
// failed.
func RunDesign(sess *document.Session, k kernel.Kernel, fn DesignFunc, opts Options) (*document.Document, error) {
	name := opts.DocumentName
	if name == "" {
		name = DefaultDocumentName
	}
	log := opts.Log.With().Str("document", name).Logger()

	doc, err := sess.Setup(name, opts.Parametric)
	if err != nil {
		return nil, fmt.Errorf("driver: setup %q: %w", name, err)
	}
	ctx := component.NewContext(k, doc, log)

	log.Debug().Str("design", doc.Design.String()).Msg("running design")
	if err := invoke(fn, ctx); err != nil {
		trace := fmt.Sprintf("%+v", err)
		log.Error().Str("trace", trace).Msg("design failed")
		if opts.ReportErrors && opts.Reporter != nil {
			opts.Reporter("Error", trace)
		}
		return doc, err
	}
	log.Debug().Msg("design finished")
	return doc, nil
}

// invoke calls fn, turning a panic into an error carrying the goroutine's
// stack.
func invoke(fn DesignFunc, ctx *component.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	if fn == nil {
		return errors.New("driver: no design function")
	}
	return fn(ctx)
}

// PanicError is returned when the design function panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("design panicked: %v", e.Value)
}

// Format prints the stack for %+v.
func (e *PanicError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n%s", e.Error(), e.Stack)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
