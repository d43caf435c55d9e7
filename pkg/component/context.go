package component

import (
	"github.com/chazu/facet/pkg/document"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/rs/zerolog"
)

// Context carries the collaborators a component tree is built against. It is
// passed explicitly to every constructor.
type Context struct {
	Kernel   kernel.Kernel
	Document *document.Document
	Log      zerolog.Logger
}

// NewContext returns a context for k and doc.
func NewContext(k kernel.Kernel, doc *document.Document, log zerolog.Logger) *Context {
	return &Context{Kernel: k, Document: doc, Log: log}
}
