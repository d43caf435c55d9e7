package main

import (
	"io"
	"sync"

	"github.com/chazu/facet/pkg/component"
	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/document"
	"github.com/chazu/facet/pkg/driver"
	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/preview"
	"github.com/chazu/facet/pkg/realize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// errNoDocument is returned when output is requested before a design ran.
var errNoDocument = errors.New("no design has been evaluated")

// App ties the script engine, the kernel and the document session together.
// Each Evaluate reruns a script into the configured document.
type App struct {
	mu      sync.Mutex
	cfg     config.Config
	log     zerolog.Logger
	engine  *engine.Engine
	kernel  *sdfx.SdfxKernel
	session *document.Session
	report  driver.Reporter
	doc     *document.Document
}

// MeshData is the JSON-serializable mesh format handed to viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with an engine and an sdfx kernel configured from cfg.
func NewApp(cfg config.Config, log zerolog.Logger) *App {
	eng := engine.NewEngine()
	eng.SetTimeout(cfg.EvalTimeout.Duration)
	eng.SetCreateChildren(cfg.CreateChildren)

	k := sdfx.New()
	k.SetMeshCells(cfg.Mesh.Cells)

	return &App{
		cfg:     cfg,
		log:     log,
		engine:  eng,
		kernel:  k,
		session: document.NewSession(log),
	}
}

// SetReporter sets where design failures are reported when the configuration
// asks for it.
func (a *App) SetReporter(r driver.Reporter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.report = r
}

// Document returns the document of the last evaluation, or nil.
func (a *App) Document() *document.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doc
}

// Evaluate takes script source and returns mesh data + errors.
// Geometry shown before a failure stays in the document but is not meshed.
func (a *App) Evaluate(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Run the script as the design function of a fresh document.
	var evalErrs []engine.EvalError
	design := func(ctx *component.Context) error {
		_, errs, err := a.engine.Evaluate(ctx, source)
		if err != nil {
			return err
		}
		if len(errs) > 0 {
			evalErrs = errs
			return errors.Errorf("script failed: %s", errs[0].Error())
		}
		return nil
	}
	doc, err := driver.RunDesign(a.session, a.kernel, design, driver.Options{
		DocumentName: a.cfg.DocumentName,
		Parametric:   a.cfg.Parametric,
		ReportErrors: a.cfg.MessageBoxOnError,
		Reporter:     a.report,
		Log:          a.log,
	})
	if doc != nil {
		a.doc = doc
	}

	// Step 2: Convert script errors to the result format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 3: Tessellate the visible occurrences into triangle meshes.
	meshes, err := realize.Tessellate(doc, a.kernel)
	if err != nil {
		a.log.Error().Err(err).Msg("tessellation failed")
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	// Step 4: Convert kernel meshes to MeshData.
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    preview.Color(i),
		})
	}

	return result
}

// WriteSnapshot writes the YAML snapshot of the last evaluated document.
func (a *App) WriteSnapshot(w io.Writer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.doc == nil {
		return errNoDocument
	}
	return a.doc.WriteSnapshot(w, a.kernel)
}

// WritePreview renders the top view of the last evaluated document as PNG.
func (a *App) WritePreview(w io.Writer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.doc == nil {
		return errNoDocument
	}
	return preview.WritePNG(w, a.doc, a.kernel, preview.Options{
		Width:  a.cfg.Preview.Width,
		Height: a.cfg.Preview.Height,
		Margin: a.cfg.Preview.Margin,
	})
}
