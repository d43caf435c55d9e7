// Package preview draws a top view of a realized document: the XY bounding
// box of every visible body, coloured per occurrence.
package preview

import (
	"fmt"
	"io"
	"math"

	"github.com/chazu/facet/pkg/document"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/gogpu/gg"
)

// Palette assigns distinct colors to occurrences, wrapping around.
var Palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Background and Outline colors of the preview.
var (
	Background = gg.White
	Outline    = gg.Hex("#2C3E50")
)

// Options sizes the preview image.
type Options struct {
	Width  int
	Height int
	Margin float64
}

// DefaultOptions matches the default configuration.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 600, Margin: 20}
}

// Color returns the palette color of the i-th occurrence.
func Color(i int) string {
	return Palette[i%len(Palette)]
}

type footprint struct {
	bounds sdf.Box3
	color  string
}

// Render draws the preview. The caller owns the returned context and should
// Close it.
func Render(doc *document.Document, k kernel.Kernel, opts Options) (*gg.Context, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("preview: size %dx%d must be positive", opts.Width, opts.Height)
	}
	prints, err := footprints(doc, k)
	if err != nil {
		return nil, err
	}

	if len(prints) == 0 {
		dc := gg.NewContext(opts.Width, opts.Height)
		dc.ClearWithColor(Background)
		return dc, nil
	}

	all := prints[0].bounds
	for _, p := range prints[1:] {
		all = all.Extend(p.bounds)
	}
	size := all.Size()
	w := math.Max(size.X, 1e-9)
	h := math.Max(size.Y, 1e-9)
	scale := math.Min(
		(float64(opts.Width)-2*opts.Margin)/w,
		(float64(opts.Height)-2*opts.Margin)/h,
	)
	if scale <= 0 {
		return nil, fmt.Errorf("preview: margin %g leaves no drawing area", opts.Margin)
	}
	// Center the drawing; image Y runs downwards.
	ox := (float64(opts.Width) - w*scale) / 2
	oy := (float64(opts.Height) + h*scale) / 2
	project := func(v v3.Vec) (float64, float64) {
		return ox + (v.X-all.Min.X)*scale, oy - (v.Y-all.Min.Y)*scale
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.ClearWithColor(Background)
	dc.SetLineWidth(1)
	for _, p := range prints {
		x0, y1 := project(p.bounds.Min)
		x1, y0 := project(p.bounds.Max)
		// Keep edge-on sheets visible.
		pw, ph := math.Max(x1-x0, 1), math.Max(y1-y0, 1)

		dc.SetHexColor(p.color)
		dc.DrawRectangle(x0, y0, pw, ph)
		if err := dc.Fill(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("preview: fill: %w", err)
		}
		dc.SetColor(Outline.Color())
		dc.DrawRectangle(x0, y0, pw, ph)
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("preview: stroke: %w", err)
		}
	}
	return dc, nil
}

// WritePNG renders the preview and encodes it as PNG to w.
func WritePNG(w io.Writer, doc *document.Document, k kernel.Kernel, opts Options) error {
	dc, err := Render(doc, k, opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(w)
}

// footprints measures every body of every visible occurrence, in walk order.
func footprints(doc *document.Document, k kernel.Kernel) ([]footprint, error) {
	if doc == nil {
		return nil, nil
	}
	var (
		out []footprint
		idx int
	)
	err := doc.Walk(func(o *document.Occurrence) error {
		bodies := o.Bodies()
		if len(bodies) == 0 || !o.IsVisible() {
			return nil
		}
		color := Color(idx)
		idx++
		for _, b := range bodies {
			ob, err := k.MeasureOrientedBoundingBox(b, v3.Vec{X: 1}, v3.Vec{Y: 1})
			if err != nil {
				return fmt.Errorf("preview: measure %s: %w", o.Name(), err)
			}
			out = append(out, footprint{bounds: ob.ToBox3(), color: color})
		}
		return nil
	})
	return out, err
}
