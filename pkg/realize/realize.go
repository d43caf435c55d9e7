// Package realize turns component trees into document occurrences and
// document occurrences into triangle meshes.
package realize

import (
	"fmt"
	"strings"

	"github.com/chazu/facet/pkg/component"
	"github.com/chazu/facet/pkg/document"
	"github.com/chazu/facet/pkg/kernel"
)

// CreateOccurrence adds n to the root of ctx.Document as an occurrence named
// after n, holding n's world-space bodies. When createChildren is set each
// child of n is realized recursively beneath it as a hidden occurrence.
func CreateOccurrence(ctx *component.Context, n component.Node, createChildren bool) (*document.Occurrence, error) {
	if ctx.Document == nil {
		return nil, fmt.Errorf("realize: context has no document")
	}
	return createOccurrence(ctx, ctx.Document.Root(), n, createChildren, true)
}

func createOccurrence(ctx *component.Context, parent *document.Occurrence, n component.Node, createChildren, visible bool) (*document.Occurrence, error) {
	occ, err := parent.AddOccurrence(n.Name())
	if err != nil {
		return nil, err
	}
	occ.SetVisible(visible)

	bodies, err := n.Bodies()
	if err != nil {
		return nil, fmt.Errorf("realize: bodies of %s: %w", n.Name(), err)
	}
	if err := addBodies(ctx.Kernel, occ, bodies); err != nil {
		return nil, err
	}
	ctx.Log.Debug().
		Strs("path", occ.Path()).
		Int("bodies", len(bodies)).
		Bool("visible", visible).
		Msg("created occurrence")

	if createChildren {
		for _, child := range n.Children() {
			if _, err := createOccurrence(ctx, occ, child, true, false); err != nil {
				return nil, err
			}
		}
	}
	return occ, nil
}

// addBodies adds copies of bodies to occ, through a base feature edit when
// the document is parametric.
func addBodies(k kernel.Kernel, occ *document.Occurrence, bodies []kernel.Body) error {
	var feature *document.BaseFeature
	if occ.Document().IsParametric() {
		feature = occ.StartEdit()
	}
	for _, b := range bodies {
		c, err := k.Copy(b)
		if err != nil {
			return fmt.Errorf("realize: copy body into %s: %w", occ.Name(), err)
		}
		if err := occ.AddBody(c, feature); err != nil {
			return err
		}
	}
	if feature != nil {
		return feature.FinishEdit()
	}
	return nil
}

// Tessellate meshes every body of every visible occurrence in doc. Meshes are
// named after the occurrence path, with a body index appended when an
// occurrence holds more than one body. The document is not modified.
func Tessellate(doc *document.Document, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if doc == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	err := doc.Walk(func(o *document.Occurrence) error {
		if !o.IsVisible() {
			return nil
		}
		bodies := o.Bodies()
		name := strings.Join(o.Path(), "/")
		for i, b := range bodies {
			mesh, err := k.ToMesh(b)
			if err != nil {
				return fmt.Errorf("tessellate: ToMesh failed for %s: %w", name, err)
			}
			mesh.PartName = name
			if len(bodies) > 1 {
				mesh.PartName = fmt.Sprintf("%s#%d", name, i)
			}
			meshes = append(meshes, mesh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meshes, nil
}
