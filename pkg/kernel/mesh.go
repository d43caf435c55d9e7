package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is an unindexed triangle soup with flat shading. Every triangle owns
// its three vertices, so Vertices and Normals hold nine floats per triangle
// and Indices simply counts up.
type Mesh struct {
	Vertices []float32
	Normals  []float32
	Indices  []uint32
	// PartName is the path of the occurrence the mesh was made from.
	PartName string
}

// NewMesh returns an empty mesh with room for n triangles.
func NewMesh(n int) *Mesh {
	return &Mesh{
		Vertices: make([]float32, 0, n*9),
		Normals:  make([]float32, 0, n*9),
		Indices:  make([]uint32, 0, n*3),
	}
}

// AddTriangle appends the triangle abc, shaded with normal n.
func (m *Mesh) AddTriangle(a, b, c, n v3.Vec) {
	for _, p := range [3]v3.Vec{a, b, c} {
		m.Indices = append(m.Indices, uint32(len(m.Vertices)/3))
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
}

func (m *Mesh) vertex(i uint32) v3.Vec {
	v := m.Vertices[3*i : 3*i+3]
	return v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

// Triangle returns the corners of the i'th triangle.
func (m *Mesh) Triangle(i int) [3]v3.Vec {
	idx := m.Indices[3*i : 3*i+3]
	return [3]v3.Vec{m.vertex(idx[0]), m.vertex(idx[1]), m.vertex(idx[2])}
}

// Bounds returns the box around every vertex. It is zero for an empty mesh.
func (m *Mesh) Bounds() sdf.Box3 {
	if m.IsEmpty() {
		return sdf.Box3{}
	}
	p := m.vertex(0)
	bb := sdf.Box3{Min: p, Max: p}
	for i := 1; i < m.VertexCount(); i++ {
		bb = bb.Include(m.vertex(uint32(i)))
	}
	return bb
}

func (m *Mesh) VertexCount() int   { return len(m.Vertices) / 3 }
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }
func (m *Mesh) IsEmpty() bool      { return len(m.Vertices) == 0 }
