package kernel

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshAddTriangle(t *testing.T) {
	m := NewMesh(2)
	up := v3.Vec{Z: 1}
	m.AddTriangle(v3.Vec{}, v3.Vec{X: 1}, v3.Vec{Y: 1}, up)
	m.AddTriangle(v3.Vec{X: 1}, v3.Vec{X: 1, Y: 1, Z: 2}, v3.Vec{Y: 1}, up)

	if m.TriangleCount() != 2 || m.VertexCount() != 6 {
		t.Fatalf("got %d triangles and %d vertices, want 2 and 6", m.TriangleCount(), m.VertexCount())
	}
	if got := m.Indices; got[3] != 3 || got[5] != 5 {
		t.Errorf("indices = %v, want a running count", got)
	}
	if got := m.Triangle(1)[1]; got != (v3.Vec{X: 1, Y: 1, Z: 2}) {
		t.Errorf("second triangle corner = %v", got)
	}
	if got := m.Normals[len(m.Normals)-1]; got != 1 {
		t.Errorf("last normal z = %g, want 1", got)
	}

	bb := m.Bounds()
	if bb.Min != (v3.Vec{}) || bb.Max != (v3.Vec{X: 1, Y: 1, Z: 2}) {
		t.Errorf("bounds = %v", bb)
	}
	if (&Mesh{}).Bounds() != (sdf.Box3{}) {
		t.Error("empty mesh has non-zero bounds")
	}
}

// --- Planes ---

func TestPlaneCoplanarity(t *testing.T) {
	xy := NewPlane(v3.Vec{}, v3.Vec{Z: 1})
	tests := []struct {
		name string
		q    Plane
		want bool
	}{
		{"same plane", NewPlane(v3.Vec{X: 5, Y: -3}, v3.Vec{Z: 1}), true},
		{"flipped normal", NewPlane(v3.Vec{X: 1}, v3.Vec{Z: -1}), true},
		{"unnormalized normal", NewPlane(v3.Vec{}, v3.Vec{Z: 7}), true},
		{"parallel offset", NewPlane(v3.Vec{Z: 1}, v3.Vec{Z: 1}), false},
		{"perpendicular", NewPlane(v3.Vec{}, v3.Vec{X: 1}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := xy.IsCoplanarTo(tt.q); got != tt.want {
				t.Errorf("IsCoplanarTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaneTransform(t *testing.T) {
	p := NewPlane(v3.Vec{}, v3.Vec{Z: 1})
	m := sdf.Translate3d(v3.Vec{Z: 2}).Mul(sdf.RotateX(math.Pi / 2))
	q := p.Transform(m)

	if math.Abs(q.Origin.Z-2) > 1e-12 {
		t.Errorf("origin = %v, want z=2", q.Origin)
	}
	// +Z rotated 90 degrees about X points along -Y.
	if math.Abs(q.Normal.Y+1) > 1e-12 {
		t.Errorf("normal = %v, want (0,-1,0)", q.Normal)
	}
	if got := q.Distance(v3.Vec{Y: -3, Z: 2}); math.Abs(got-3) > 1e-12 {
		t.Errorf("Distance() = %g, want 3", got)
	}
}

// --- Bounds ---

func TestOrientedBoundsToBox3(t *testing.T) {
	o := OrientedBounds{Center: v3.Vec{X: 1.5, Y: 0.5, Z: 0.5}, Length: 1, Width: 1, Height: 1}
	bb := o.ToBox3()
	if bb.Min != (v3.Vec{X: 1, Y: 0, Z: 0}) {
		t.Errorf("Min = %v, want (1,0,0)", bb.Min)
	}
	if bb.Max != (v3.Vec{X: 2, Y: 1, Z: 1}) {
		t.Errorf("Max = %v, want (2,1,1)", bb.Max)
	}
}

func TestEnumStrings(t *testing.T) {
	if OpDifference.String() != "difference" {
		t.Errorf("OpDifference.String() = %q", OpDifference.String())
	}
	if EntityFace.String() != "face" {
		t.Errorf("EntityFace.String() = %q", EntityFace.String())
	}
	if SurfaceRuled.String() != "ruled" {
		t.Errorf("SurfaceRuled.String() = %q", SurfaceRuled.String())
	}
}
