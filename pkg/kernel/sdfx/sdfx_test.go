package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tol = 1e-9

func vecNear(a, b v3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func box(t *testing.T, k *SdfxKernel, l, w, h float64, center v3.Vec) kernel.Body {
	t.Helper()
	b, err := k.CreateBox(kernel.OrientedBox{
		Center:    center,
		LengthDir: v3.Vec{X: 1},
		WidthDir:  v3.Vec{Y: 1},
		Length:    l,
		Width:     w,
		Height:    h,
	})
	if err != nil {
		t.Fatalf("CreateBox failed: %v", err)
	}
	return b
}

func normal(t *testing.T, f kernel.Face) v3.Vec {
	t.Helper()
	p, ok := f.Plane()
	if !ok {
		t.Fatalf("face %s has no plane", f.Surface())
	}
	return p.Normal
}

func TestBoxFaces(t *testing.T) {
	k := New()
	b := box(t, k, 4, 2, 1, v3.Vec{})
	faces := b.Faces()
	if len(faces) != 6 {
		t.Fatalf("box has %d faces, want 6", len(faces))
	}

	tests := []struct {
		name   string
		normal v3.Vec
		area   float64
	}{
		{"top", v3.Vec{Z: 1}, 8},
		{"bottom", v3.Vec{Z: -1}, 8},
		{"front", v3.Vec{Y: -1}, 4},
		{"left", v3.Vec{X: -1}, 2},
		{"back", v3.Vec{Y: 1}, 4},
		{"right", v3.Vec{X: 1}, 2},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := faces[i]
			if got := normal(t, f); !vecNear(got, tt.normal, tol) {
				t.Errorf("normal = %v, want %v", got, tt.normal)
			}
			if math.Abs(f.Area()-tt.area) > tol {
				t.Errorf("area = %g, want %g", f.Area(), tt.area)
			}
			bb, err := k.MeasureOrientedBoundingBox(f, v3.Vec{X: 1}, v3.Vec{Y: 1})
			if err != nil {
				t.Fatal(err)
			}
			// Each face lies on the box boundary, flush with its normal.
			want := math.Abs(tt.normal.Dot(v3.Vec{X: 2, Y: 1, Z: 0.5}))
			if got := tt.normal.Dot(bb.Center); math.Abs(got-want) > tol {
				t.Errorf("face offset = %g, want %g", got, want)
			}
		})
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	b := box(t, k, 100, 50, 25, v3.Vec{X: 100, Y: 200, Z: 300})
	ob, err := k.MeasureOrientedBoundingBox(b, v3.Vec{X: 1}, v3.Vec{Y: 1})
	if err != nil {
		t.Fatalf("MeasureOrientedBoundingBox failed: %v", err)
	}
	bb := ob.ToBox3()

	const eps = 0.01
	if !vecNear(bb.Min, v3.Vec{X: 50, Y: 175, Z: 287.5}, eps) {
		t.Errorf("min = %v", bb.Min)
	}
	if !vecNear(bb.Max, v3.Vec{X: 150, Y: 225, Z: 312.5}, eps) {
		t.Errorf("max = %v", bb.Max)
	}

	if _, err := k.MeasureOrientedBoundingBox(b, v3.Vec{Y: 1}, v3.Vec{Z: 1}); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("measure along Y/Z: error = %v, want ErrUnsupported", err)
	}
}

func TestRotatedBox(t *testing.T) {
	k := New()
	b, err := k.CreateBox(kernel.OrientedBox{
		LengthDir: v3.Vec{Y: 1},
		WidthDir:  v3.Vec{X: -1},
		Length:    4,
		Width:     2,
		Height:    1,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Length runs along Y, so the right face (+length end) points along +Y.
	if got := normal(t, b.Faces()[5]); !vecNear(got, v3.Vec{Y: 1}, tol) {
		t.Errorf("right normal = %v, want +Y", got)
	}
	if got := normal(t, b.Faces()[0]); !vecNear(got, v3.Vec{Z: 1}, tol) {
		t.Errorf("top normal = %v, want +Z", got)
	}
}

func TestCylinderFaces(t *testing.T) {
	k := New()

	t.Run("cylinder", func(t *testing.T) {
		c, err := k.CreateCylinderOrCone(v3.Vec{}, 1, v3.Vec{Z: 2}, 1)
		if err != nil {
			t.Fatal(err)
		}
		faces := c.Faces()
		if len(faces) != 3 {
			t.Fatalf("cylinder has %d faces, want 3", len(faces))
		}
		if faces[0].Surface() != kernel.SurfaceCylinder {
			t.Errorf("side surface = %s", faces[0].Surface())
		}
		if math.Abs(faces[0].Area()-4*math.Pi) > tol {
			t.Errorf("side area = %g, want 4π", faces[0].Area())
		}
		if got := normal(t, faces[1]); !vecNear(got, v3.Vec{Z: -1}, tol) {
			t.Errorf("bottom normal = %v", got)
		}
		if got := normal(t, faces[2]); !vecNear(got, v3.Vec{Z: 1}, tol) {
			t.Errorf("top normal = %v", got)
		}
		if math.Abs(faces[2].Area()-math.Pi) > tol {
			t.Errorf("top area = %g, want π", faces[2].Area())
		}
	})

	t.Run("cone to a point", func(t *testing.T) {
		c, err := k.CreateCylinderOrCone(v3.Vec{}, 1, v3.Vec{Z: 1}, 0)
		if err != nil {
			t.Fatal(err)
		}
		faces := c.Faces()
		if len(faces) != 2 {
			t.Fatalf("cone has %d faces, want 2", len(faces))
		}
		if faces[0].Surface() != kernel.SurfaceCone {
			t.Errorf("side surface = %s", faces[0].Surface())
		}
	})

	t.Run("zero base radius", func(t *testing.T) {
		_, err := k.CreateCylinderOrCone(v3.Vec{}, 0, v3.Vec{Z: 1}, 1)
		if !errors.Is(err, kernel.ErrUnsupported) {
			t.Errorf("error = %v, want ErrUnsupported", err)
		}
	})

	t.Run("along X", func(t *testing.T) {
		c, err := k.CreateCylinderOrCone(v3.Vec{}, 1, v3.Vec{X: 3}, 1)
		if err != nil {
			t.Fatal(err)
		}
		if got := normal(t, c.Faces()[2]); !vecNear(got, v3.Vec{X: 1}, tol) {
			t.Errorf("top normal = %v, want +X", got)
		}
	})
}

func TestSphere(t *testing.T) {
	k := New()
	s, err := k.CreateSphere(v3.Vec{X: 1}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Faces()) != 1 || s.Faces()[0].Surface() != kernel.SurfaceSphere {
		t.Fatalf("sphere faces = %v", s.Faces())
	}
	if _, ok := s.Faces()[0].Plane(); ok {
		t.Error("sphere surface reports a plane")
	}
}

func TestTransformScalesArea(t *testing.T) {
	k := New()
	b := box(t, k, 1, 1, 1, v3.Vec{})
	if err := k.Transform(b, sdf.Scale3d(v3.Vec{X: 2, Y: 2, Z: 2})); err != nil {
		t.Fatal(err)
	}
	if got := b.Faces()[0].Area(); math.Abs(got-4) > tol {
		t.Errorf("top area after scale(2) = %g, want 4", got)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	k := New()
	b := box(t, k, 1, 1, 1, v3.Vec{})
	c, err := k.Copy(b)
	if err != nil {
		t.Fatal(err)
	}
	if err := k.Transform(c, sdf.Translate3d(v3.Vec{X: 10})); err != nil {
		t.Fatal(err)
	}
	ob, _ := k.MeasureOrientedBoundingBox(b, v3.Vec{X: 1}, v3.Vec{Y: 1})
	if !vecNear(ob.Center, v3.Vec{}, tol) {
		t.Errorf("original moved to %v", ob.Center)
	}
}

func TestSolidBoolean(t *testing.T) {
	k := New()
	tests := []struct {
		op     kernel.BooleanOp
		probe  v3.Vec
		inside bool
	}{
		{kernel.OpUnion, v3.Vec{X: 1.2}, true},
		{kernel.OpDifference, v3.Vec{X: 0.4}, false},
		{kernel.OpDifference, v3.Vec{X: -0.4}, true},
		{kernel.OpIntersection, v3.Vec{X: -0.4}, false},
		{kernel.OpIntersection, v3.Vec{X: 0.4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			a := box(t, k, 1, 1, 1, v3.Vec{})
			b := box(t, k, 1, 1, 1, v3.Vec{X: 0.75})
			if err := k.BooleanOperation(a, b, tt.op); err != nil {
				t.Fatal(err)
			}
			if len(a.Faces()) == 0 {
				t.Error("boolean result lost all of its faces")
			}
			got := a.(*body).solid.Evaluate(tt.probe) < 0
			if got != tt.inside {
				t.Errorf("point %v inside = %v, want %v", tt.probe, got, tt.inside)
			}
		})
	}
}

func measure(t *testing.T, k *SdfxKernel, b kernel.Body) sdf.Box3 {
	t.Helper()
	ob, err := k.MeasureOrientedBoundingBox(b, v3.Vec{X: 1}, v3.Vec{Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	return ob.ToBox3()
}

func TestBooleanBounds(t *testing.T) {
	k := New()
	const eps = 1e-4

	tests := []struct {
		name     string
		build    func() kernel.Body
		min, max v3.Vec
	}{
		{
			name: "intersection",
			build: func() kernel.Body {
				a := box(t, k, 2, 2, 2, v3.Vec{X: 1, Y: 1, Z: 1})
				b := box(t, k, 1, 1, 1, v3.Vec{X: 2, Y: 0.5, Z: 0.5})
				if err := k.BooleanOperation(a, b, kernel.OpIntersection); err != nil {
					t.Fatal(err)
				}
				return a
			},
			min: v3.Vec{X: 1.5},
			max: v3.Vec{X: 2, Y: 1, Z: 1},
		},
		{
			name: "difference",
			build: func() kernel.Body {
				a := box(t, k, 2, 1, 1, v3.Vec{X: 1, Y: 0.5, Z: 0.5})
				b := box(t, k, 1, 1, 1, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
				if err := k.BooleanOperation(a, b, kernel.OpDifference); err != nil {
					t.Fatal(err)
				}
				return a
			},
			min: v3.Vec{X: 1},
			max: v3.Vec{X: 2, Y: 1, Z: 1},
		},
		{
			name: "rotated sphere",
			build: func() kernel.Body {
				s, err := k.CreateSphere(v3.Vec{}, 1)
				if err != nil {
					t.Fatal(err)
				}
				if err := k.Transform(s, sdf.Translate3d(v3.Vec{X: 5}).Mul(sdf.RotateZ(math.Pi/4))); err != nil {
					t.Fatal(err)
				}
				return s
			},
			min: v3.Vec{X: 4, Y: -1, Z: -1},
			max: v3.Vec{X: 6, Y: 1, Z: 1},
		},
		{
			name: "tilted cylinder",
			build: func() kernel.Body {
				c, err := k.CreateCylinderOrCone(v3.Vec{}, 1, v3.Vec{Z: 2}, 1)
				if err != nil {
					t.Fatal(err)
				}
				if err := k.Transform(c, sdf.RotateY(math.Pi/2)); err != nil {
					t.Fatal(err)
				}
				return c
			},
			min: v3.Vec{X: 0, Y: -1, Z: -1},
			max: v3.Vec{X: 2, Y: 1, Z: 1},
		},
		{
			name: "rotated box",
			build: func() kernel.Body {
				b := box(t, k, 2, 2, 2, v3.Vec{})
				if err := k.Transform(b, sdf.RotateZ(math.Pi/4)); err != nil {
					t.Fatal(err)
				}
				return b
			},
			min: v3.Vec{X: -math.Sqrt2, Y: -math.Sqrt2, Z: -1},
			max: v3.Vec{X: math.Sqrt2, Y: math.Sqrt2, Z: 1},
		},
		{
			name: "moved difference",
			build: func() kernel.Body {
				a := box(t, k, 2, 1, 1, v3.Vec{X: 1, Y: 0.5, Z: 0.5})
				b := box(t, k, 1, 1, 1, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
				if err := k.BooleanOperation(a, b, kernel.OpDifference); err != nil {
					t.Fatal(err)
				}
				if err := k.Transform(a, sdf.Translate3d(v3.Vec{Z: 10})); err != nil {
					t.Fatal(err)
				}
				return a
			},
			min: v3.Vec{X: 1, Z: 10},
			max: v3.Vec{X: 2, Y: 1, Z: 11},
		},
		{
			name: "union of spheres",
			build: func() kernel.Body {
				a, _ := k.CreateSphere(v3.Vec{}, 1)
				b, _ := k.CreateSphere(v3.Vec{X: 3}, 0.5)
				if err := k.BooleanOperation(a, b, kernel.OpUnion); err != nil {
					t.Fatal(err)
				}
				return a
			},
			min: v3.Vec{X: -1, Y: -1, Z: -1},
			max: v3.Vec{X: 3.5, Y: 1, Z: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bb := measure(t, k, tt.build())
			if !vecNear(bb.Min, tt.min, eps) {
				t.Errorf("min = %v, want %v", bb.Min, tt.min)
			}
			if !vecNear(bb.Max, tt.max, eps) {
				t.Errorf("max = %v, want %v", bb.Max, tt.max)
			}
		})
	}
}

func TestDifferenceKeepsFaces(t *testing.T) {
	k := New()
	// A cavity cut into the middle of the top face, flush with it.
	shell := box(t, k, 2, 2, 2, v3.Vec{})
	cavity := box(t, k, 0.5, 0.5, 0.5, v3.Vec{Z: 0.75})
	if err := k.BooleanOperation(shell, cavity, kernel.OpDifference); err != nil {
		t.Fatal(err)
	}

	faces := shell.Faces()
	if len(faces) != 11 {
		t.Fatalf("result has %d faces, want 6 from the shell and 5 from the cavity", len(faces))
	}
	if got := faces[0].Area(); math.Abs(got-3.75) > 0.05 {
		t.Errorf("open top area = %g, want ~3.75", got)
	}
	for i, f := range faces[1:6] {
		if math.Abs(f.Area()-4) > tol {
			t.Errorf("shell face %d area = %g, want 4", i+1, f.Area())
		}
	}
	wantNormals := []v3.Vec{{Z: 1}, {Y: 1}, {X: 1}, {Y: -1}, {X: -1}}
	for i, f := range faces[6:] {
		if math.Abs(f.Area()-0.25) > tol {
			t.Errorf("cavity face %d area = %g, want 0.25", i, f.Area())
		}
		// Cavity walls face into the void.
		if got := normal(t, f); !vecNear(got, wantNormals[i], tol) {
			t.Errorf("cavity face %d normal = %v, want %v", i, got, wantNormals[i])
		}
	}

	tool := cavity.Faces()
	if len(tool) != 6 || tool[0].Area() != 0.25 {
		t.Error("tool faces changed")
	}
}

func TestUnionDropsSharedFaces(t *testing.T) {
	k := New()
	a := box(t, k, 1, 1, 1, v3.Vec{})
	b := box(t, k, 1, 1, 1, v3.Vec{Z: 1})
	if err := k.BooleanOperation(a, b, kernel.OpUnion); err != nil {
		t.Fatal(err)
	}
	// The touching top of a and bottom of b are inside the union.
	if got := len(a.Faces()); got != 10 {
		t.Errorf("stacked union has %d faces, want 10", got)
	}
}

func TestIntersectionDropsCurvedFaces(t *testing.T) {
	k := New()
	a := box(t, k, 2, 2, 2, v3.Vec{})
	s, _ := k.CreateSphere(v3.Vec{Z: 1}, 0.5)
	if err := k.BooleanOperation(a, s, kernel.OpIntersection); err != nil {
		t.Fatal(err)
	}
	for _, f := range a.Faces() {
		if f.Surface() != kernel.SurfacePlane {
			t.Errorf("curved %s face survived a cut", f.Surface())
		}
	}
	far, _ := k.CreateSphere(v3.Vec{X: 10}, 0.5)
	c := box(t, k, 1, 1, 1, v3.Vec{})
	if err := k.BooleanOperation(c, far, kernel.OpUnion); err != nil {
		t.Fatal(err)
	}
	if got := len(c.Faces()); got != 7 {
		t.Errorf("disjoint union has %d faces, want 7", got)
	}
}

func sheet(t *testing.T, k *SdfxKernel, l, w float64, center v3.Vec) kernel.Body {
	t.Helper()
	b := box(t, k, l, w, 0.01, center)
	s, err := k.CopyFace(b.Faces()[0])
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSheetBoolean(t *testing.T) {
	k := New()

	a := sheet(t, k, 2, 2, v3.Vec{})
	b := sheet(t, k, 2, 2, v3.Vec{X: 1})
	if !a.IsSheet() {
		t.Fatal("copied face is not a sheet")
	}
	if err := k.BooleanOperation(a, b, kernel.OpUnion); err != nil {
		t.Fatal(err)
	}
	// Union of two 2x2 squares overlapping by half.
	if got := a.Faces()[0].Area(); math.Abs(got-6) > 0.1 {
		t.Errorf("union area = %g, want ~6", got)
	}

	c := sheet(t, k, 2, 2, v3.Vec{})
	d := sheet(t, k, 2, 2, v3.Vec{X: 1})
	if err := k.BooleanOperation(c, d, kernel.OpIntersection); err != nil {
		t.Fatal(err)
	}
	if got := c.Faces()[0].Area(); math.Abs(got-2) > 0.1 {
		t.Errorf("intersection area = %g, want ~2", got)
	}
}

func TestSheetBooleanRejectsOtherPlanes(t *testing.T) {
	k := New()
	a := sheet(t, k, 1, 1, v3.Vec{})
	b := sheet(t, k, 1, 1, v3.Vec{Z: 1})
	if err := k.BooleanOperation(a, b, kernel.OpUnion); !errors.Is(err, kernel.ErrIncompatibleBodies) {
		t.Errorf("error = %v, want ErrIncompatibleBodies", err)
	}
}

func TestMixedBoolean(t *testing.T) {
	k := New()

	s := sheet(t, k, 2, 2, v3.Vec{})
	cut := box(t, k, 1, 4, 4, v3.Vec{X: 0.5})
	if err := k.BooleanOperation(s, cut, kernel.OpDifference); err != nil {
		t.Fatal(err)
	}
	if got := s.Faces()[0].Area(); math.Abs(got-2) > 0.1 {
		t.Errorf("sheet minus solid area = %g, want ~2", got)
	}

	solid := box(t, k, 1, 1, 1, v3.Vec{})
	if err := k.BooleanOperation(solid, sheet(t, k, 1, 1, v3.Vec{}), kernel.OpUnion); !errors.Is(err, kernel.ErrIncompatibleBodies) {
		t.Errorf("solid union sheet error = %v, want ErrIncompatibleBodies", err)
	}
	if err := k.BooleanOperation(solid, sheet(t, k, 4, 4, v3.Vec{}), kernel.OpIntersection); err != nil {
		t.Fatal(err)
	}
	if !solid.IsSheet() {
		t.Error("solid intersected with a sheet should become a sheet")
	}
}

func TestLoft(t *testing.T) {
	k := New()
	disk := func(z float64) kernel.Face {
		c, err := k.CreateCylinderOrCone(v3.Vec{Z: z}, 1, v3.Vec{Z: z - 0.01}, 1)
		if err != nil {
			t.Fatal(err)
		}
		// The base disk faces away from the apex, so it points up.
		return c.Faces()[1]
	}

	b, err := k.Loft([]kernel.Face{disk(0), disk(2)})
	if err != nil {
		t.Fatalf("Loft failed: %v", err)
	}
	faces := b.Faces()
	if len(faces) != 3 {
		t.Fatalf("loft has %d faces, want 3", len(faces))
	}
	if got := normal(t, faces[0]); !vecNear(got, v3.Vec{Z: 1}, tol) {
		t.Errorf("top normal = %v", got)
	}
	if got := normal(t, faces[1]); !vecNear(got, v3.Vec{Z: -1}, tol) {
		t.Errorf("bottom normal = %v", got)
	}
	for i, f := range faces[:2] {
		if math.Abs(f.Area()-math.Pi) > tol {
			t.Errorf("face %d area = %g, want π", i, f.Area())
		}
	}
	if got := faces[2].Area(); math.Abs(got-4*math.Pi) > 1e-6 {
		t.Errorf("side area = %g, want 4π", got)
	}
	solid := b.(*body).solid
	if solid.Evaluate(v3.Vec{Z: 1}) >= 0 {
		t.Error("loft does not contain its midpoint")
	}
	if solid.Evaluate(v3.Vec{Z: 3}) <= 0 {
		t.Error("loft extends past its last section")
	}
}

func TestLoftRejectsBadSections(t *testing.T) {
	k := New()
	b := box(t, k, 1, 1, 1, v3.Vec{})
	faces := b.Faces()

	if _, err := k.Loft(faces[:1]); err == nil {
		t.Error("single section: expected error")
	}
	// top and front are perpendicular
	if _, err := k.Loft([]kernel.Face{faces[0], faces[2]}); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("perpendicular sections: error = %v, want ErrUnsupported", err)
	}
	s, _ := k.CreateSphere(v3.Vec{}, 1)
	if _, err := k.Loft([]kernel.Face{faces[0], s.Faces()[0]}); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("curved section: error = %v, want ErrUnsupported", err)
	}
}

func TestToMesh(t *testing.T) {
	k := New()
	k.SetMeshCells(32)

	t.Run("box", func(t *testing.T) {
		mesh, err := k.ToMesh(box(t, k, 100, 50, 25, v3.Vec{}))
		if err != nil {
			t.Fatalf("ToMesh failed: %v", err)
		}
		if mesh.IsEmpty() {
			t.Fatal("mesh is empty")
		}
		triCount := mesh.TriangleCount()
		// Verify vertex and index array sizes are consistent.
		if len(mesh.Vertices) != len(mesh.Normals) {
			t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
		}
		if len(mesh.Indices) != triCount*3 {
			t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
		}
		if size := mesh.Bounds().Size(); math.Abs(size.X-100) > 5 || math.Abs(size.Z-25) > 5 {
			t.Errorf("mesh size = %v, want about 100 x 50 x 25", size)
		}
	})

	t.Run("difference", func(t *testing.T) {
		a := box(t, k, 100, 100, 100, v3.Vec{})
		boxMesh, err := k.ToMesh(a)
		if err != nil {
			t.Fatal(err)
		}
		cyl, err := k.CreateCylinderOrCone(v3.Vec{Z: -60}, 20, v3.Vec{Z: 60}, 20)
		if err != nil {
			t.Fatal(err)
		}
		if err := k.BooleanOperation(a, cyl, kernel.OpDifference); err != nil {
			t.Fatal(err)
		}
		diffMesh, err := k.ToMesh(a)
		if err != nil {
			t.Fatal(err)
		}
		// A box with a hole should have more triangles than a plain box.
		if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
			t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
				diffMesh.TriangleCount(), boxMesh.TriangleCount())
		}
	})

	t.Run("sheet", func(t *testing.T) {
		mesh, err := k.ToMesh(sheet(t, k, 10, 10, v3.Vec{}))
		if err != nil {
			t.Fatalf("ToMesh failed: %v", err)
		}
		if mesh.IsEmpty() {
			t.Fatal("sheet mesh is empty")
		}
	})
}

func TestForeignBody(t *testing.T) {
	k := New()
	if _, err := k.Copy(nil); err == nil {
		t.Error("Copy(nil): expected error")
	}
}
