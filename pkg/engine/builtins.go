package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/facet/pkg/component"
	"github.com/chazu/facet/pkg/document"
	"github.com/chazu/facet/pkg/placement"
	"github.com/chazu/facet/pkg/realize"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNode wraps a component.Node so it can be passed between builtins.
type sexpNode struct {
	node component.Node
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", kindOf(n.node), n.node.Name())
}
func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

func kindOf(n component.Node) string {
	switch n.(type) {
	case *component.Box:
		return "box"
	case *component.Cylinder:
		return "cylinder"
	case *component.Sphere:
		return "sphere"
	case *component.Rect:
		return "rect"
	case *component.Circle:
		return "circle"
	case *component.Union:
		return "union"
	case *component.Difference:
		return "difference"
	case *component.Intersection:
		return "intersection"
	case *component.Loft:
		return "loft"
	}
	return "node"
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toFloats extracts exactly n numbers.
func toFloats(args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d arguments", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean. A bare trailing keyword counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_min) and plain strings ("min").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toNode extracts a component.Node from a sexpNode.
func toNode(s zygo.Sexp) (component.Node, error) {
	if n, ok := s.(*sexpNode); ok {
		return n.node, nil
	}
	return nil, fmt.Errorf("expected component, got %T (%s)", s, s.SexpString(nil))
}

// toNodes extracts components from args, flattening lists and arrays.
func toNodes(args []zygo.Sexp) ([]component.Node, error) {
	var out []component.Node
	for i, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			nodes, err := toNodes(items)
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
			continue
		}
		n, err := toNode(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toVector reads either a single vec3 or three numbers.
func toVector(args []zygo.Sexp) (v3.Vec, error) {
	if len(args) == 1 {
		return toVec3(args[0])
	}
	f, err := toFloats(args, 3)
	if err != nil {
		return v3.Vec{}, err
	}
	return v3.Vec{X: f[0], Y: f[1], Z: f[2]}, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// anchor resolves :min, :max or :mid of n.
func anchor(n component.Node, s zygo.Sexp) (placement.Place, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return placement.Place{}, fmt.Errorf("expected anchor (:min, :max, :mid): %w", err)
	}
	switch name {
	case "min":
		return component.AtMin(n), nil
	case "max":
		return component.AtMax(n), nil
	case "mid":
		return component.AtMid(n), nil
	}
	return placement.Place{}, fmt.Errorf("invalid anchor %q, expected min, max, or mid", name)
}

// alignment parses one axis of an align call:
//
//	(list :min other :max)   ; own min onto other's max
//	(list :mid (vec3 0 0 0)) ; own mid onto a point
//	(list :min 0)            ; own min onto a coordinate
func alignment(n component.Node, s zygo.Sexp) (placement.Translation, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return placement.Translation{}, err
	}
	if len(items) < 2 {
		return placement.Translation{}, fmt.Errorf("expected (anchor target [anchor]), got %d items", len(items))
	}
	own, err := anchor(n, items[0])
	if err != nil {
		return placement.Translation{}, err
	}

	switch target := items[1].(type) {
	case *sexpNode:
		if len(items) != 3 {
			return placement.Translation{}, fmt.Errorf("target component needs an anchor")
		}
		to, err := anchor(target.node, items[2])
		if err != nil {
			return placement.Translation{}, err
		}
		return own.To(to), nil
	case *sexpVec3:
		return own.ToPoint(target.vec), nil
	default:
		f, err := toFloat64(target)
		if err != nil {
			return placement.Translation{}, fmt.Errorf("target: %w", err)
		}
		return own.ToScalar(f), nil
	}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinFunc is the signature zygomys expects for Go builtins.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the facet builtins into a zygomys environment.
// Components are built against ctx; shown roots are appended to res.
// children is the default for show's :children. show realizes nodes only
// while g is open.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, ctx *component.Context, res *Result, children bool, g *gate) {
	// wrap returns n as a Sexp, applying an optional :name.
	wrap := func(fn string, n component.Node, pa kwArgs) (zygo.Sexp, error) {
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: name: %w", fn, err)
			}
			n.SetName(s)
		}
		return &sexpNode{node: n}, nil
	}

	// -----------------------------------------------------------------------
	// (box 10 20 5 :name "base")
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := toFloats(pa.positional, 3)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		b, err := component.NewBox(ctx, f[0], f[1], f[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return wrap("box", b, pa)
	})

	// -----------------------------------------------------------------------
	// (cylinder 10 2 :top 1)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := toFloats(pa.positional, 2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		top := f[1]
		if v, ok := pa.kw["top"]; ok {
			if top, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: top: %w", err)
			}
		}
		c, err := component.NewCone(ctx, f[0], f[1], top)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return wrap("cylinder", c, pa)
	})

	// -----------------------------------------------------------------------
	// (sphere 5)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := toFloats(pa.positional, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		s, err := component.NewSphere(ctx, f[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		return wrap("sphere", s, pa)
	})

	// -----------------------------------------------------------------------
	// (rect 10 20)
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := toFloats(pa.positional, 2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: %w", err)
		}
		r, err := component.NewRect(ctx, f[0], f[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: %w", err)
		}
		return wrap("rect", r, pa)
	})

	// -----------------------------------------------------------------------
	// (circle 3)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := toFloats(pa.positional, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		c, err := component.NewCircle(ctx, f[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		return wrap("circle", c, pa)
	})

	// -----------------------------------------------------------------------
	// (union a b c :name "body"), likewise difference, intersection, loft
	// -----------------------------------------------------------------------
	composite := func(fn string, build func(children []component.Node) (component.Node, error)) builtinFunc {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			children, err := toNodes(pa.positional)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			n, err := build(children)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			return wrap(fn, n, pa)
		}
	}
	env.AddFunction("union", composite("union", func(children []component.Node) (component.Node, error) {
		return component.NewUnion(ctx, children...)
	}))
	env.AddFunction("difference", composite("difference", func(children []component.Node) (component.Node, error) {
		return component.NewDifference(ctx, children...)
	}))
	env.AddFunction("intersection", composite("intersection", func(children []component.Node) (component.Node, error) {
		return component.NewIntersection(ctx, children...)
	}))
	env.AddFunction("loft", composite("loft", func(children []component.Node) (component.Node, error) {
		return component.NewLoft(ctx, children...)
	}))

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toVector(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (translate node 1 2 3) or (translate node (vec3 1 2 3))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a component and an offset")
		}
		n, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		v, err := toVector(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		n.Translate(v.X, v.Y, v.Z)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (rotate node 0 0 90 :center (vec3 1 1 0))
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a component and angles")
		}
		n, err := toNode(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		angles, err := toVector(pa.positional[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		center := placement.Origin
		if v, ok := pa.kw["center"]; ok {
			if center, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: center: %w", err)
			}
		}
		n.RotateAbout(angles.X, angles.Y, angles.Z, center)
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (scale node 2) or (scale node 2 2 2 :center (vec3 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("scale requires a component and factors")
		}
		n, err := toNode(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		var s v3.Vec
		if len(pa.positional) == 2 {
			f, err := toFloat64(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scale: %w", err)
			}
			s = v3.Vec{X: f, Y: f, Z: f}
		} else if s, err = toVector(pa.positional[1:]); err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		center := placement.Origin
		if v, ok := pa.kw["center"]; ok {
			if center, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("scale: center: %w", err)
			}
		}
		if err := n.ScaleAbout(s.X, s.Y, s.Z, center); err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (align node :x (list :min other :max) :y (list :mid other :mid) :gap 1)
	// -----------------------------------------------------------------------
	env.AddFunction("align", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("align requires exactly one component")
		}
		n, err := toNode(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("align: %w", err)
		}
		var gap float64
		if v, ok := pa.kw["gap"]; ok {
			if gap, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("align: gap: %w", err)
			}
		}
		var axes [3]placement.Translation
		for i, axis := range []string{"x", "y", "z"} {
			v, ok := pa.kw[axis]
			if !ok {
				axes[i] = placement.None()
				continue
			}
			t, err := alignment(n, v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("align: %s: %w", axis, err)
			}
			axes[i] = t.Offset(gap)
		}
		if err := n.Place(axes[0], axes[1], axes[2]); err != nil {
			return zygo.SexpNull, fmt.Errorf("align: %w", err)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (copy node)
	// -----------------------------------------------------------------------
	env.AddFunction("copy", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("copy requires exactly one component")
		}
		n, err := toNode(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("copy: %w", err)
		}
		c, err := n.Copy()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("copy: %w", err)
		}
		return wrap("copy", c, pa)
	})

	// -----------------------------------------------------------------------
	// (named node "lid")
	// -----------------------------------------------------------------------
	env.AddFunction("named", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("named requires a component and a name")
		}
		n, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("named: %w", err)
		}
		s, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("named: %w", err)
		}
		n.SetName(s)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (show node :children true)
	// -----------------------------------------------------------------------
	env.AddFunction("show", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nodes, err := toNodes(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("show: %w", err)
		}
		children := children
		if v, ok := pa.kw["children"]; ok {
			if children, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("show: children: %w", err)
			}
		}
		for _, n := range nodes {
			root := Root{Node: n, Children: children}
			if ctx.Document != nil {
				occ, err := realizeOpen(ctx, g, n, children)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("show: %w", err)
				}
				root.Occurrence = occ
			}
			res.Roots = append(res.Roots, root)
		}
		return zygo.SexpNull, nil
	})
}

// realizeOpen realizes n into the context document while g is open.
func realizeOpen(ctx *component.Context, g *gate, n component.Node, children bool) (*document.Occurrence, error) {
	if !g.enter() {
		return nil, errDetached
	}
	defer g.leave()
	return realize.CreateOccurrence(ctx, n, children)
}
