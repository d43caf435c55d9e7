// Package engine provides the Lisp front-end for facet. It wraps zygomys in
// a sandboxed environment whose builtins construct component trees.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/facet/pkg/component"
	"github.com/chazu/facet/pkg/document"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Root is a node the script asked to show.
type Root struct {
	Node component.Node
	// Children requests hidden occurrences for the node's children.
	Children bool
	// Occurrence is set when the node was realized into a document.
	Occurrence *document.Occurrence
}

// Result is the output of a successful evaluation.
type Result struct {
	Roots []Root
}

// Engine wraps the zygomys interpreter for facet scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	children   bool
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{timeout: EvalTimeout}
}

// SetTimeout changes the evaluation time limit. Non-positive values restore
// EvalTimeout.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d <= 0 {
		d = EvalTimeout
	}
	e.timeout = d
}

// SetCreateChildren sets whether show realizes the children of a node when
// the call does not say.
func (e *Engine) SetCreateChildren(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.children = v
}

// Evaluate runs source against ctx. Shapes are built with ctx.Kernel and
// shown nodes are realized into ctx.Document when it is set.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
//
// A script that times out may still be running when Evaluate returns, but it
// can no longer add occurrences to ctx.Document.
func (e *Engine) Evaluate(ctx *component.Context, source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	timeout := e.timeout
	children := e.children
	e.mu.Unlock()

	r := newRun(gen, timeout)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.done <- outcome{err: fmt.Errorf("panic during evaluation: %v", p)}
			}
		}()

		res, evalErrs, err := e.evaluate(ctx, source, children, r.gate)
		r.done <- outcome{result: res, errors: evalErrs, err: err}
	}()

	return e.await(r)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(ctx *component.Context, source string, children bool, g *gate) (*Result, []EvalError, error) {
	res := &Result{}

	// Empty source is a valid program that shows nothing.
	if strings.TrimSpace(source) == "" {
		return res, nil, nil
	}
	if ctx == nil || ctx.Kernel == nil {
		return nil, nil, fmt.Errorf("engine: evaluation needs a context with a kernel")
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, ctx, res, children, g)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	ctx.Log.Debug().Int("roots", len(res.Roots)).Msg("script evaluated")
	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
