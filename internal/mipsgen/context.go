package mipsgen

import (
	"github.com/IsabelCoolIn/RuC/internal/ast"
	"github.com/IsabelCoolIn/RuC/internal/mipsgen/regfile"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// loopLabels names the labels a continue/break inside the innermost
// enclosing loop should jump to.
type loopLabels struct {
	continueLabel string
	breakLabel    string
}

// Context carries every piece of state threaded through one function's
// lowering: the shared label generator and output buffer live for the whole
// translation unit, while the register file and displacement table are
// reset per function, mirroring the teacher's per-function
// CreateRegisterFile call.
type Context struct {
	out     *writer
	labels  *labelGen
	idents  *ast.IdentTable
	strings *ast.StringTable

	rf    *regfile.File
	displ *displTable
	pool  *stringPool

	// funcIDs maps every function's spelling to its FUNC<id>/FUNCEND<id>
	// pair, assigned in one pass over the translation unit before any
	// function body is lowered so that calls to functions defined later in
	// the file (or recursive/mutually recursive calls) resolve correctly.
	funcIDs map[string]int

	retType      *ast.Type
	funcEndLabel string
	loops        []loopLabels
}

// ---------------------
// ----- Functions -----
// ---------------------

func newContext(idents *ast.IdentTable, strings *ast.StringTable) *Context {
	return &Context{
		out:     &writer{},
		labels:  &labelGen{},
		idents:  idents,
		strings: strings,
	}
}

// pushLoop records the continue/break targets for a newly entered loop.
func (c *Context) pushLoop(continueLabel, breakLabel string) {
	c.loops = append(c.loops, loopLabels{continueLabel, breakLabel})
}

// popLoop discards the innermost loop's targets.
func (c *Context) popLoop() { c.loops = c.loops[:len(c.loops)-1] }

// currentLoop returns the innermost enclosing loop's targets. Parsing
// guarantees continue/break only occur inside a loop, so callers may assume
// c.loops is non-empty.
func (c *Context) currentLoop() loopLabels { return c.loops[len(c.loops)-1] }

// valueType maps an ast.Type to the small type lattice codegen switches on.
func valueType(t *ast.Type) ValueType {
	switch {
	case t.IsFloating():
		return TypeFloat
	case t.IsPointer(), t.IsArray():
		return TypePointer
	default:
		return TypeInt
	}
}
