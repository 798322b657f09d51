package mipsgen

import (
	"fmt"

	"github.com/IsabelCoolIn/RuC/internal/ast"
	"github.com/IsabelCoolIn/RuC/internal/mipsgen/regfile"
)

// ---------------------
// ----- Functions -----
// ---------------------

// genFunction lowers one FuncDecl: prologue, body, and the single epilogue
// every return funnels to via `j FUNCEND<id>`.
//
// Frame layout. The prologue sets this function's $fp to the incoming $sp
// (the top of the frame), so every preserved slot and local sits at a
// negative offset from $fp:
//
//   - DisplRA (-4): saved $ra.
//   - DisplSP (-8): saved caller $fp (the preserved-area's "$sp" slot,
//     repurposed to link frames rather than literally hold old $sp, which
//     the epilogue's `move $sp, $fp` recovers directly).
//   - DisplFS(0..4) (-12..-28): saved $fs0,$fs2,$fs4,$fs6,$fs8.
//   - DisplS(0..7) (-32..-60): saved $s0..$s7.
//   - DisplA(0..3) (-64..-76): spilled incoming parameters.
//   - Below that: locals, growing as collectLocals walks the body.
func (c *Context) genFunction(fn *ast.Node) error {
	name := c.idents.GetSpelling(fn.FuncID())
	id := c.funcIDs[name]
	funcLabel := fmt.Sprintf("FUNC%d", id)
	endLabel := fmt.Sprintf("FUNCEND%d", id)

	c.rf = regfile.New()
	c.displ = newDisplTable()
	c.retType = fn.Typ.FuncReturnType()
	c.funcEndLabel = endLabel
	c.loops = nil

	params := fn.FuncParameters()
	if len(params) > 4 {
		return fmt.Errorf("function %s: at most 4 register-resident parameters are supported", name)
	}
	// Integer parameters stay register-resident in $a0..$a3 (their spill
	// slots below exist for the fixed preserved-area layout; reads and
	// writes go to the register). Float parameters live in their slots:
	// $f12/$f14 are not preserved around calls the way $a0..$a3 are.
	ai := 0
	for i, pid := range params {
		name := c.idents.GetSpelling(pid)
		if c.idents.GetType(pid).IsFloating() {
			c.displ.bindStack(name, DisplA(i))
		} else {
			c.displ.bindRegister(name, c.rf.GetI(regfile.A0+ai))
			ai++
		}
	}
	collectLocals(fn.FuncBody(), c.idents, c.displ)

	maxDispl := alignUp(c.displ.maxDispl, stackAlign)
	frameSize := maxDispl + FuncDisplPreserved + 4

	c.out.Write("\n")
	c.out.Write("\t.globl\t%s\n", name)
	c.out.WriteString(name + ":\n")
	c.out.Label(funcLabel)

	c.out.Ins3("subu", "$sp", "$sp", fmt.Sprintf("%d", frameSize))
	c.out.LoadStore("sw", "$ra", frameSize-4, "$sp")
	c.out.LoadStore("sw", "$fp", frameSize-8, "$sp")
	c.out.Ins3("addu", "$fp", "$sp", fmt.Sprintf("%d", frameSize))

	for i := 0; i < 8; i++ {
		c.out.LoadStore("sw", fmt.Sprintf("$s%d", i), DisplS(i), "$fp")
	}
	for i, fs := range savedFloatRegs {
		c.out.LoadStore("s.s", fmt.Sprintf("$f%d", fs), DisplFS(i), "$fp")
	}

	fi, ii := 0, 0
	for i, pid := range params {
		t := c.idents.GetType(pid)
		if t.IsFloating() {
			c.out.LoadStore("s.s", argFloatRegs[fi], DisplA(i), "$fp")
			fi++
		} else {
			c.out.LoadStore("sw", argIntRegs[ii], DisplA(i), "$fp")
			ii++
		}
	}

	if name == "main" {
		c.emitMainEntrySetup()
	}

	if err := c.genStmt(fn.FuncBody()); err != nil {
		return err
	}

	c.out.Label(endLabel)
	c.genEpilogue()
	return nil
}

// HeapDispl is the size, in bytes, of the static region reserved below
// `main`'s $gp before the dynamic (heap) region begins, per spec.md §4.3's
// `-HEAP_DISPL - 60($gp)` border slot.
const HeapDispl = 65536

// emitMainEntrySetup lowers the extra, main-only entry sequence spec.md
// §4.3 describes: besides the ordinary frame prologue every function gets,
// `main` also establishes the global pointer and records where the
// compiler-managed dynamic memory region begins, read by the runtime's
// array/pointer allocator.
func (c *Context) emitMainEntrySetup() {
	c.out.LoadAddr("$gp", "__gnu_local_gp")
	r := c.rf.Next(regfile.Int)
	c.out.LoadAddr(r.String(), "_end")
	c.out.LoadStore("sw", r.String(), -(HeapDispl + 60), "$gp")
	c.rf.FreeIfTemp(r)
}

// savedFloatRegs names the physical even-numbered registers backing the
// logical $fs0,$fs2,$fs4,$fs6,$fs8 callee-saved slots.
var savedFloatRegs = []int{16, 18, 20, 22, 24}

var argIntRegs = [...]string{"$a0", "$a1", "$a2", "$a3"}
var argFloatRegs = [...]string{"$f12", "$f14"}

// genEpilogue restores every callee-saved register and the caller's stack
// frame, then returns. This is the only `jr $ra` in the function; every
// Return statement jumps here instead of emitting its own.
func (c *Context) genEpilogue() {
	c.out.LoadStore("lw", "$ra", DisplRA, "$fp")
	c.out.LoadStore("lw", "$at", DisplSP, "$fp")
	for i := 0; i < 8; i++ {
		c.out.LoadStore("lw", fmt.Sprintf("$s%d", i), DisplS(i), "$fp")
	}
	for i, fs := range savedFloatRegs {
		c.out.LoadStore("l.s", fmt.Sprintf("$f%d", fs), DisplFS(i), "$fp")
	}
	c.out.Ins2("move", "$sp", "$fp")
	c.out.Ins2("move", "$fp", "$at")
	c.out.Ins1("jr", "$ra")
	c.out.Nop()
}

// collectLocals walks a function body before any code is emitted, reserving
// a displacement slot for every local VarDecl it finds. This two-pass split
// is what lets the prologue align max_displ "after the body is known" (the
// frame size must be fixed before the first instruction is written) while
// the second, code-emitting pass just looks displacements up.
func collectLocals(n *ast.Node, idents *ast.IdentTable, d *displTable) {
	if n == nil {
		return
	}
	switch n.Class {
	case ast.VarDecl:
		if idents.IsLocal(n.VarID()) {
			size := n.VarType().Size()
			if n.VarType().IsArray() {
				// The frame slot holds only the base address; the elements
				// live in the dynamic region below the heap border.
				size = 4
			}
			d.reserve(idents.GetSpelling(n.VarID()), size)
		}
	case ast.Decl:
		for _, c := range n.Children {
			collectLocals(c, idents, d)
		}
	case ast.Compound:
		for i := 0; i < n.SubStmtCount(); i++ {
			collectLocals(n.SubStmt(i), idents, d)
		}
	case ast.If:
		collectLocals(n.Then(), idents, d)
		collectLocals(n.Else(), idents, d)
	case ast.While, ast.Do:
		collectLocals(n.Body(), idents, d)
	case ast.For:
		if n.HasInit() {
			collectLocals(n.Init(), idents, d)
		}
		collectLocals(n.Body(), idents, d)
	case ast.Switch:
		for i := 0; i < n.SubStmtCount(); i++ {
			collectLocals(n.SubStmt(i), idents, d)
		}
	case ast.Case, ast.Default:
		for _, c := range n.Children {
			collectLocals(c, idents, d)
		}
	}
}
