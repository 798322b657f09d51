// Package mipsgen lowers a syntax tree to MIPS32 assembly text targeting
// the SYSV calling convention: $a0-$a3/$fa0,$fa2 for arguments, $v0/$f0 for
// return values, $s0-$s7/$fs0,2,..,8/$ra/$sp preserved across calls.
package mipsgen

import (
	"fmt"

	"github.com/IsabelCoolIn/RuC/internal/ast"
)

// ---------------------
// ----- Functions -----
// ---------------------

// Generate lowers every top level declaration of prog and returns the
// complete assembler text for the translation unit, per spec.md §4.3.
func Generate(prog *ast.Program) (string, error) {
	c := newContext(prog.Idents, prog.Strings)
	c.pool = buildStringPool(prog.Strings)

	emitPreamble(c.out)

	// Assign every function its id up front so calls to functions defined
	// later in the file (and recursive calls) resolve to the right FUNC
	// label before any body is lowered.
	c.funcIDs = make(map[string]int)
	for _, decl := range prog.GetRoot() {
		if decl.Class == ast.FuncDecl {
			c.funcIDs[c.idents.GetSpelling(decl.FuncID())] = c.labels.newFunc()
		}
	}

	for _, decl := range prog.GetRoot() {
		if decl.Class == ast.FuncDecl {
			if err := c.genFunction(decl); err != nil {
				return "", fmt.Errorf("%s: %w", decl, err)
			}
		}
	}

	c.out.Write("\n\t.rdata\n")
	emitStringPool(c.out, c.pool)

	c.out.Write("\n\t.data\n")
	c.out.Write("\t.align\t2\n")
	for _, decl := range prog.GetRoot() {
		if decl.Class == ast.VarDecl {
			c.out.Write("\t.globl\t%s\n", c.idents.GetSpelling(decl.VarID()))
			c.out.Label(c.idents.GetSpelling(decl.VarID()))
			words := decl.VarType().Size() / 4
			if words < 1 {
				words = 1
			}
			for i := 0; i < words; i++ {
				c.out.Write("\t.word\t0\n")
			}
		}
	}

	return c.out.String(), nil
}

// emitPreamble writes the fixed assembler directive header spec.md §4.3 and
// §6 require every translation unit to start with, targeting GNU `as` with
// the `pic0` ABI option (this repo's only supported addressing mode, per
// spec.md §1's Non-goals).
func emitPreamble(w *writer) {
	w.Write("\t.mdebug.abi32\n")
	w.Write("\t.nan\tlegacy\n")
	w.Write("\t.module\tfp=xx\n")
	w.Write("\t.module\tnooddspreg\n")
	w.Write("\t.abicalls\n")
	w.Write("\t.option\tpic0\n")
	w.Write("\t.text\n")
	w.Write("\t.align\t2\n")
}
