package mipsgen

import (
	"fmt"

	"github.com/IsabelCoolIn/RuC/internal/ast"
	"github.com/IsabelCoolIn/RuC/internal/mipsgen/regfile"
)

// ---------------------
// ----- Functions -----
// ---------------------

// genCall lowers a Call node, dispatching to the printf builtin lowering
// (spec.md §4.5) or to an ordinary non-variadic user call.
func (c *Context) genCall(n *ast.Node) (Rvalue, error) {
	name := c.idents.GetSpelling(n.Callee().IdentID)
	if name == "printf" {
		return c.genPrintf(n)
	}
	return c.genUserCall(n, name)
}

// genUserCall lowers spec.md §4.5's non-variadic user call: save the
// argument registers, place actuals into $a0-$a3/$fa0,$fa2 in source
// order, `jal`, restore, and pick up the return value from $v0/$f0.
//
// Every actual is first evaluated into a register the call owns before any
// $a register is written: register-resident parameters of the calling
// function live in $a0..$a3, so writing $a0 for the first argument while a
// later argument still reads $a1 would otherwise corrupt it.
func (c *Context) genUserCall(n *ast.Node, name string) (Rvalue, error) {
	id, ok := c.funcIDs[name]
	if !ok {
		return nil, fmt.Errorf("mipsgen: call to undeclared function %q", name)
	}
	funcLabel := fmt.Sprintf("FUNC%d", id)

	const savedWords = 4
	c.out.Ins3("addiu", "$sp", "$sp", fmt.Sprintf("%d", -4*savedWords))
	for i, r := range argIntRegs {
		c.out.LoadStore("sw", r, i*4, "$sp")
	}

	type staged struct {
		reg     regfile.Register
		isFloat bool
	}
	var args []staged
	for i := 0; i < n.CallArgCount(); i++ {
		argV, err := c.genRvalue(n.Argument(i))
		if err != nil {
			return nil, err
		}
		r, err := c.ownRegister(argV)
		if err != nil {
			return nil, err
		}
		args = append(args, staged{reg: r, isFloat: rvType(argV) == TypeFloat})
	}

	intIdx, floatIdx := 0, 0
	for _, a := range args {
		if a.isFloat {
			if floatIdx >= len(argFloatRegs) {
				return nil, fmt.Errorf("mipsgen: call to %q: overflow float arguments onto the stack are not yet supported", name)
			}
			c.out.Ins2("mov.s", argFloatRegs[floatIdx], a.reg.String())
			floatIdx++
		} else {
			if intIdx >= len(argIntRegs) {
				return nil, fmt.Errorf("mipsgen: call to %q: overflow integer arguments onto the stack are not yet supported", name)
			}
			c.out.Ins2("move", argIntRegs[intIdx], a.reg.String())
			intIdx++
		}
		c.rf.FreeIfTemp(a.reg)
	}

	c.out.JumpLink(funcLabel)

	for i, r := range argIntRegs {
		c.out.LoadStore("lw", r, i*4, "$sp")
	}
	c.out.Ins3("addiu", "$sp", "$sp", fmt.Sprintf("%d", 4*savedWords))

	retType := n.Typ
	if retType == nil || retType.GetClass() == ast.Void {
		return voidValue(), nil
	}
	if retType.IsFloating() {
		result := c.rf.Next(regfile.Float)
		c.out.Ins2("mov.s", result.String(), "$f0")
		return rvalue(result, TypeFloat), nil
	}
	result := c.rf.Next(regfile.Int)
	c.out.Ins2("move", result.String(), "$v0")
	return rvalue(result, valueType(retType)), nil
}

// genPrintf lowers the printf builtin per spec.md §4.5 and Scenario D: the
// format string must be a literal (its segments were split by
// buildStringPool when the string pool was built). For each conversion
// segment, save the live argument registers, load that segment's label into
// $a0, place the matching actual into $a1 (and $a2 for a float, after a
// single->double promotion), call printf, and restore; finally call printf
// once more with just the trailing segment in $a0.
func (c *Context) genPrintf(n *ast.Node) (Rvalue, error) {
	fmtNode := n.Argument(0)
	if fmtNode.Class != ast.LiteralString {
		return nil, fmt.Errorf("mipsgen: printf requires a literal format string")
	}
	idx := fmtNode.StrIdx
	segs := c.pool.segmentCount(idx)

	for j := 0; j < segs-1 && j+1 < n.CallArgCount(); j++ {
		argV, err := c.genRvalue(n.Argument(j + 1))
		if err != nil {
			return nil, err
		}
		// Copy the argument out of any $a register it may reside in before
		// the format-string load below clobbers $a0.
		argR, err := c.ownRegister(argV)
		if err != nil {
			return nil, err
		}
		isFloat := rvType(argV) == TypeFloat
		saveWords := 2
		if isFloat {
			saveWords = 3
		}

		c.out.Ins3("addiu", "$sp", "$sp", fmt.Sprintf("%d", -4*saveWords))
		c.out.LoadStore("sw", "$a0", 0, "$sp")
		c.out.LoadStore("sw", "$a1", 4, "$sp")
		if isFloat {
			c.out.LoadStore("sw", "$a2", 8, "$sp")
		}

		c.out.LoadAddr("$a0", c.pool.segmentLabel(idx, j))

		if isFloat {
			c.out.Ins2("cvt.d.s", argR.String(), argR.String())
			c.out.Ins2("mfc1", "$a1", argR.String())
			c.out.Ins2("mfc1", "$a2", fmt.Sprintf("$f%d", argR.Id()+1))
		} else {
			c.out.Ins2("move", "$a1", argR.String())
		}
		c.rf.FreeIfTemp(argR)

		c.out.JumpLink("printf")

		c.out.LoadStore("lw", "$a0", 0, "$sp")
		c.out.LoadStore("lw", "$a1", 4, "$sp")
		if isFloat {
			c.out.LoadStore("lw", "$a2", 8, "$sp")
		}
		c.out.Ins3("addiu", "$sp", "$sp", fmt.Sprintf("%d", 4*saveWords))
	}

	c.out.LoadAddr("$a0", c.pool.segmentLabel(idx, segs-1))
	c.out.JumpLink("printf")
	return voidValue(), nil
}
