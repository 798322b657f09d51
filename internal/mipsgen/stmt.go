package mipsgen

import (
	"fmt"

	"github.com/IsabelCoolIn/RuC/internal/ast"
	"github.com/IsabelCoolIn/RuC/internal/mipsgen/regfile"
)

// ---------------------
// ----- Functions -----
// ---------------------

// genStmt lowers one statement per spec.md §4.6. Every temp register a
// statement allocates is freed before it returns, so the pool is empty
// between statements (Testable Property #3).
func (c *Context) genStmt(n *ast.Node) error {
	if n == nil {
		return nil
	}
	switch n.Class {
	case ast.Compound:
		for i := 0; i < n.SubStmtCount(); i++ {
			if err := c.genStmt(n.SubStmt(i)); err != nil {
				return err
			}
		}
		return nil

	case ast.Decl:
		for _, child := range n.Children {
			if err := c.genStmt(child); err != nil {
				return err
			}
		}
		return nil

	case ast.VarDecl:
		return c.genVarDecl(n)

	case ast.ExprStmt:
		v, err := c.genRvalue(n.Children[0])
		if err != nil {
			return err
		}
		c.freeValue(v)
		return nil

	case ast.NullStmt:
		return nil

	case ast.If:
		return c.genIf(n)
	case ast.While:
		return c.genWhile(n)
	case ast.Do:
		return c.genDo(n)
	case ast.For:
		return c.genFor(n)
	case ast.Switch:
		return c.genSwitch(n)

	case ast.Continue:
		c.out.Jump(c.currentLoop().continueLabel)
		return nil
	case ast.Break:
		c.out.Jump(c.currentLoop().breakLabel)
		return nil

	case ast.Return:
		return c.genReturn(n)

	default:
		return fmt.Errorf("mipsgen: unexpected node %s in statement position", n)
	}
}

// genCondition lowers a controlling expression into a live register the
// caller branches on. The register is released through the value's own
// free discipline (freeValue / FreeIfTemp), so a register-resident
// variable used directly as a condition is never reclaimed.
func (c *Context) genCondition(n *ast.Node) (regfile.Register, error) {
	v, err := c.genRvalue(n)
	if err != nil {
		return regfile.Register{}, err
	}
	return c.materialize(v)
}

// genIf lowers `if (cond) then [else alt]` per spec.md §4.6: branch-if-zero
// past the then-branch, to the else-branch's label when one exists and to
// the common end label otherwise.
func (c *Context) genIf(n *ast.Node) error {
	condR, err := c.genCondition(n.Condition())
	if err != nil {
		return err
	}
	endLabel := c.labels.new(labelIfEnd)
	elseLabel := endLabel
	if n.Else() != nil {
		elseLabel = c.labels.new(labelIfElse)
	}
	c.out.Branch2("beq", condR.String(), "$zero", elseLabel)
	c.rf.FreeIfTemp(condR)

	if err := c.genStmt(n.Then()); err != nil {
		return err
	}
	if n.Else() != nil {
		c.out.Jump(endLabel)
		c.out.Label(elseLabel)
		if err := c.genStmt(n.Else()); err != nil {
			return err
		}
	}
	c.out.Label(endLabel)
	return nil
}

// genWhile lowers `while (cond) body`. continue re-tests the condition,
// break leaves the loop.
func (c *Context) genWhile(n *ast.Node) error {
	head := c.labels.new(labelWhileHead)
	end := c.labels.new(labelWhileEnd)
	c.pushLoop(head, end)
	defer c.popLoop()

	c.out.Label(head)
	condR, err := c.genCondition(n.Condition())
	if err != nil {
		return err
	}
	c.out.Branch2("beq", condR.String(), "$zero", end)
	c.rf.FreeIfTemp(condR)

	if err := c.genStmt(n.Body()); err != nil {
		return err
	}
	c.out.Jump(head)
	c.out.Label(end)
	return nil
}

// genDo lowers `do body while (cond)`. The condition carries its own NEXT
// label, the target continue binds to per spec.md §4.6.
func (c *Context) genDo(n *ast.Node) error {
	head := c.labels.new(labelDoHead)
	next := c.labels.new(labelDoNext)
	end := c.labels.new(labelDoEnd)
	c.pushLoop(next, end)
	defer c.popLoop()

	c.out.Label(head)
	if err := c.genStmt(n.Body()); err != nil {
		return err
	}
	c.out.Label(next)
	condR, err := c.genCondition(n.Condition())
	if err != nil {
		return err
	}
	c.out.Branch2("bne", condR.String(), "$zero", head)
	c.rf.FreeIfTemp(condR)
	c.out.Label(end)
	return nil
}

// genFor lowers `for (init; cond; inc) body`. Both the condition and the
// increment clause are optional; continue jumps to the increment point so a
// skipped iteration still advances.
func (c *Context) genFor(n *ast.Node) error {
	if n.HasInit() {
		if err := c.genStmt(n.Init()); err != nil {
			return err
		}
	}
	head := c.labels.new(labelForHead)
	inc := c.labels.new(labelForInc)
	end := c.labels.new(labelForEnd)
	c.pushLoop(inc, end)
	defer c.popLoop()

	c.out.Label(head)
	if n.HasCond() {
		condR, err := c.genCondition(n.Condition())
		if err != nil {
			return err
		}
		c.out.Branch2("beq", condR.String(), "$zero", end)
		c.rf.FreeIfTemp(condR)
	}
	if err := c.genStmt(n.Body()); err != nil {
		return err
	}
	c.out.Label(inc)
	if n.HasIncrement() {
		v, err := c.genRvalue(n.Increment())
		if err != nil {
			return err
		}
		c.freeValue(v)
	}
	c.out.Jump(head)
	c.out.Label(end)
	return nil
}

// genSwitch lowers `switch (cond) { case ...: ... default: ... }` as a
// compare-and-branch chain: the controlling value is tested against every
// case constant in order, falling back to the default body (or the end
// label) when none matches. Case bodies fall through into each other unless
// they break, matching C semantics. break binds to the switch's end label;
// continue keeps binding to the enclosing loop, if any.
func (c *Context) genSwitch(n *ast.Node) error {
	condR, err := c.genCondition(n.Condition())
	if err != nil {
		return err
	}
	end := c.labels.new(labelSwitchEnd)

	type caseArm struct {
		node  *ast.Node
		label string
	}
	var arms []caseArm
	defaultLabel := end
	for i := 1; i < len(n.Children); i++ {
		arm := n.Children[i]
		label := c.labels.new(labelCase)
		arms = append(arms, caseArm{node: arm, label: label})
		if arm.Class == ast.Default {
			defaultLabel = label
		}
	}

	cmp := c.rf.Next(regfile.Int)
	for _, arm := range arms {
		if arm.node.Class != ast.Case {
			continue
		}
		v, err := c.genRvalue(arm.node.Children[0])
		if err != nil {
			return err
		}
		if k, ok := v.(Const); ok {
			c.out.LoadImm(cmp.String(), k.Int)
		} else {
			r, err := c.materialize(v)
			if err != nil {
				return err
			}
			c.moveReg(cmp, r)
			c.rf.FreeIfTemp(r)
		}
		c.out.Branch2("beq", condR.String(), cmp.String(), arm.label)
	}
	c.rf.FreeIfTemp(cmp)
	c.rf.FreeIfTemp(condR)
	c.out.Jump(defaultLabel)

	continueLabel := ""
	if len(c.loops) > 0 {
		continueLabel = c.currentLoop().continueLabel
	}
	c.pushLoop(continueLabel, end)
	defer c.popLoop()

	for _, arm := range arms {
		c.out.Label(arm.label)
		start := 0
		if arm.node.Class == ast.Case {
			start = 1 // Children[0] is the case value expression.
		}
		for i := start; i < len(arm.node.Children); i++ {
			if err := c.genStmt(arm.node.Children[i]); err != nil {
				return err
			}
		}
	}
	c.out.Label(end)
	return nil
}

// genReturn lowers `return [expr]`: the value, if any, is placed in $v0
// (integers and pointers) or $f0 (floats), then control jumps to the
// function's single FUNCEND label, where the epilogue runs.
func (c *Context) genReturn(n *ast.Node) error {
	if n.HasReturnExpr() {
		v, err := c.genRvalue(n.ReturnExpr())
		if err != nil {
			return err
		}
		r, err := c.materialize(v)
		if err != nil {
			return err
		}
		if c.retType != nil && c.retType.IsFloating() {
			c.out.Ins2("mov.s", "$f0", r.String())
		} else {
			c.out.Ins2("move", "$v0", r.String())
		}
		c.rf.FreeIfTemp(r)
	}
	c.out.Jump(c.funcEndLabel)
	return nil
}

// genVarDecl lowers a local variable declaration. Scalars with an
// initializer evaluate it and store to the variable's frame slot; arrays
// get the dynamic-region layout of spec.md §4.6. Globals were laid out by
// Generate's .data pass and emit no code here.
func (c *Context) genVarDecl(n *ast.Node) error {
	if !c.idents.IsLocal(n.VarID()) {
		return nil
	}
	if n.VarType().IsArray() {
		return c.genArrayDecl(n)
	}
	if !n.VarHasInitializer() {
		return nil
	}
	lv, err := c.genIdentLvalue(&ast.Node{Class: ast.Ident, Typ: n.VarType(), IdentID: n.VarID()})
	if err != nil {
		return err
	}
	v, err := c.genRvalue(n.VarInitializer())
	if err != nil {
		return err
	}
	r, err := c.materialize(v)
	if err != nil {
		return err
	}
	c.storeLvalue(lv, r)
	c.rf.FreeIfTemp(r)
	c.freeLvalueBase(lv)
	return nil
}

// genArrayDecl lowers a local array declaration against the dynamic memory
// region: the current region border becomes the array's base address,
// stored in the variable's frame slot, and the border retreats past the
// per-dimension size word plus the elements. An initializer list then fills
// element i at base - (i+1)*4. (This follows the intended control flow of
// the original implementation, with the inverted array/scalar dispatch
// corrected per spec.md §9's open question; see DESIGN.md.)
func (c *Context) genArrayDecl(n *ast.Node) error {
	name := c.idents.GetSpelling(n.VarID())
	slot, ok := c.displ.lookup(name)
	if !ok || !slot.onStack {
		return fmt.Errorf("mipsgen: array %q has no displacement slot", name)
	}

	border := c.rf.Next(regfile.Int)
	c.out.LoadStore("lw", border.String(), -(HeapDispl + 60), "$gp")
	c.out.LoadStore("sw", border.String(), slot.displ, "$fp")

	base := c.rf.Next(regfile.Int)
	c.moveReg(base, border)

	bounds := n.VarBounds()
	if len(bounds) == 0 {
		return fmt.Errorf("mipsgen: empty_init: array %q declared with no bounds", name)
	}
	for _, bound := range bounds {
		if bound == nil {
			return fmt.Errorf("mipsgen: empty_init: array %q has an empty non-leaf dimension", name)
		}
		v, err := c.genRvalue(bound)
		if err != nil {
			return err
		}
		if k, ok := v.(Const); ok {
			size := c.rf.Next(regfile.Int)
			c.out.LoadImm(size.String(), k.Int)
			c.out.LoadStore("sw", size.String(), 0, border.String())
			c.rf.FreeIfTemp(size)
			c.out.Ins3("addiu", border.String(), border.String(), fmt.Sprintf("%d", -4*(k.Int+1)))
			continue
		}
		sizeR, err := c.materialize(v)
		if err != nil {
			return err
		}
		c.out.LoadStore("sw", sizeR.String(), 0, border.String())
		span := c.rf.Next(regfile.Int)
		c.out.Ins3("addi", span.String(), sizeR.String(), "1")
		c.out.Ins3("sll", span.String(), span.String(), "2")
		c.out.Ins3("sub", border.String(), border.String(), span.String())
		c.rf.FreeIfTemp(span)
		c.rf.FreeIfTemp(sizeR)
	}

	if n.VarHasInitializer() {
		init := n.VarInitializer()
		if init.Class != ast.InitList {
			return fmt.Errorf("mipsgen: array %q initializer must be a list", name)
		}
		for i := 0; i < init.InitSubCount(); i++ {
			v, err := c.genRvalue(init.InitSub(i))
			if err != nil {
				return err
			}
			r, err := c.materialize(v)
			if err != nil {
				return err
			}
			c.out.LoadStore(storeOp(rvType(v)), r.String(), -4*(i+1), base.String())
			c.rf.FreeIfTemp(r)
		}
	}

	c.out.LoadStore("sw", border.String(), -(HeapDispl + 60), "$gp")
	c.rf.FreeIfTemp(base)
	c.rf.FreeIfTemp(border)
	return nil
}
