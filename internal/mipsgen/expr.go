package mipsgen

import (
	"fmt"
	"strings"

	"github.com/IsabelCoolIn/RuC/internal/ast"
	"github.com/IsabelCoolIn/RuC/internal/mipsgen/regfile"
)

// ---------------------
// ----- Functions -----
// ---------------------

// classFor returns the register class a value of type t lives in.
func classFor(t ValueType) regfile.Class {
	if t == TypeFloat {
		return regfile.Float
	}
	return regfile.Int
}

func loadOp(t ValueType) string {
	if t == TypeFloat {
		return "l.s"
	}
	return "lw"
}

func storeOp(t ValueType) string {
	if t == TypeFloat {
		return "s.s"
	}
	return "sw"
}

func sameReg(a, b regfile.Register) bool { return a.Id() == b.Id() && a.Class() == b.Class() }

// moveReg emits a register-to-register move, or nothing if dst already is src.
func (c *Context) moveReg(dst, src regfile.Register) {
	if sameReg(dst, src) {
		return
	}
	if dst.Class() == regfile.Float {
		c.out.Ins2("mov.s", dst.String(), src.String())
	} else {
		c.out.Ins2("move", dst.String(), src.String())
	}
}

// materialize ensures v is live in a register, loading a constant with `li`/
// `li.s` if necessary, and returns that register. The register may belong
// to a register-resident variable; callers that intend to overwrite it must
// go through ownRegister instead.
func (c *Context) materialize(v Rvalue) (regfile.Register, error) {
	switch k := v.(type) {
	case Void:
		return regfile.Register{}, fmt.Errorf("mipsgen: void value used where a value was expected")
	case RegisterRV:
		return k.Reg, nil
	case Const:
		r := c.rf.Next(classFor(k.Typ))
		if k.Typ == TypeFloat {
			c.out.Write("\tli.s\t%s, %g\n", r.String(), k.Float)
		} else {
			c.out.LoadImm(r.String(), k.Int)
		}
		return r, nil
	default:
		return regfile.Register{}, fmt.Errorf("mipsgen: EXPR_INVALID: unknown rvalue variant %T", v)
	}
}

// ownRegister returns a register holding v's value that the caller may
// freely overwrite: a register borrowed from a register-resident variable
// (from_lvalue) is first copied into a fresh temp so the variable survives.
func (c *Context) ownRegister(v Rvalue) (regfile.Register, error) {
	r, err := c.materialize(v)
	if err != nil {
		return r, err
	}
	if fromLV(v) {
		fresh := c.rf.Next(classFor(rvType(v)))
		c.moveReg(fresh, r)
		return fresh, nil
	}
	return r, nil
}

// freeValue releases the temp register backing v, if it holds one.
// Constants and void results never claimed a register, and a from_lvalue
// register belongs to its variable and is never freed (spec.md §3's
// allocator invariant).
func (c *Context) freeValue(v Rvalue) {
	if k, ok := v.(RegisterRV); ok && !k.FromLvalue {
		c.rf.FreeIfTemp(k.Reg)
	}
}

// releaseOperand frees r, the register materialize returned for v, unless r
// belongs to a register-resident variable. Unlike freeValue it also releases
// the temp a constant was loaded into.
func (c *Context) releaseOperand(v Rvalue, r regfile.Register) {
	if !fromLV(v) {
		c.rf.FreeIfTemp(r)
	}
}

// loadLvalue produces the rvalue form of lv. A Stack location is read into
// a freshly allocated register; a register-resident variable is borrowed in
// place, flagged from_lvalue so nothing downstream overwrites or frees it.
// It does not free lv's base register; callers that are done addressing lv
// must call freeLvalueBase.
func (c *Context) loadLvalue(lv Lvalue) Rvalue {
	switch k := lv.(type) {
	case RegisterLV:
		return RegisterRV{Reg: k.Reg, Typ: k.Typ, FromLvalue: true}
	default:
		s := lv.(Stack)
		r := c.rf.Next(classFor(s.Typ))
		c.out.LoadStore(loadOp(s.Typ), r.String(), s.Displ, s.Base.String())
		return rvalue(r, s.Typ)
	}
}

// storeLvalue writes srcReg to the location named by lv. The caller retains
// ownership of srcReg (storeLvalue does not free it).
func (c *Context) storeLvalue(lv Lvalue, srcReg regfile.Register) {
	switch k := lv.(type) {
	case RegisterLV:
		c.moveReg(k.Reg, srcReg)
	default:
		s := lv.(Stack)
		c.out.LoadStore(storeOp(s.Typ), srcReg.String(), s.Displ, s.Base.String())
	}
}

// freeLvalueBase releases lv's base register if (and only if) it was drawn
// from the temporary pool, e.g. the computed address of a subscript or
// pointer-indirection target. Addressing a plain local ($fp-relative) or a
// register-resident variable is a no-op here since their registers are
// fixed-purpose.
func (c *Context) freeLvalueBase(lv Lvalue) {
	if s, ok := lv.(Stack); ok {
		c.rf.FreeIfTemp(s.Base)
	}
}

// ----------------------------------------------------------------------
// Lvalue emission (spec.md §4.4 "lvalue emission").
// ----------------------------------------------------------------------

// genLvalue dispatches on n's class to produce the location it designates.
// Any class other than the ones listed in spec.md §4.4 is an internal
// error: the parser only ever builds an lvalue-position node from this set.
func (c *Context) genLvalue(n *ast.Node) (Lvalue, error) {
	switch n.Class {
	case ast.Ident:
		return c.genIdentLvalue(n)

	case ast.Subscript:
		baseV, err := c.genRvalue(n.Base())
		if err != nil {
			return nil, err
		}
		idxV, err := c.genRvalue(n.Index())
		if err != nil {
			return nil, err
		}
		sum, err := c.binArith("+", baseV, idxV, TypePointer)
		if err != nil {
			return nil, err
		}
		r, err := c.materialize(sum)
		if err != nil {
			return nil, err
		}
		return Stack{Base: r, Displ: 0, Typ: valueType(n.Typ)}, nil

	case ast.Member:
		if n.MemberIsArrow() {
			baseV, err := c.genRvalue(n.Base())
			if err != nil {
				return nil, err
			}
			r, err := c.materialize(baseV)
			if err != nil {
				return nil, err
			}
			off := n.Base().Typ.PointerElem().StructMemberOffset(n.MemberIndex())
			return Stack{Base: r, Displ: off, Typ: valueType(n.Typ)}, nil
		}
		baseLV, err := c.genLvalue(n.Base())
		if err != nil {
			return nil, err
		}
		base, ok := baseLV.(Stack)
		if !ok {
			return nil, fmt.Errorf("mipsgen: node_unexpected: member access on a register-resident base")
		}
		off := base.Displ + n.Base().Typ.StructMemberOffset(n.MemberIndex())
		return Stack{Base: base.Base, Displ: off, Typ: valueType(n.Typ)}, nil

	case ast.Indirection:
		v, err := c.genRvalue(n.Operand())
		if err != nil {
			return nil, err
		}
		r, err := c.materialize(v)
		if err != nil {
			return nil, err
		}
		return Stack{Base: r, Displ: 0, Typ: valueType(n.Typ)}, nil

	default:
		return nil, fmt.Errorf("mipsgen: node_unexpected: %s is not valid in lvalue position", n)
	}
}

// genIdentLvalue looks an identifier up in the current function's
// displacement table: locals and spilled parameters are $fp-relative Stack
// locations, integer parameters are register-resident, and anything not in
// the table is a global addressed by its own symbol name.
func (c *Context) genIdentLvalue(n *ast.Node) (Lvalue, error) {
	id := n.IdentID
	name := c.idents.GetSpelling(id)
	if c.idents.IsLocal(id) {
		e, ok := c.displ.lookup(name)
		if !ok {
			return nil, fmt.Errorf("mipsgen: identifier %q has no displacement slot", name)
		}
		if !e.onStack {
			return RegisterLV{Reg: e.reg, Typ: valueType(n.Typ)}, nil
		}
		return Stack{Base: c.rf.FP(), Displ: e.displ, Typ: valueType(n.Typ)}, nil
	}
	r := c.rf.Next(regfile.Int)
	c.out.LoadAddr(r.String(), name)
	return Stack{Base: r, Displ: 0, Typ: valueType(n.Typ)}, nil
}

// ----------------------------------------------------------------------
// Rvalue emission (spec.md §4.4 "rvalue emission").
// ----------------------------------------------------------------------

func (c *Context) genRvalue(n *ast.Node) (Rvalue, error) {
	switch n.Class {
	case ast.LiteralBool:
		b := 0
		if n.BoolVal {
			b = 1
		}
		return constInt(b, TypeInt), nil
	case ast.LiteralChar:
		return constInt(int(n.CharVal), TypeInt), nil
	case ast.LiteralInt:
		return constInt(n.IntVal, TypeInt), nil
	case ast.LiteralFloat:
		return constFloat(n.FloatVal), nil
	case ast.LiteralString:
		r := c.rf.Next(regfile.Int)
		c.out.LoadAddr(r.String(), c.stringSegmentLabel(n.StrIdx, 0))
		return rvalue(r, TypePointer), nil

	case ast.Ident, ast.Subscript, ast.Member, ast.Indirection:
		lv, err := c.genLvalue(n)
		if err != nil {
			return nil, err
		}
		v := c.loadLvalue(lv)
		c.freeLvalueBase(lv)
		return v, nil

	case ast.Addr:
		lv, err := c.genLvalue(n.Operand())
		if err != nil {
			return nil, err
		}
		s, ok := lv.(Stack)
		if !ok {
			return nil, fmt.Errorf("mipsgen: EXPR_INVALID: cannot take the address of a register-resident variable")
		}
		result := c.rf.Next(regfile.Int)
		c.out.Ins3("addi", result.String(), s.Base.String(), fmt.Sprintf("%d", s.Displ))
		c.freeLvalueBase(lv)
		return rvalue(result, TypePointer), nil

	case ast.Cast:
		return c.genCast(n)
	case ast.Unary:
		return c.genUnary(n)
	case ast.Binary:
		return c.genBinary(n)
	case ast.Assign:
		return c.genAssign(n)
	case ast.Ternary:
		return c.genTernary(n)
	case ast.Call:
		return c.genCall(n)

	default:
		return nil, fmt.Errorf("mipsgen: EXPR_INVALID: unexpected node %s in rvalue position", n)
	}
}

// genCast lowers spec.md §4.4's cast rule: char<->int is a type-tag no-op,
// int->float is `mtc1`+`cvt.s.w`, and (recovered from original_source/, not
// spelled out in spec.md's prose but required for a complete implementation)
// float->int is the symmetric `cvt.w.s`+`mfc1`.
func (c *Context) genCast(n *ast.Node) (Rvalue, error) {
	v, err := c.genRvalue(n.CastOperand())
	if err != nil {
		return nil, err
	}
	fromFloat := n.CastOperand().Typ.IsFloating()
	toFloat := n.Typ.IsFloating()
	if fromFloat == toFloat {
		switch k := v.(type) {
		case Const:
			k.Typ = valueType(n.Typ)
			return k, nil
		case RegisterRV:
			k.Typ = valueType(n.Typ)
			return k, nil
		default:
			return v, nil
		}
	}
	if toFloat {
		r, err := c.materialize(v)
		if err != nil {
			return nil, err
		}
		fr := c.rf.Next(regfile.Float)
		c.out.Ins2("mtc1", r.String(), fr.String())
		c.out.Ins2("cvt.s.w", fr.String(), fr.String())
		c.releaseOperand(v, r)
		return rvalue(fr, TypeFloat), nil
	}
	fr, err := c.ownRegister(v)
	if err != nil {
		return nil, err
	}
	r := c.rf.Next(regfile.Int)
	c.out.Ins2("cvt.w.s", fr.String(), fr.String())
	c.out.Ins2("mfc1", r.String(), fr.String())
	c.rf.FreeIfTemp(fr)
	return rvalue(r, TypeInt), nil
}

// genUnary lowers spec.md §4.4's unary operator set.
func (c *Context) genUnary(n *ast.Node) (Rvalue, error) {
	switch n.Operator() {
	case "++", "--":
		return c.genIncDec(n)
	case "-":
		return c.genNegate(n)
	case "~":
		return c.genComplement(n)
	case "!":
		return c.genNot(n)
	case "abs":
		return c.genAbs(n)
	default:
		return nil, fmt.Errorf("mipsgen: EXPR_INVALID: unknown unary operator %q", n.Operator())
	}
}

func (c *Context) genIncDec(n *ast.Node) (Rvalue, error) {
	lv, err := c.genLvalue(n.Operand())
	if err != nil {
		return nil, err
	}
	old := c.loadLvalue(lv)
	oldReg, err := c.materialize(old)
	if err != nil {
		return nil, err
	}
	t := lvType(lv)

	var resultReg regfile.Register
	if n.IsPostfix() {
		resultReg = c.rf.Next(classFor(t))
		c.moveReg(resultReg, oldReg)
	}

	if t == TypeFloat {
		one := c.rf.Next(regfile.Float)
		c.out.Write("\tli.s\t%s, 1.0\n", one.String())
		mnem := "add.s"
		if n.Operator() == "--" {
			mnem = "sub.s"
		}
		c.out.Ins3(mnem, oldReg.String(), oldReg.String(), one.String())
		c.rf.FreeIfTemp(one)
	} else {
		delta := 1
		if n.Operator() == "--" {
			delta = -1
		}
		c.out.Ins3("addi", oldReg.String(), oldReg.String(), fmt.Sprintf("%d", delta))
	}

	c.storeLvalue(lv, oldReg)
	c.freeLvalueBase(lv)

	if n.IsPostfix() {
		c.freeValue(old)
		return rvalue(resultReg, t), nil
	}
	return old, nil
}

func (c *Context) genNegate(n *ast.Node) (Rvalue, error) {
	v, err := c.genRvalue(n.Operand())
	if err != nil {
		return nil, err
	}
	r, err := c.materialize(v)
	if err != nil {
		return nil, err
	}
	if rvType(v) == TypeFloat {
		result := c.rf.Next(regfile.Float)
		c.out.Ins2("neg.s", result.String(), r.String())
		c.releaseOperand(v, r)
		return rvalue(result, TypeFloat), nil
	}
	result := c.rf.Next(regfile.Int)
	c.out.Ins3("sub", result.String(), "$zero", r.String())
	c.releaseOperand(v, r)
	return rvalue(result, TypeInt), nil
}

func (c *Context) genComplement(n *ast.Node) (Rvalue, error) {
	v, err := c.genRvalue(n.Operand())
	if err != nil {
		return nil, err
	}
	r, err := c.materialize(v)
	if err != nil {
		return nil, err
	}
	negOne := c.rf.Next(regfile.Int)
	c.out.LoadImm(negOne.String(), -1)
	result := c.rf.Next(regfile.Int)
	c.out.Ins3("xor", result.String(), r.String(), negOne.String())
	c.rf.FreeIfTemp(negOne)
	c.releaseOperand(v, r)
	return rvalue(result, TypeInt), nil
}

func (c *Context) genNot(n *ast.Node) (Rvalue, error) {
	v, err := c.genRvalue(n.Operand())
	if err != nil {
		return nil, err
	}
	r, err := c.materialize(v)
	if err != nil {
		return nil, err
	}
	result := c.rf.Next(regfile.Int)
	trueLabel := c.labels.new(labelIfElse)
	endLabel := c.labels.new(labelIfEnd)
	c.out.Branch1("beqz", r.String(), trueLabel)
	c.out.LoadImm(result.String(), 0)
	c.out.Jump(endLabel)
	c.out.Label(trueLabel)
	c.out.LoadImm(result.String(), 1)
	c.out.Label(endLabel)
	c.releaseOperand(v, r)
	return rvalue(result, TypeInt), nil
}

func (c *Context) genAbs(n *ast.Node) (Rvalue, error) {
	v, err := c.genRvalue(n.Operand())
	if err != nil {
		return nil, err
	}
	r, err := c.ownRegister(v)
	if err != nil {
		return nil, err
	}
	skip := c.labels.new(labelIfEnd)
	c.out.Branch1("bgez", r.String(), skip)
	c.out.Ins3("sub", r.String(), "$zero", r.String())
	c.out.Label(skip)
	return rvalue(r, TypeInt), nil
}

// genBinary lowers spec.md §4.4's binary operator set, dispatching
// short-circuit and comparison operators to their branchy lowerings before
// falling through to ordinary arithmetic/bitwise lowering.
func (c *Context) genBinary(n *ast.Node) (Rvalue, error) {
	switch n.Operator() {
	case "&&", "||":
		return c.genShortCircuit(n)
	case "<", ">", "<=", ">=", "==", "!=":
		return c.genCompare(n)
	}
	a, err := c.genRvalue(n.LHS())
	if err != nil {
		return nil, err
	}
	b, err := c.genRvalue(n.RHS())
	if err != nil {
		return nil, err
	}
	return c.binArith(n.Operator(), a, b, valueType(n.Typ))
}

func (c *Context) genShortCircuit(n *ast.Node) (Rvalue, error) {
	lhsV, err := c.genRvalue(n.LHS())
	if err != nil {
		return nil, err
	}
	r, err := c.ownRegister(lhsV)
	if err != nil {
		return nil, err
	}
	end := c.labels.new(labelIfEnd)
	if n.Operator() == "&&" {
		c.out.Branch1("beqz", r.String(), end)
	} else {
		c.out.Branch1("bnez", r.String(), end)
	}
	rhsV, err := c.genRvalue(n.RHS())
	if err != nil {
		return nil, err
	}
	rhsR, err := c.materialize(rhsV)
	if err != nil {
		return nil, err
	}
	c.moveReg(r, rhsR)
	c.releaseOperand(rhsV, rhsR)
	c.out.Label(end)
	return rvalue(r, TypeInt), nil
}

var compareBranch = map[string]string{
	"<": "bltz", ">": "bgtz", "<=": "blez", ">=": "bgez", "==": "beqz", "!=": "bnez",
}

// genCompare lowers spec.md §4.4's comparison rule and satisfies Testable
// Property #12: exactly two `li` instructions (materialising 0 then 1)
// bracketed by a single branch.
func (c *Context) genCompare(n *ast.Node) (Rvalue, error) {
	a, err := c.genRvalue(n.LHS())
	if err != nil {
		return nil, err
	}
	b, err := c.genRvalue(n.RHS())
	if err != nil {
		return nil, err
	}
	ra, err := c.materialize(a)
	if err != nil {
		return nil, err
	}
	rb, err := c.materialize(b)
	if err != nil {
		return nil, err
	}
	result := c.rf.Next(regfile.Int)
	c.out.Ins3("sub", result.String(), ra.String(), rb.String())
	c.releaseOperand(a, ra)
	c.releaseOperand(b, rb)

	branchOp, ok := compareBranch[n.Operator()]
	if !ok {
		return nil, fmt.Errorf("mipsgen: unknown comparison operator %q", n.Operator())
	}
	trueLabel := c.labels.new(labelIfElse)
	endLabel := c.labels.new(labelIfEnd)
	c.out.Branch1(branchOp, result.String(), trueLabel)
	c.out.LoadImm(result.String(), 0)
	c.out.Jump(endLabel)
	c.out.Label(trueLabel)
	c.out.LoadImm(result.String(), 1)
	c.out.Label(endLabel)
	return rvalue(result, TypeInt), nil
}

func (c *Context) genTernary(n *ast.Node) (Rvalue, error) {
	condV, err := c.genRvalue(n.Condition())
	if err != nil {
		return nil, err
	}
	condR, err := c.materialize(condV)
	if err != nil {
		return nil, err
	}
	elseLabel := c.labels.new(labelIfElse)
	endLabel := c.labels.new(labelIfEnd)
	c.out.Branch2("beq", condR.String(), "$zero", elseLabel)
	c.releaseOperand(condV, condR)

	result := c.rf.Next(classFor(valueType(n.Typ)))
	thenV, err := c.genRvalue(n.Then())
	if err != nil {
		return nil, err
	}
	thenR, err := c.materialize(thenV)
	if err != nil {
		return nil, err
	}
	c.moveReg(result, thenR)
	c.releaseOperand(thenV, thenR)
	c.out.Jump(endLabel)

	c.out.Label(elseLabel)
	elseV, err := c.genRvalue(n.Else())
	if err != nil {
		return nil, err
	}
	elseR, err := c.materialize(elseV)
	if err != nil {
		return nil, err
	}
	c.moveReg(result, elseR)
	c.releaseOperand(elseV, elseR)
	c.out.Label(endLabel)

	return rvalue(result, valueType(n.Typ)), nil
}

// genAssign lowers spec.md §4.4's assignment rule: plain `=` stores the
// rvalue directly; `OP=` loads the lvalue, applies OP, then stores back.
func (c *Context) genAssign(n *ast.Node) (Rvalue, error) {
	lv, err := c.genLvalue(n.LHS())
	if err != nil {
		return nil, err
	}

	var result Rvalue
	if n.Operator() == "=" {
		result, err = c.genRvalue(n.RHS())
		if err != nil {
			return nil, err
		}
	} else {
		cur := c.loadLvalue(lv)
		rhsV, err := c.genRvalue(n.RHS())
		if err != nil {
			return nil, err
		}
		baseOp := strings.TrimSuffix(n.Operator(), "=")
		result, err = c.binArith(baseOp, cur, rhsV, valueType(n.Typ))
		if err != nil {
			return nil, err
		}
	}

	srcReg, err := c.materialize(result)
	if err != nil {
		return nil, err
	}
	c.storeLvalue(lv, srcReg)
	c.freeLvalueBase(lv)
	if fromLV(result) {
		return result, nil
	}
	return rvalue(srcReg, valueType(n.Typ)), nil
}

// ----------------------------------------------------------------------
// Arithmetic helpers shared by genBinary and genAssign's compound forms.
// ----------------------------------------------------------------------

func pickLower(a, b regfile.Register) (lo, hi regfile.Register) {
	if a.Id() <= b.Id() {
		return a, b
	}
	return b, a
}

// binArith applies op to a and b, dispatching to the float or integer
// instruction forms per spec.md §4.4.
func (c *Context) binArith(op string, a, b Rvalue, t ValueType) (Rvalue, error) {
	if t == TypeFloat {
		return c.floatArith(op, a, b)
	}
	return c.intArith(op, a, b)
}

func (c *Context) floatArith(op string, a, b Rvalue) (Rvalue, error) {
	ra, err := c.ownRegister(a)
	if err != nil {
		return nil, err
	}
	rb, err := c.materialize(b)
	if err != nil {
		return nil, err
	}
	var mnem string
	switch op {
	case "+":
		mnem = "add.s"
	case "-":
		mnem = "sub.s"
	case "*":
		mnem = "mul.s"
	case "/":
		mnem = "div.s"
	default:
		return nil, fmt.Errorf("mipsgen: EXPR_INVALID: unsupported float operator %q", op)
	}
	c.out.Ins3(mnem, ra.String(), ra.String(), rb.String())
	c.releaseOperand(b, rb)
	return rvalue(ra, TypeFloat), nil
}

// intArith picks the immediate instruction form when one operand is a
// constant (per spec.md §4.4's documented exception: SUB/MUL/DIV/REM never
// use an immediate form, and SUB-by-constant is lowered directly as
// `addi reg, reg, -imm` — the DESIGN NOTES §9 redesigned behaviour; see
// DESIGN.md).
func (c *Context) intArith(op string, a, b Rvalue) (Rvalue, error) {
	switch op {
	case "+":
		return c.commutativeImm("addi", "add", a, b)
	case "&":
		return c.commutativeImm("andi", "and", a, b)
	case "|":
		return c.commutativeImm("ori", "or", a, b)
	case "^":
		return c.commutativeImm("xori", "xor", a, b)
	case "-":
		return c.subImm(a, b)
	case "*":
		return c.mulDivRem("mul", a, b, false)
	case "/":
		return c.mulDivRem("div", a, b, false)
	case "%":
		return c.mulDivRem("div", a, b, true)
	case "<<":
		return c.shift("sll", "sllv", a, b)
	case ">>":
		return c.shift("sra", "srav", a, b)
	default:
		return nil, fmt.Errorf("mipsgen: EXPR_INVALID: unsupported binary operator %q", op)
	}
}

// commutativeImm lowers a commutative operator: the immediate form when
// either operand is a constant, the register form otherwise. With two
// plain register operands, the lower-numbered one is reused for the result
// and the higher freed; when either is from_lvalue, a fresh temp takes the
// result so the variable's register is preserved (spec.md §4.4's
// register-allocation discipline).
func (c *Context) commutativeImm(immOp, regOp string, a, b Rvalue) (Rvalue, error) {
	if k, ok := b.(Const); ok {
		ra, err := c.materialize(a)
		if err != nil {
			return nil, err
		}
		result := c.rf.Next(regfile.Int)
		c.out.Ins3(immOp, result.String(), ra.String(), fmt.Sprintf("%d", k.Int))
		c.releaseOperand(a, ra)
		return rvalue(result, TypeInt), nil
	}
	if k, ok := a.(Const); ok {
		rb, err := c.materialize(b)
		if err != nil {
			return nil, err
		}
		result := c.rf.Next(regfile.Int)
		c.out.Ins3(immOp, result.String(), rb.String(), fmt.Sprintf("%d", k.Int))
		c.releaseOperand(b, rb)
		return rvalue(result, TypeInt), nil
	}
	ra, err := c.materialize(a)
	if err != nil {
		return nil, err
	}
	rb, err := c.materialize(b)
	if err != nil {
		return nil, err
	}
	if fromLV(a) || fromLV(b) {
		result := c.rf.Next(regfile.Int)
		c.out.Ins3(regOp, result.String(), ra.String(), rb.String())
		c.freeValue(a)
		c.freeValue(b)
		return rvalue(result, TypeInt), nil
	}
	lo, hi := pickLower(ra, rb)
	c.out.Ins3(regOp, lo.String(), ra.String(), rb.String())
	c.rf.FreeIfTemp(hi)
	return rvalue(lo, TypeInt), nil
}

func (c *Context) subImm(a, b Rvalue) (Rvalue, error) {
	if k, ok := b.(Const); ok {
		ra, err := c.materialize(a)
		if err != nil {
			return nil, err
		}
		result := c.rf.Next(regfile.Int)
		c.out.Ins3("addi", result.String(), ra.String(), fmt.Sprintf("%d", -k.Int))
		c.releaseOperand(a, ra)
		return rvalue(result, TypeInt), nil
	}
	ra, err := c.ownRegister(a)
	if err != nil {
		return nil, err
	}
	rb, err := c.materialize(b)
	if err != nil {
		return nil, err
	}
	c.out.Ins3("sub", ra.String(), ra.String(), rb.String())
	c.freeValue(b)
	return rvalue(ra, TypeInt), nil
}

// mulDivRem lowers `*`, `/` and `%`: spec.md §4.4 rules these out of the
// immediate-operand optimization, so both operands are always materialized
// first. `*` uses the `mul` pseudo-instruction directly into the kept
// register; `/` and `%` both go through `div` followed by `mflo`/`mfhi`.
func (c *Context) mulDivRem(mnem string, a, b Rvalue, wantRem bool) (Rvalue, error) {
	ra, err := c.ownRegister(a)
	if err != nil {
		return nil, err
	}
	rb, err := c.materialize(b)
	if err != nil {
		return nil, err
	}
	if mnem == "mul" {
		c.out.Ins3("mul", ra.String(), ra.String(), rb.String())
		c.releaseOperand(b, rb)
		return rvalue(ra, TypeInt), nil
	}
	c.out.Ins2("div", ra.String(), rb.String())
	if wantRem {
		c.out.Ins1("mfhi", ra.String())
	} else {
		c.out.Ins1("mflo", ra.String())
	}
	c.releaseOperand(b, rb)
	return rvalue(ra, TypeInt), nil
}

func (c *Context) shift(immOp, regOp string, a, b Rvalue) (Rvalue, error) {
	if k, ok := b.(Const); ok {
		ra, err := c.materialize(a)
		if err != nil {
			return nil, err
		}
		result := c.rf.Next(regfile.Int)
		c.out.Ins3(immOp, result.String(), ra.String(), fmt.Sprintf("%d", k.Int))
		c.releaseOperand(a, ra)
		return rvalue(result, TypeInt), nil
	}
	ra, err := c.ownRegister(a)
	if err != nil {
		return nil, err
	}
	rb, err := c.materialize(b)
	if err != nil {
		return nil, err
	}
	c.out.Ins3(regOp, ra.String(), ra.String(), rb.String())
	c.freeValue(b)
	return rvalue(ra, TypeInt), nil
}
