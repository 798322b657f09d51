package mipsgen

import "github.com/IsabelCoolIn/RuC/internal/mipsgen/regfile"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ValueType is the small type lattice codegen cares about when selecting
// instructions: just enough to decide integer vs. float vs. pointer.
type ValueType int

const (
	TypeInt ValueType = iota
	TypeFloat
	TypePointer
)

// Lvalue names a memory location or a register a value lives in. It is a
// closed sum: exactly Stack and RegisterLV implement it, and every consumer
// dispatches with an exhaustive type switch.
type Lvalue interface{ lvalueVariant() }

// Stack is an lvalue addressed as Base + Displ: a local or spilled
// parameter relative to $fp, a global behind its loaded symbol address, or
// a computed subscript/indirection target.
type Stack struct {
	Base  regfile.Register
	Displ int
	Typ   ValueType
}

// RegisterLV is a register-resident variable: reads and writes go straight
// to Reg, which is owned by the variable for the whole function and must
// never be returned to the temp pool.
type RegisterLV struct {
	Reg regfile.Register
	Typ ValueType
}

func (Stack) lvalueVariant()      {}
func (RegisterLV) lvalueVariant() {}

// Rvalue is a value produced by expression lowering. It is a closed sum of
// Const, RegisterRV and Void.
type Rvalue interface{ rvalueVariant() }

// Const is a literal that has not been loaded into a register yet; binary
// lowering inspects it to choose an immediate instruction form instead of
// spending a temp register on `li`.
type Const struct {
	Typ   ValueType
	Int   int
	Float float64
}

// RegisterRV is a value live in Reg. FromLvalue marks a register borrowed
// from a register-resident variable: the value may be read in place, but
// the register must not be overwritten or freed.
type RegisterRV struct {
	Reg        regfile.Register
	Typ        ValueType
	FromLvalue bool
}

// Void is the result of an operation that produced no value.
type Void struct{}

func (Const) rvalueVariant()      {}
func (RegisterRV) rvalueVariant() {}
func (Void) rvalueVariant()       {}

// ---------------------
// ----- Functions -----
// ---------------------

func rvalue(r regfile.Register, t ValueType) Rvalue { return RegisterRV{Reg: r, Typ: t} }

func constInt(n int, t ValueType) Rvalue { return Const{Typ: t, Int: n} }

func constFloat(f float64) Rvalue { return Const{Typ: TypeFloat, Float: f} }

func voidValue() Rvalue { return Void{} }

// rvType returns the value type of v. Void has none; callers never ask.
func rvType(v Rvalue) ValueType {
	switch k := v.(type) {
	case Const:
		return k.Typ
	case RegisterRV:
		return k.Typ
	default:
		return TypeInt
	}
}

// lvType returns the value type of the location lv names.
func lvType(lv Lvalue) ValueType {
	if k, ok := lv.(RegisterLV); ok {
		return k.Typ
	}
	return lv.(Stack).Typ
}

// fromLV reports whether v borrows a register-resident variable's register.
func fromLV(v Rvalue) bool {
	k, ok := v.(RegisterRV)
	return ok && k.FromLvalue
}
