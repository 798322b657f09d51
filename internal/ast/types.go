// Package ast defines the syntax tree, type system and symbol tables consumed
// by the code generator. The lexer and parser that build these structures are
// an external collaborator and are not part of this module; this package is
// the contract the backend queries through.
package ast

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// TypeClass differentiates the kinds of type a Type can describe.
type TypeClass int

// Type describes a RuC value's type: a scalar, an array, a structure, a
// pointer or a function signature.
type Type struct {
	Class   TypeClass
	Elem    *Type   // Element type for Array and Pointer.
	Len     int     // Number of elements, for Array.
	Members []*Type // Member types, in declaration order, for Struct.
	Params  []*Type // Parameter types, for Function.
	Ret     *Type   // Return type, for Function.
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	Void TypeClass = iota
	Bool
	Char
	Int
	Float
	String
	Array
	Struct
	Pointer
	Function
)

// sizeof gives the storage size, in bytes, of every scalar class on the
// MIPS32 SYSV target. Char and Bool are promoted to a full word when stored,
// matching the teacher's single-word-per-local convention.
var sizeof = [...]int{
	Void:    0,
	Bool:    4,
	Char:    4,
	Int:     4,
	Float:   4,
	String:  4, // Pointer into the string pool.
	Pointer: 4,
}

// ---------------------
// ----- Functions -----
// ---------------------

// IsFloating reports whether t is the single-precision float type.
func (t *Type) IsFloating() bool { return t.Class == Float }

// IsArray reports whether t is an array type.
func (t *Type) IsArray() bool { return t.Class == Array }

// IsStructure reports whether t is a structure type.
func (t *Type) IsStructure() bool { return t.Class == Struct }

// IsPointer reports whether t is a pointer type.
func (t *Type) IsPointer() bool { return t.Class == Pointer }

// IsScalar reports whether t is a type that fits in a single register: bool,
// char, int, float, string index or pointer.
func (t *Type) IsScalar() bool {
	switch t.Class {
	case Bool, Char, Int, Float, String, Pointer:
		return true
	default:
		return false
	}
}

// GetClass returns the TypeClass tag of t.
func (t *Type) GetClass() TypeClass { return t.Class }

// Size returns the storage size of t in bytes. Struct size is the sum of its
// member sizes; array size is element size times length.
func (t *Type) Size() int {
	switch t.Class {
	case Array:
		return t.Elem.Size() * t.Len
	case Struct:
		n := 0
		for _, m := range t.Members {
			n += m.Size()
		}
		return n
	default:
		return sizeof[t.Class]
	}
}

// PointerElem returns the element type of a pointer (or array-decayed
// pointer) type t.
func (t *Type) PointerElem() *Type { return t.Elem }

// StructMemberType returns the type of the i'th member (zero indexed) of
// structure type t.
func (t *Type) StructMemberType(i int) *Type { return t.Members[i] }

// StructMemberAmount returns the number of members declared in structure
// type t.
func (t *Type) StructMemberAmount() int { return len(t.Members) }

// StructMemberOffset returns the byte offset of the i'th member from the
// start of the structure, the sum of the sizes of the preceding members.
func (t *Type) StructMemberOffset(i int) int {
	off := 0
	for j := 0; j < i; j++ {
		off += t.Members[j].Size()
	}
	return off
}

// FuncReturnType returns the return type of a function type t.
func (t *Type) FuncReturnType() *Type { return t.Ret }

// FuncParameterAmount returns the number of parameters of a function type t.
func (t *Type) FuncParameterAmount() int { return len(t.Params) }

// String renders a human readable form of t, used in diagnostics.
func (t *Type) String() string {
	switch t.Class {
	case Array:
		return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
	case Pointer:
		return fmt.Sprintf("*%s", t.Elem)
	case Struct:
		return "struct"
	case Function:
		return fmt.Sprintf("func(...)->%s", t.Ret)
	default:
		return typeNames[t.Class]
	}
}

var typeNames = [...]string{
	Void: "void", Bool: "bool", Char: "char", Int: "int", Float: "float",
	String: "string", Array: "array", Struct: "struct", Pointer: "pointer",
	Function: "function",
}
