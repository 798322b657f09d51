package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeSize(t *testing.T) {
	intT := &Type{Class: Int}
	tests := []struct {
		name string
		typ  *Type
		want int
	}{
		{"int", intT, 4},
		{"char promotes to a word", &Type{Class: Char}, 4},
		{"pointer", &Type{Class: Pointer, Elem: intT}, 4},
		{"array", &Type{Class: Array, Elem: intT, Len: 5}, 20},
		{"nested array", &Type{Class: Array, Elem: &Type{Class: Array, Elem: intT, Len: 2}, Len: 3}, 24},
		{"struct", &Type{Class: Struct, Members: []*Type{intT, &Type{Class: Float}, intT}}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Size())
		})
	}
}

func TestStructMemberOffset(t *testing.T) {
	intT := &Type{Class: Int}
	s := &Type{Class: Struct, Members: []*Type{intT, &Type{Class: Array, Elem: intT, Len: 2}, intT}}
	assert.Equal(t, 0, s.StructMemberOffset(0))
	assert.Equal(t, 4, s.StructMemberOffset(1))
	assert.Equal(t, 12, s.StructMemberOffset(2))
}

func TestIdentTable(t *testing.T) {
	tbl := NewIdentTable()
	intT := &Type{Class: Int}
	g := tbl.Declare("g", intT, false)
	l := tbl.Declare("l", intT, true)

	assert.False(t, tbl.IsLocal(g))
	assert.True(t, tbl.IsLocal(l))
	assert.Equal(t, "g", tbl.GetSpelling(g))
	assert.Same(t, intT, tbl.GetType(l))
}

func TestStringTable_InternDeduplicates(t *testing.T) {
	tbl := NewStringTable()
	a := tbl.Intern("x")
	b := tbl.Intern("y")
	assert.Equal(t, a, tbl.Intern("x"))
	assert.Equal(t, 2, tbl.Amount())
	assert.Equal(t, "y", tbl.Get(b))
}
