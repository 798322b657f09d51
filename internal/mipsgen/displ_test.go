package mipsgen

import (
	"testing"

	"github.com/IsabelCoolIn/RuC/internal/mipsgen/regfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplTable_ReserveStacksDownward(t *testing.T) {
	d := newDisplTable()
	first := d.reserve("x", 4)
	second := d.reserve("y", 4)

	assert.Equal(t, -(FuncDisplPreserved + 4), first)
	assert.Equal(t, -(FuncDisplPreserved + 8), second)
	assert.Equal(t, 8, d.maxDispl)
}

func TestDisplTable_SubWordRoundsUp(t *testing.T) {
	d := newDisplTable()
	d.reserve("c", 1)
	assert.Equal(t, 4, d.maxDispl, "chars still claim a full word")
}

func TestDisplTable_Lookup(t *testing.T) {
	d := newDisplTable()
	off := d.reserve("x", 4)

	got, ok := d.lookup("x")
	require.True(t, ok)
	assert.True(t, got.onStack)
	assert.Equal(t, off, got.displ)

	_, ok = d.lookup("never")
	assert.False(t, ok)
}

func TestDisplTable_BindRegister(t *testing.T) {
	d := newDisplTable()
	f := regfile.New()
	d.bindRegister("a", f.GetI(regfile.A0))

	got, ok := d.lookup("a")
	require.True(t, ok)
	assert.False(t, got.onStack)
	assert.Equal(t, "$a0", got.reg.String())
	assert.Equal(t, 0, d.maxDispl, "register binding claims no frame bytes")
}

func TestDisplTable_BindStack(t *testing.T) {
	d := newDisplTable()
	d.bindStack("a", DisplA(1))

	got, ok := d.lookup("a")
	require.True(t, ok)
	assert.True(t, got.onStack)
	assert.Equal(t, -68, got.displ)
	assert.Equal(t, 0, d.maxDispl)
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, 0, alignUp(0, 8))
	assert.Equal(t, 8, alignUp(1, 8))
	assert.Equal(t, 8, alignUp(8, 8))
	assert.Equal(t, 16, alignUp(9, 8))
}

// The preserved area is 84 bytes; its named slots ($ra + $sp + five even $fs
// registers + $s0..$s7 + $a0..$a3) fill its top 76 bytes, down to -76.
func TestFuncDisplPreservedLayout(t *testing.T) {
	assert.Equal(t, 84, FuncDisplPreserved)
	assert.Equal(t, -4, DisplRA)
	assert.Equal(t, -8, DisplSP)
	assert.Equal(t, -12, DisplFS(0))
	assert.Equal(t, -28, DisplFS(4))
	assert.Equal(t, -32, DisplS(0))
	assert.Equal(t, -60, DisplS(7))
	assert.Equal(t, -64, DisplA(0))
	assert.Equal(t, -76, DisplA(3))
}
