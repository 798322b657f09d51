package mipsgen

import "github.com/IsabelCoolIn/RuC/internal/mipsgen/regfile"

// FuncDisplPreserved is the fixed displacement, in bytes, a function
// prologue reserves below the incoming $sp for saved registers before any
// local variables. The named slots below, $ra (4) + $sp (4) +
// $fs0,$fs2,$fs4,$fs6,$fs8 (5*4) + $s0..$s7 (8*4) + $a0..$a3 (4*4), take
// its top 76 bytes (-4 through -76); the last 8 bytes (-80, -84) are
// unused, so the first local sits at -88.
const FuncDisplPreserved = 84

// Fixed, named offsets within the preserved area, relative to this
// function's own $fp (which the prologue points at the incoming $sp, the
// top of the frame). Unlike locals (which grow the frame via
// displTable.reserve), these never move: every function saves/restores the
// same registers at the same displacements.
const (
	DisplRA  = -4
	DisplSP  = -8
	displFS0 = -12 // $fs0, $fs2, $fs4, $fs6, $fs8 follow at -12, -16, -20, -24, -28.
	displS0  = -32 // $s0..$s7 follow at -32, -36, ..., -60.
	displA0  = -64 // $a0..$a3 follow at -64, -68, -72, -76.
)

// DisplFS returns the displacement of the i'th saved callee-even float
// register (i in [0,5)).
func DisplFS(i int) int { return displFS0 - 4*i }

// DisplS returns the displacement of saved $s<i> (i in [0,8)).
func DisplS(i int) int { return displS0 - 4*i }

// DisplA returns the displacement of saved $a<i> (i in [0,4)).
func DisplA(i int) int { return displA0 - 4*i }

// stackAlign is the byte alignment MIPS32 stack frames round up to.
const stackAlign = 8

// alignUp rounds n up to the next multiple of a.
func alignUp(n, a int) int {
	if r := n % a; r != 0 {
		return n + (a - r)
	}
	return n
}

// displEntry records where one identifier lives for the duration of the
// current function: either at a byte displacement from $fp (onStack), or
// resident in a named register (integer parameters, which stay live in
// $a0..$a3).
type displEntry struct {
	onStack bool
	displ   int
	reg     regfile.Register
}

// displTable maps a function's identifiers (parameters and locals) to their
// location. Entries are added when a declaration or parameter is visited
// and never removed until the function ends.
type displTable struct {
	entries  map[string]displEntry
	maxDispl int // High-water mark of bytes claimed by locals, always >=0.
}

func newDisplTable() *displTable {
	return &displTable{entries: make(map[string]displEntry)}
}

// reserve claims a size-byte slot for name, aligned to a word, and returns
// its displacement: the address of the slot's first (most negative) word.
// A multi-word reservation (a struct larger than one word) occupies offset,
// offset+4, ..., in ascending address order.
func (d *displTable) reserve(name string, size int) int {
	if size < 4 {
		size = 4
	}
	d.maxDispl = alignUp(d.maxDispl+size, 4)
	off := -(FuncDisplPreserved + d.maxDispl)
	d.entries[name] = displEntry{onStack: true, displ: off}
	return off
}

// bindStack records name as living at a fixed frame displacement without
// growing the locals area (used for parameters spilled to their
// preserved-area slots).
func (d *displTable) bindStack(name string, displ int) {
	d.entries[name] = displEntry{onStack: true, displ: displ}
}

// bindRegister records name as register-resident: reads and writes go
// straight to r, and the allocator must never reclaim it.
func (d *displTable) bindRegister(name string, r regfile.Register) {
	d.entries[name] = displEntry{reg: r}
}

// lookup returns the location previously recorded for name.
func (d *displTable) lookup(name string) (displEntry, bool) {
	e, ok := d.entries[name]
	return e, ok
}
