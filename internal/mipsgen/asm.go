package mipsgen

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// writer accumulates assembler text for one translation unit. It plays the
// role the teacher's util.Writer plays for its threaded backend, but backed
// by a single strings.Builder with no channel hookup: spec.md's codegen pass
// runs on one call stack, so there is nothing to fan writes in from.
type writer struct {
	sb strings.Builder
}

// ---------------------
// ----- Functions -----
// ---------------------

// Write appends a formatted line.
func (w *writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// WriteString appends s verbatim.
func (w *writer) WriteString(s string) { w.sb.WriteString(s) }

// Label writes a "name:" label line.
func (w *writer) Label(name string) { w.sb.WriteString(name + ":\n") }

// Ins1 writes a one-operand instruction.
func (w *writer) Ins1(op, a string) { w.Write("\t%s\t%s\n", op, a) }

// Ins2 writes a two-operand instruction.
func (w *writer) Ins2(op, a, b string) { w.Write("\t%s\t%s, %s\n", op, a, b) }

// Ins2Imm writes a two-register instruction with a trailing immediate.
func (w *writer) Ins2Imm(op, a, b string, imm int) { w.Write("\t%s\t%s, %s, %d\n", op, a, b, imm) }

// Ins3 writes a three-operand instruction.
func (w *writer) Ins3(op, a, b, c string) { w.Write("\t%s\t%s, %s, %s\n", op, a, b, c) }

// LoadStore writes a `op reg, offset(base)` line, e.g. `lw $t0, -8($fp)`.
func (w *writer) LoadStore(op, reg string, offset int, base string) {
	w.Write("\t%s\t%s, %d(%s)\n", op, reg, offset, base)
}

// Nop writes a delay-slot no-op.
func (w *writer) Nop() { w.sb.WriteString("\tnop\n") }

// Branch2 writes a two-register branch, e.g. `beq $t0, $t1, LIFEND3`.
func (w *writer) Branch2(op, a, b, label string) { w.Write("\t%s\t%s, %s, %s\n", op, a, b, label) }

// Branch1 writes a one-register branch, e.g. `bltz $t0, LIFEND3`.
func (w *writer) Branch1(op, a, label string) { w.Write("\t%s\t%s, %s\n", op, a, label) }

// Jump writes an unconditional jump.
func (w *writer) Jump(label string) { w.Write("\tj\t%s\n", label) }

// JumpLink writes a `jal` call instruction, always followed by a delay-slot
// nop per MIPS32 branch-delay semantics.
func (w *writer) JumpLink(label string) {
	w.Write("\tjal\t%s\n", label)
	w.Nop()
}

// LoadImm writes `li reg, n`.
func (w *writer) LoadImm(reg string, n int) { w.Write("\tli\t%s, %d\n", reg, n) }

// LoadAddr loads the address of label into reg via the lui/addiu pair
// spec.md §4.5 calls for, rather than the `la` pseudo-instruction, so the
// two real instructions are visible in the emitted text.
func (w *writer) LoadAddr(reg, label string) {
	w.Write("\tlui\t%s, %%hi(%s)\n", reg, label)
	w.Write("\taddiu\t%s, %s, %%lo(%s)\n", reg, reg, label)
}

// String returns the accumulated assembler text.
func (w *writer) String() string { return w.sb.String() }
