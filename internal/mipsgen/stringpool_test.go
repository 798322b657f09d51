package mipsgen

import (
	"testing"

	"github.com/IsabelCoolIn/RuC/internal/ast"
	"github.com/stretchr/testify/assert"
)

func TestSplitFormatSegments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"no conversions", "hello", []string{"hello"}},
		{"single trailing", "%d", []string{"%d", ""}},
		{"conversion plus tail", "%d\n", []string{"%d", "\n"}},
		{"interleaved", "a%db%sc", []string{"a%d", "b%s", "c"}},
		{"literal percent", "100%!", []string{"100%!"}},
		{"empty", "", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitFormatSegments(tt.in))
		})
	}
}

// Segment labels follow the STRING<i + j*amount> addressing scheme: the j'th
// segment of the i'th string strides by the total string count.
func TestSegmentLabels(t *testing.T) {
	tbl := ast.NewStringTable()
	tbl.Intern("%d\n")  // Index 0, two segments.
	tbl.Intern("plain") // Index 1, one segment.

	p := buildStringPool(tbl)
	assert.Equal(t, 2, p.amount())
	assert.Equal(t, 2, p.segmentCount(0))
	assert.Equal(t, 1, p.segmentCount(1))
	assert.Equal(t, "STRING0", p.segmentLabel(0, 0))
	assert.Equal(t, "STRING2", p.segmentLabel(0, 1))
	assert.Equal(t, "STRING1", p.segmentLabel(1, 0))
}

func TestEmitStringPool(t *testing.T) {
	tbl := ast.NewStringTable()
	tbl.Intern("hi\n")

	w := &writer{}
	emitStringPool(w, buildStringPool(tbl))
	assert.Equal(t, "STRING0:\n\t.asciiz\t\"hi\\n\"\n", w.String())
}
