package mipsgen

import (
	"fmt"
	"strings"

	"github.com/IsabelCoolIn/RuC/internal/ast"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// stringPool holds every literal string of the translation unit, each split
// into the segments spec.md §4.3 describes: a source string containing k
// `%x` format conversions splits into k+1 segments, one per conversion (the
// segment ends right after the specifier) plus a trailing tail. A plain
// string with no conversions is a single segment, addressed the same way a
// would-be printf format string's tail segment is.
type stringPool struct {
	segments [][]string // segments[i] is original string i's segments, in order.
}

// ---------------------
// ----- Functions -----
// ---------------------

// buildStringPool splits every entry of tbl into its printf-conversion
// segments.
func buildStringPool(tbl *ast.StringTable) *stringPool {
	p := &stringPool{segments: make([][]string, tbl.Amount())}
	for i := 0; i < tbl.Amount(); i++ {
		p.segments[i] = splitFormatSegments(tbl.Get(i))
	}
	return p
}

// amount returns the number of original strings in the pool, the stride
// used when computing a segment's label per spec.md §4.3
// (`STRING<i + j*amount>`).
func (p *stringPool) amount() int { return len(p.segments) }

// segmentCount returns the number of segments string i was split into.
func (p *stringPool) segmentCount(i int) int { return len(p.segments[i]) }

// segmentLabel returns the assembler label addressing the j'th segment of
// original string i.
func (p *stringPool) segmentLabel(i, j int) string {
	return fmt.Sprintf("STRING%d", i+j*p.amount())
}

// stringSegmentLabel is the Context-bound convenience genRvalue's
// LiteralString case uses to address a plain (non-printf) string literal:
// its first segment, which for a string with no format specifiers is the
// whole string.
func (c *Context) stringSegmentLabel(idx, seg int) string { return c.pool.segmentLabel(idx, seg) }

// splitFormatSegments implements spec.md §4.3's string-pool split: walk s,
// and every time a `%` is immediately followed by a conversion letter, cut
// the segment right after that letter. The trailing remainder, possibly
// empty, is always appended as the final segment so every original string
// keeps at least one segment.
func splitFormatSegments(s string) []string {
	var segs []string
	var cur strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] == '%' && i+1 < len(runes) && isConversionLetter(runes[i+1]) {
			cur.WriteRune(runes[i+1])
			i++
			segs = append(segs, cur.String())
			cur.Reset()
		}
	}
	segs = append(segs, cur.String())
	return segs
}

func isConversionLetter(r rune) bool {
	switch r {
	case 'd', 'i', 'u', 'x', 'X', 'o', 'f', 'e', 'g', 's', 'c', 'p':
		return true
	default:
		return false
	}
}

// emitStringPool writes every segment of every string in p as a null
// terminated `.ascii`-family literal under its computed label, escaping
// embedded newlines the way the original implementation's stringify path
// does (recovered from original_source/, see SPEC_FULL.md §6).
func emitStringPool(w *writer, p *stringPool) {
	for i, segs := range p.segments {
		for j, seg := range segs {
			w.Label(p.segmentLabel(i, j))
			w.Write("\t.asciiz\t%q\n", seg)
		}
	}
}
