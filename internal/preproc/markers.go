package preproc

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Functions -----------
// ----------------------------

// argMarker returns the substitution marker for the macro-expanded form of
// parameter i of macro name.
func argMarker(name string, i int) string { return fmt.Sprintf("__ARG_%s_%d__", name, i) }

// strMarker returns the substitution marker for the stringified form of
// parameter i of macro name.
func strMarker(name string, i int) string { return fmt.Sprintf("__STR_%s_%d__", name, i) }

// tkpMarker returns the substitution marker for the token-paste form of
// parameter i of macro name. The leading `#` is the internal signal that
// this marker must be spliced in without an intervening space.
func tkpMarker(name string, i int) string { return fmt.Sprintf("#__TKP_%s_%d__", name, i) }

// paramIndex returns the index of pname in params, or -1 if pname is not a
// formal parameter.
func paramIndex(params []string, pname string) int {
	for i, p := range params {
		if p == pname {
			return i
		}
	}
	return -1
}

// lowerBody rewrites a macro's raw replacement-list text, replacing
// references to formal parameters with __ARG_/__STR_/#__TKP_ markers and
// resolving `#`/`##` operators, per spec.md §4.2.
func lowerBody(name string, params []string, raw string) (string, error) {
	toks := tokenizeBody(raw)

	// Pieces concatenate directly: whitespace around `##` is dropped before
	// it ever becomes a piece, and a paste marker's own `#` prefix carries
	// the splice-without-space signal through expansion.
	var pieces []string

	appendLit := func(text string) {
		pieces = append(pieces, text)
	}

	i := 0
	n := len(toks)
	for i < n {
		t := toks[i]
		switch t.kind {
		case tokWS:
			// Drop whitespace directly preceding a `##`; otherwise keep a
			// single separating space.
			j := i + 1
			for j < n && toks[j].kind == tokWS {
				j++
			}
			if j < n && toks[j].kind == tokHashHash {
				i = j
				continue
			}
			appendLit(" ")
			i++
		case tokHash:
			j := i + 1
			for j < n && toks[j].kind == tokWS {
				j++
			}
			if j >= n || toks[j].kind != tokIdent || paramIndex(params, toks[j].text) < 0 {
				return "", &Error{Kind: HashNotFollowed}
			}
			idx := paramIndex(params, toks[j].text)
			appendLit(strMarker(name, idx))
			i = j + 1
		case tokHashHash:
			if len(pieces) == 0 {
				return "", &Error{Kind: HashOnEdge}
			}
			j := i + 1
			for j < n && toks[j].kind == tokWS {
				j++
			}
			if j >= n {
				return "", &Error{Kind: HashOnEdge}
			}
			// Convert the left operand (last emitted piece) to a paste form
			// if it was a parameter reference.
			if idx := identPieceParam(pieces[len(pieces)-1], name, params); idx >= 0 {
				pieces[len(pieces)-1] = tkpMarker(name, idx)
			}
			right := toks[j]
			if right.kind == tokIdent {
				if idx := paramIndex(params, right.text); idx >= 0 {
					appendLit(tkpMarker(name, idx))
					i = j + 1
					continue
				}
			}
			appendLit(right.text)
			i = j + 1
		case tokIdent:
			if idx := paramIndex(params, t.text); idx >= 0 {
				appendLit(argMarker(name, idx))
			} else {
				appendLit(t.text)
			}
			i++
		default:
			appendLit(t.text)
			i++
		}
	}

	return strings.Join(pieces, ""), nil
}

// identPieceParam reports, for a piece whose text is exactly an __ARG_
// marker for name, which parameter index it refers to; -1 otherwise. This
// lets `##` convert an already-emitted plain parameter reference into a
// paste-form reference without re-tokenizing.
func identPieceParam(text, name string, params []string) int {
	for i := range params {
		if text == argMarker(name, i) {
			return i
		}
	}
	return -1
}
