package preproc

import "strings"

// scan drives the directive-dispatch loop over fr, writing expanded output
// to out. It recurses for #include and for macro-body rescans, each such
// recursion pushing a fresh frame rather than a fresh goroutine: spec.md §5
// requires the whole pass to run on one call stack.
func (p *Preprocessor) scan(fr *frame, out *strings.Builder) {
	lineRequired := true

	for !fr.eof() {
		if lineRequired {
			if p.tryDirectiveLine(fr, out) {
				lineRequired = true
				continue
			}
			lineRequired = false
		}

		r := fr.peek(0)
		switch {
		case r == '\n':
			out.WriteRune(fr.next())
			lineRequired = true

		case r == '\\' && fr.peek(1) == '\n':
			fr.next()
			fr.next()
			out.WriteRune('\n')

		case r == '/' && fr.peek(1) == '/':
			p.scanLineComment(fr, out)

		case r == '/' && fr.peek(1) == '*':
			if !p.scanBlockComment(fr, out) {
				return
			}

		case r == '"' || r == '\'':
			if !p.scanLiteral(fr, out) {
				return
			}

		case isIdentStart(r):
			p.scanIdentOrMacro(fr, out)

		default:
			out.WriteRune(fr.next())
		}
	}
}

// tryDirectiveLine looks ahead past leading blanks on the current line; if
// the first non-blank character is `#`, it consumes the line as a directive
// and reports true. Otherwise fr is left untouched and it reports false.
func (p *Preprocessor) tryDirectiveLine(fr *frame, out *strings.Builder) bool {
	save := fr.pos
	saveLoc := fr.loc
	for !fr.eof() && (fr.peek(0) == ' ' || fr.peek(0) == '\t') {
		fr.next()
	}
	if fr.eof() || fr.peek(0) != '#' {
		fr.pos = save
		fr.loc = saveLoc
		return false
	}
	fr.next() // Consume '#'.
	p.handleDirective(fr, out)
	return true
}

// scanLineComment replaces a `//` comment with spaces up to (excluding) the
// terminating newline, per spec.md §4.1's comment-erasure policy.
func (p *Preprocessor) scanLineComment(fr *frame, out *strings.Builder) {
	for !fr.eof() && fr.peek(0) != '\n' {
		fr.next()
		out.WriteByte(' ')
	}
}

// scanBlockComment consumes a `/* */` comment. A comment that stays on one
// physical line is preserved verbatim; one that spans lines is blanked out
// character-for-character so that line and column numbers of the text that
// follows are unaffected. Reports false (and stops the enclosing scan) if
// the comment runs off the end of input unterminated.
func (p *Preprocessor) scanBlockComment(fr *frame, out *strings.Builder) bool {
	start := fr.pos
	fr.next() // '/'
	fr.next() // '*'
	multiline := false
	for {
		if fr.eof() {
			p.report(&Error{Kind: CommentUnterminated, Loc: fr.diagLoc()})
			p.recoveryDisabled = true
			return false
		}
		if fr.peek(0) == '\n' {
			multiline = true
		}
		if fr.peek(0) == '*' && fr.peek(1) == '/' {
			fr.next()
			fr.next()
			break
		}
		fr.next()
	}
	if multiline {
		for i := start; i < fr.pos; i++ {
			if fr.runes[i] == '\n' {
				out.WriteByte('\n')
			} else {
				out.WriteByte(' ')
			}
		}
	} else {
		out.WriteString(string(fr.runes[start:fr.pos]))
	}
	return true
}

// scanLiteral copies a string or character literal through verbatim,
// respecting backslash escapes so an escaped quote does not end the literal
// early. Reports false (and stops the enclosing scan) if it is unterminated.
func (p *Preprocessor) scanLiteral(fr *frame, out *strings.Builder) bool {
	quote := fr.peek(0)
	out.WriteRune(fr.next())
	for {
		if fr.eof() || fr.peek(0) == '\n' {
			p.report(&Error{Kind: StringUnterminated, Loc: fr.diagLoc()})
			p.recoveryDisabled = true
			return false
		}
		if fr.peek(0) == '\\' && fr.peek(1) != 0 {
			out.WriteRune(fr.next())
			out.WriteRune(fr.next())
			continue
		}
		if fr.peek(0) == quote {
			out.WriteRune(fr.next())
			return true
		}
		out.WriteRune(fr.next())
	}
}
