package preproc

import (
	"strings"

	"github.com/IsabelCoolIn/RuC/internal/linker"
)

// ----------------------------
// ----- Functions -----------
// ----------------------------

// handleDirective is invoked with fr positioned just after the `#` that
// introduced the directive. It reads the directive keyword, dispatches to
// the matching handler, and consumes the remainder of the line.
func (p *Preprocessor) handleDirective(fr *frame, out *strings.Builder) {
	skipBlank(fr)
	if !isIdentStart(fr.peek(0)) {
		// `#` followed by anything but a letter is a stray character, not a
		// misspelled directive.
		p.report(&Error{Kind: CharacterStray, Loc: fr.diagLoc()})
		for !fr.eof() && fr.peek(0) != '\n' {
			fr.next()
		}
		if !fr.eof() {
			out.WriteRune(fr.next())
		}
		return
	}
	name := readIdent(fr)
	switch name {
	case "define":
		p.handleDefine(fr)
	case "set":
		p.handleSet(fr)
	case "undef":
		p.handleUndef(fr)
	case "include":
		p.handleInclude(fr, out)
	case "line":
		p.report(&Error{Kind: DirectiveLineSkipped, Loc: fr.diagLoc()})
	default:
		p.report(&Error{Kind: DirectiveInvalid, Loc: fr.diagLoc(), Message: name})
	}
	// A directive line is blanked rather than deleted outright, so that line
	// numbers downstream keep matching the physical source.
	for !fr.eof() && fr.peek(0) != '\n' {
		fr.next()
	}
	if !fr.eof() {
		out.WriteRune(fr.next())
	}
}

// handleDefine implements `#define NAME [(p1,...,pk)] BODY`.
func (p *Preprocessor) handleDefine(fr *frame) {
	name, params, body, ok := p.parseMacroIntroducer(fr)
	if !ok {
		return
	}
	lowered, err := lowerBody(name, params, body)
	if err != nil {
		if e, isE := err.(*Error); isE {
			e.Loc = fr.diagLoc()
			p.report(e)
		}
		return
	}
	if err := p.Store.Define(name, params, lowered); err != nil {
		if e, isE := err.(*Error); isE {
			e.Loc = fr.diagLoc()
			p.report(e)
		}
	}
}

// handleSet implements `#set NAME [(p1,...,pk)] BODY`.
func (p *Preprocessor) handleSet(fr *frame) {
	name, params, body, ok := p.parseMacroIntroducer(fr)
	if !ok {
		return
	}
	lowered, err := lowerBody(name, params, body)
	if err != nil {
		if e, isE := err.(*Error); isE {
			e.Loc = fr.diagLoc()
			p.report(e)
		}
		return
	}
	p.Store.Set(name, params, lowered)
}

// handleUndef implements `#undef NAME`.
func (p *Preprocessor) handleUndef(fr *frame) {
	skipBlank(fr)
	if fr.eof() || fr.peek(0) == '\n' {
		p.report(&Error{Kind: DirectiveNameNon, Loc: fr.diagLoc()})
		return
	}
	if !isIdentStart(fr.peek(0)) {
		p.report(&Error{Kind: MacroNameFirstCharacter, Loc: fr.diagLoc()})
		return
	}
	name := readIdent(fr)
	if existed := p.Store.Undef(name); !existed {
		p.report(&Error{Kind: MacroNameUndefined, Loc: fr.diagLoc(), Message: name})
	}
	p.checkExtraTokens(fr)
}

// handleInclude implements `#include "path"` and `#include <path>`.
func (p *Preprocessor) handleInclude(fr *frame, out *strings.Builder) {
	skipBlank(fr)
	opener := fr.peek(0)
	var closer rune
	var internal bool
	switch opener {
	case '"':
		closer = '"'
		internal = true
	case '<':
		closer = '>'
		internal = false
	default:
		p.report(&Error{Kind: IncludeExpectsFilename, Loc: fr.diagLoc()})
		return
	}
	fr.next() // Consume opener.
	var b strings.Builder
	for !fr.eof() && fr.peek(0) != closer && fr.peek(0) != '\n' {
		b.WriteRune(fr.next())
	}
	if fr.eof() || fr.peek(0) != closer {
		p.report(&Error{Kind: IncludeExpectsFilename, Loc: fr.diagLoc()})
		return
	}
	fr.next() // Consume closer.
	path := b.String()

	if p.includeDepth >= p.Limits.MaxIncludeDepth {
		p.report(&Error{Kind: IncludeDepth, Loc: fr.diagLoc(), Message: path})
		return
	}

	var hidx linker.HeaderIndex
	var found bool
	if internal {
		hidx, found = p.Resolver.SearchInternal(path)
	} else {
		hidx, found = p.Resolver.SearchExternal(path)
	}
	if !found {
		p.report(&Error{Kind: IncludeNoSuchFile, Loc: fr.diagLoc(), Message: path})
		return
	}

	scanner, name, err := p.Resolver.AddHeader(hidx)
	if err != nil {
		p.report(&Error{Kind: IncludeNoSuchFile, Loc: fr.diagLoc(), Message: path})
		return
	}
	var src strings.Builder
	for {
		r, _, rerr := scanner.ReadRune()
		if rerr != nil {
			break
		}
		src.WriteRune(r)
	}

	p.includeDepth++
	child := newFrame(name, src.String(), fr.diagLoc(), true)
	p.scan(child, out)
	p.includeDepth--

	p.checkExtraTokens(fr)
}

// parseMacroIntroducer parses the shared `NAME [(p1,...,pk)] BODY` syntax of
// #define and #set, returning ok=false if a fatal error was already reported.
func (p *Preprocessor) parseMacroIntroducer(fr *frame) (name string, params []string, body string, ok bool) {
	skipBlank(fr)
	if fr.eof() || fr.peek(0) == '\n' {
		// The directive keyword was the last token on the line: there is no
		// name at all, a different failure from a bad first character.
		p.report(&Error{Kind: DirectiveNameNon, Loc: fr.diagLoc()})
		return "", nil, "", false
	}
	if !isIdentStart(fr.peek(0)) {
		p.report(&Error{Kind: MacroNameFirstCharacter, Loc: fr.diagLoc()})
		return "", nil, "", false
	}
	name = readIdent(fr)

	if fr.peek(0) == '(' {
		fr.next()
		seen := map[string]bool{}
		for {
			skipBlank(fr)
			if fr.eof() || fr.peek(0) == '\n' {
				p.report(&Error{Kind: ArgsExpectedBracket, Loc: fr.diagLoc(), Message: name})
				return "", nil, "", false
			}
			if fr.peek(0) == ')' {
				fr.next()
				break
			}
			if !isIdentStart(fr.peek(0)) {
				p.report(&Error{Kind: ArgsExpectedName, Loc: fr.diagLoc()})
				return "", nil, "", false
			}
			pname := readIdent(fr)
			if seen[pname] {
				p.report(&Error{Kind: ArgsDuplicate, Loc: fr.diagLoc(), Message: pname})
				return "", nil, "", false
			}
			seen[pname] = true
			params = append(params, pname)
			skipBlank(fr)
			if fr.eof() || fr.peek(0) == '\n' {
				p.report(&Error{Kind: ArgsExpectedBracket, Loc: fr.diagLoc(), Message: name})
				return "", nil, "", false
			}
			if fr.peek(0) == ')' {
				fr.next()
				break
			}
			if fr.peek(0) != ',' {
				p.report(&Error{Kind: ArgsExpectedComma, Loc: fr.diagLoc()})
				return "", nil, "", false
			}
			fr.next()
		}
	}

	// The rest of the line is the raw body.
	skipBlank(fr)
	var b strings.Builder
	for !fr.eof() && fr.peek(0) != '\n' {
		b.WriteRune(fr.next())
	}
	return name, params, strings.TrimRight(b.String(), " \t"), true
}

// checkExtraTokens reports DIRECTIVE_EXTRA_TOKENS if non-blank text remains
// before the end of the current line.
func (p *Preprocessor) checkExtraTokens(fr *frame) {
	save := fr.pos
	skipBlank(fr)
	if !fr.eof() && fr.peek(0) != '\n' {
		p.report(&Error{Kind: DirectiveExtraTokens, Loc: fr.diagLoc()})
	}
	fr.pos = save
}

// ---------------------------
// ----- Shared scanning -----
// ---------------------------

// skipBlank advances fr past spaces and tabs (not newlines).
func skipBlank(fr *frame) {
	for !fr.eof() && (fr.peek(0) == ' ' || fr.peek(0) == '\t') {
		fr.next()
	}
}

// readIdent reads a maximal identifier starting at fr's current position.
// The caller must have already verified isIdentStart(fr.peek(0)).
func readIdent(fr *frame) string {
	var b strings.Builder
	for !fr.eof() && isIdentCont(fr.peek(0)) {
		b.WriteRune(fr.next())
	}
	return b.String()
}
