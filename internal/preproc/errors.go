package preproc

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind enumerates every preprocessor diagnostic named in spec.md §7.
type Kind int

const (
	CommentUnterminated Kind = iota
	StringUnterminated
	CharacterStray

	DirectiveInvalid
	DirectiveNameNon
	DirectiveLineSkipped // Warning.
	DirectiveExtraTokens // Warning.

	IncludeExpectsFilename
	IncludeNoSuchFile
	IncludeDepth

	MacroNameFirstCharacter
	MacroNameRedefine
	MacroNameUndefined // Warning.
	ArgsExpectedBracket
	ArgsExpectedName
	ArgsExpectedComma
	ArgsDuplicate
	ArgsNon
	ArgsRequires
	ArgsPassed
	ArgsUnterminated
	CallDepth

	HashOnEdge
	HashNotFollowed
)

var kindNames = [...]string{
	CommentUnterminated: "COMMENT_UNTERMINATED", StringUnterminated: "STRING_UNTERMINATED",
	CharacterStray: "CHARACTER_STRAY", DirectiveInvalid: "DIRECTIVE_INVALID",
	DirectiveNameNon: "DIRECTIVE_NAME_NON", DirectiveLineSkipped: "DIRECTIVE_LINE_SKIPED",
	DirectiveExtraTokens: "DIRECTIVE_EXTRA_TOKENS", IncludeExpectsFilename: "INCLUDE_EXPECTS_FILENAME",
	IncludeNoSuchFile: "INCLUDE_NO_SUCH_FILE", IncludeDepth: "INCLUDE_DEPTH",
	MacroNameFirstCharacter: "MACRO_NAME_FIRST_CHARACTER", MacroNameRedefine: "MACRO_NAME_REDEFINE",
	MacroNameUndefined: "MACRO_NAME_UNDEFINED", ArgsExpectedBracket: "ARGS_EXPECTED_BRACKET",
	ArgsExpectedName: "ARGS_EXPECTED_NAME", ArgsExpectedComma: "ARGS_EXPECTED_COMMA",
	ArgsDuplicate: "ARGS_DUPLICATE", ArgsNon: "ARGS_NON", ArgsRequires: "ARGS_REQUIRES",
	ArgsPassed: "ARGS_PASSED", ArgsUnterminated: "ARGS_UNTERMINATED", CallDepth: "CALL_DEPTH",
	HashOnEdge: "HASH_ON_EDGE", HashNotFollowed: "HASH_NOT_FOLLOWED",
}

// warningKinds marks the diagnostics that are warnings rather than errors:
// they are reported but do not abort the enclosing directive/expansion.
var warningKinds = map[Kind]bool{
	DirectiveLineSkipped: true,
	DirectiveExtraTokens: true,
	MacroNameUndefined:   true,
}

// String returns the diagnostic identifier of k, e.g. "CALL_DEPTH".
func (k Kind) String() string { return kindNames[k] }

// IsWarning reports whether k is a warning-level diagnostic.
func (k Kind) IsWarning() bool { return warningKinds[k] }

// Error is a single preprocessor diagnostic, carrying its kind and location.
type Error struct {
	Kind    Kind
	Loc     Location
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Loc, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Loc, e.Kind)
}
