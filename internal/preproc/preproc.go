package preproc

import (
	"strings"

	"github.com/IsabelCoolIn/RuC/internal/linker"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Limits bounds recursion the way spec.md §5 mandates.
type Limits struct {
	MaxIncludeDepth int
	MaxCallDepth    int
}

// DefaultLimits returns the depth guards named in spec.md §5.
func DefaultLimits() Limits {
	return Limits{MaxIncludeDepth: 32, MaxCallDepth: 256}
}

// Preprocessor drives directive dispatch and macro expansion over one
// translation unit. A single Preprocessor owns one macro Store and one
// error list; it is not safe for concurrent use, matching spec.md §5's
// single-threaded parser context.
type Preprocessor struct {
	Store    *Store
	Resolver linker.Resolver
	Limits   Limits

	errs             []*Error
	recoveryDisabled bool
	includeDepth     int
	callDepth        int
}

// ---------------------
// ----- Functions -----
// ---------------------

// New returns a Preprocessor resolving includes through r.
func New(r linker.Resolver) *Preprocessor {
	return &Preprocessor{
		Store:    NewStore(),
		Resolver: r,
		Limits:   DefaultLimits(),
	}
}

// Errors returns every diagnostic raised during the last call to Process.
func (p *Preprocessor) Errors() []*Error { return p.errs }

// report records diagnostic e, unless recovery has been disabled for the
// enclosing context.
func (p *Preprocessor) report(e *Error) {
	if p.recoveryDisabled {
		return
	}
	p.errs = append(p.errs, e)
}

// Process preprocesses src (attributed to file) and returns the expanded
// output together with every diagnostic raised.
func (p *Preprocessor) Process(file, src string) (string, []*Error) {
	p.errs = nil
	p.recoveryDisabled = false
	var out strings.Builder
	fr := newFrame(file, src, Location{File: file, Line: 1, Col: 1}, true)
	p.scan(fr, &out)
	return out.String(), p.errs
}
