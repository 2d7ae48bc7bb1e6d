package asm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Phase is which stage of the pipeline (spec.md §4.8) raised an Error.
type Phase int

const (
	PhaseTokenize Phase = iota
	PhaseParse
	PhaseGenerate
	PhaseResolve
)

func (p Phase) String() string {
	switch p {
	case PhaseTokenize:
		return "tokenize"
	case PhaseParse:
		return "parse"
	case PhaseGenerate:
		return "generate"
	case PhaseResolve:
		return "resolve"
	default:
		return "unknown phase"
	}
}

// Location is a 1-based line/column into the assembly source.
type Location struct {
	Line, Col int
}

func (l Location) String() string { return fmt.Sprintf("%d:%d", l.Line, l.Col) }

// Error is everything this package ever returns: a phase, a source
// location (nil only for pipeline-wide errors that precede any one line),
// and the wrapped cause. Generate errors additionally carry Args and
// Candidates -- the offending argument list and the per-alias arg-kind
// lists considered -- for the rich diagnostic spec.md §7 calls for.
type Error struct {
	Phase      Phase
	Loc        *Location
	Args       []string
	Candidates []string
	cause      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.Phase)
	if e.Loc != nil {
		fmt.Fprintf(&b, " at %s", e.Loc)
	}
	fmt.Fprintf(&b, ": %s", e.cause)
	if len(e.Args) > 0 {
		fmt.Fprintf(&b, " (args: %s)", strings.Join(e.Args, ", "))
	}
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (candidates: %s)", strings.Join(e.Candidates, "; "))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

func errAt(phase Phase, loc Location, format string, args ...interface{}) error {
	return &Error{Phase: phase, Loc: &loc, cause: errors.Errorf(format, args...)}
}

func wrapAt(phase Phase, loc Location, err error, msg string) error {
	return &Error{Phase: phase, Loc: &loc, cause: errors.Wrap(err, msg)}
}

func errGenerate(loc Location, args, candidates []string, format string, fargs ...interface{}) error {
	return &Error{
		Phase:      PhaseGenerate,
		Loc:        &loc,
		Args:       args,
		Candidates: candidates,
		cause:      errors.Errorf(format, fargs...),
	}
}
