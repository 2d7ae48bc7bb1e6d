// Package disasm implements the disassembler of spec.md §4.9: blob-level
// decode, then the candidate-elimination alias-level match, wrapped by a
// stepping disassembler that resolves one alias-level instruction per Step
// call.
package disasm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind distinguishes the disassembler's error categories (spec.md
// §7).
type ErrorKind int

const (
	InvalidOpcode ErrorKind = iota
	UnexpectedEndOfStream
	NoSuitableAlias
	CouldNotResolveAliasArgs
	AmbiguousAliasSpecificity
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidOpcode:
		return "InvalidOpcode"
	case UnexpectedEndOfStream:
		return "UnexpectedEndOfStream"
	case NoSuitableAlias:
		return "NoSuitableAlias"
	case CouldNotResolveAliasArgs:
		return "CouldNotResolveAliasArgs"
	case AmbiguousAliasSpecificity:
		return "AmbiguousAliasSpecificity"
	default:
		return "UnknownDisasmError"
	}
}

// Error is everything this package returns: a Kind plus, for the
// alias-level errors, the candidate list considered.
type Error struct {
	Kind       ErrorKind
	Candidates []string
	cause      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.cause)
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (candidates: %s)", strings.Join(e.Candidates, "; "))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

func newErrWithCandidates(kind ErrorKind, candidates []string, format string, args ...interface{}) error {
	return &Error{Kind: kind, Candidates: candidates, cause: errors.Errorf(format, args...)}
}
