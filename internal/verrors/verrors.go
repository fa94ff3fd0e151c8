// Package verrors implements the error taxonomy shared by every Vortex
// subsystem: a small set of error kinds (spec.md §7) plus a wrapping type
// that lets callers recover the kind with errors.As without string matching.
package verrors

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed. These mirror the error taxonomy
// table in spec.md §7; they are not Go types in their own right so that a
// single errors.As(err, &Error{}) suffices for callers regardless of which
// subsystem raised the error.
type Kind int

const (
	// MismatchedTypes: an input dtype violates a function precondition.
	MismatchedTypes Kind = iota
	// InvalidArgument: out-of-bounds indices, inconsistent lengths, bad flags.
	InvalidArgument
	// ComputeError: a kernel could not compute (e.g. overflow when not wrapping).
	ComputeError
	// InvalidSerde: corrupt flatbuffers, failed magic/version checks, short reads.
	InvalidSerde
	// NotImplemented: no kernel found even after the canonicalization fallback.
	NotImplemented
	// IOError: transport failure from VortexReadAt.
	IOError
)

func (k Kind) String() string {
	switch k {
	case MismatchedTypes:
		return "mismatched_types"
	case InvalidArgument:
		return "invalid_argument"
	case ComputeError:
		return "compute_error"
	case InvalidSerde:
		return "invalid_serde"
	case NotImplemented:
		return "not_implemented"
	case IOError:
		return "io_error"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so that higher layers (a scan
// scheduler deciding whether to fail the whole stream, per spec.md §7's
// "User-visible failure behavior") can branch on the kind without parsing
// messages.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "array.ScalarAt"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("vortex: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("vortex: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for op/kind wrapping err (err may be nil).
func New(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Newf is like New but formats a message into a plain error first.
func Newf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error; otherwise it returns ComputeError as the conservative default,
// since an un-tagged error most often originates from a kernel.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ComputeError
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
