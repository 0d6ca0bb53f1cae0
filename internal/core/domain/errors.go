package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies expected failures at every boundary.
type ErrorKind string

// Error kinds.
const (
	KindUnsupportedFormat       ErrorKind = "UnsupportedFormat"
	KindCorruptInput            ErrorKind = "CorruptInput"
	KindExtractionTimeout       ErrorKind = "ExtractionTimeout"
	KindUnsupportedTargetFormat ErrorKind = "UnsupportedTargetFormat"
	KindPartialSyncFailure      ErrorKind = "PartialSyncFailure"
	KindInvalidSearchMode       ErrorKind = "InvalidSearchMode"
	KindIndexUnavailable        ErrorKind = "IndexUnavailable"
	KindTokenExpired            ErrorKind = "TokenExpired"
	KindTokenRevoked            ErrorKind = "TokenRevoked"
	KindTokenUnknown            ErrorKind = "TokenUnknown"
	KindNotFound                ErrorKind = "NotFound"
	KindInvalidInput            ErrorKind = "InvalidInput"
	KindCapabilityUnavailable   ErrorKind = "CapabilityUnavailable"
)

// Error is a structured error carrying a kind and a human-readable detail.
// Two Errors match under errors.Is when their kinds are equal, so the
// sentinels below can be used to test for a kind through any wrapping.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

// NewError creates an Error with a formatted detail.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error that wraps a cause.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if
// there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var p *PartialSyncFailure
	if errors.As(err, &p) {
		return KindPartialSyncFailure
	}
	return ""
}

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = &Error{Kind: KindNotFound}

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = &Error{Kind: KindInvalidInput}

	// ErrUnsupportedFormat indicates no extraction strategy handles the type.
	ErrUnsupportedFormat = &Error{Kind: KindUnsupportedFormat}

	// ErrCorruptInput indicates the bytes could not be parsed as their type.
	ErrCorruptInput = &Error{Kind: KindCorruptInput}

	// ErrExtractionTimeout indicates text extraction exceeded its deadline.
	ErrExtractionTimeout = &Error{Kind: KindExtractionTimeout}

	// ErrUnsupportedTargetFormat indicates an unknown conversion target.
	ErrUnsupportedTargetFormat = &Error{Kind: KindUnsupportedTargetFormat}

	// ErrInvalidSearchMode indicates an unknown search mode.
	ErrInvalidSearchMode = &Error{Kind: KindInvalidSearchMode}

	// ErrIndexUnavailable indicates the index needed for a mode is not usable.
	ErrIndexUnavailable = &Error{Kind: KindIndexUnavailable}

	// ErrTokenExpired indicates a session token is past its expiry time.
	ErrTokenExpired = &Error{Kind: KindTokenExpired}

	// ErrTokenRevoked indicates a session token was explicitly revoked.
	ErrTokenRevoked = &Error{Kind: KindTokenRevoked}

	// ErrTokenUnknown indicates a session token was never issued here.
	ErrTokenUnknown = &Error{Kind: KindTokenUnknown}

	// ErrCapabilityUnavailable indicates an optional capability is not configured.
	ErrCapabilityUnavailable = &Error{Kind: KindCapabilityUnavailable}

	// ErrSyncInProgress indicates a sync of the same root is already running.
	ErrSyncInProgress = errors.New("sync in progress")
)

// PartialSyncFailure reports the files that failed during an otherwise
// completed synchronisation pass. It is informational: the rest of the
// tree was synchronised.
type PartialSyncFailure struct {
	Failures []FileFailure
}

// Error implements the error interface.
func (p *PartialSyncFailure) Error() string {
	if len(p.Failures) == 1 {
		return fmt.Sprintf("%s: 1 file failed: %s: %s",
			KindPartialSyncFailure, p.Failures[0].Path, p.Failures[0].Reason)
	}
	return fmt.Sprintf("%s: %d files failed", KindPartialSyncFailure, len(p.Failures))
}

// Is matches any *Error of kind PartialSyncFailure.
func (p *PartialSyncFailure) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Kind == KindPartialSyncFailure
}

// ErrPartialSyncFailure matches a *PartialSyncFailure under errors.Is.
var ErrPartialSyncFailure = &Error{Kind: KindPartialSyncFailure}
