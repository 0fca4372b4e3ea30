package loan

import (
	"errors"
	"fmt"
)

// Kind is the category of a loan operation failure.
type Kind int

// Failure kinds. Callers branch on these; HTTP maps them to 404/409/504/500.
const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindTimeout
)

// String returns the lower-case kind name used in logs and metric tags.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Sentinel errors for errors.Is checks against an *Error:
//
//	if errors.Is(err, loan.ErrConflict) {
//	    // device taken or loan already closed
//	}
var (
	ErrNotFound = errors.New("loan: not found")
	ErrConflict = errors.New("loan: conflict")
	ErrTimeout  = errors.New("loan: timeout")
	ErrInternal = errors.New("loan: internal error")
)

// User-facing messages.
const (
	MsgDeviceNotFound     = "device not found"
	MsgDeviceNotAvailable = "device not available"
	MsgDeviceJustLoaned   = "device just loaned"
	MsgLoanNotFound       = "loan not found"
	MsgAlreadyReturned    = "already returned"
	MsgDeviceStatusChange = "device status changed"
	MsgJustReturned       = "just returned by someone else"
	MsgTimeout            = "operation timed out"
	MsgInternal           = "internal error"
	MsgBusy               = "operation conflicted with a concurrent change"
)

// Race causes recorded on guarded-write misses.
const (
	CauseDeviceTaken        = "device_taken"
	CauseConcurrentReturn   = "concurrent_return"
	CauseStatusOverride     = "device_status_override"
	CauseStoreContention    = "store_contention"
	CauseDuplicateActive    = "duplicate_active_loan"
	CauseInvariantViolation = "invariant_violation"
)

// Error is the classified failure returned by every loan operation.
//
// Error() yields only Message, which is safe to show to users. The
// underlying store error stays reachable through Unwrap for server-side
// logging.
type Error struct {
	Kind    Kind
	Message string

	// Op names the operation that failed (create, return, find_active).
	Op string

	// Race is set when the failure came from losing a guarded write to a
	// concurrent caller rather than from the caller's input.
	Race bool

	// Cause is a short machine-readable diagnosis for logs and metrics.
	Cause string

	// ObservedStatus is the device status seen when diagnosing a race.
	ObservedStatus string

	err error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying store error, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// Is matches the package sentinels by Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrInternal:
		return e.Kind == KindInternal
	}
	return false
}

// Detail returns the full diagnostic string for server-side logs.
func (e *Error) Detail() string {
	if e.err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Kind, e.Message, e.err)
}

// KindOf returns the Kind of err, or KindInternal for errors that were not
// classified by this package.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindInternal
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func raceConflict(msg, cause string) *Error {
	return &Error{Kind: KindConflict, Message: msg, Race: true, Cause: cause}
}

func timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Message: MsgTimeout, err: err}
}

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, err: err}
}
