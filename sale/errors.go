package sale

import "errors"

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	// ErrAuth indicates the caller lacks the required privilege.
	ErrAuth = errors.New("sale: authorization error")

	// ErrValidation indicates an argument violates a field-level constraint.
	ErrValidation = errors.New("sale: validation error")

	// ErrStage indicates the lifecycle stage does not permit the operation.
	ErrStage = errors.New("sale: stage error")

	// ErrState indicates the operation is redundant or its prerequisites are unset.
	ErrState = errors.New("sale: state error")
)

// Error is a domain failure carrying its kind and the exact reason text.
type Error struct {
	kind   error
	reason string
}

// NewError returns an *Error of the given kind. kind should be one of
// ErrAuth, ErrValidation, ErrStage or ErrState.
func NewError(kind error, reason string) *Error {
	return &Error{kind: kind, reason: reason}
}

func (e *Error) Error() string { return e.reason }

// Unwrap returns the kind sentinel.
func (e *Error) Unwrap() error { return e.kind }

// Kind returns the kind sentinel.
func (e *Error) Kind() error { return e.kind }

// Reason returns the human-readable reason.
func (e *Error) Reason() string { return e.reason }

// Registry validation failures, reported in check order.
var (
	ErrInvalidLabel   = NewError(ErrValidation, "Invalid event label")
	ErrNegativePrice  = NewError(ErrValidation, "Negative issuance price")
	ErrNegativeMin    = NewError(ErrValidation, "Negative min deposit")
	ErrNegativeGoal   = NewError(ErrValidation, "Negative fund goal")
	ErrDeadlineInPast = NewError(ErrValidation, "Time end in the past")
	ErrEventNotFound  = NewError(ErrValidation, "Event not found")
	ErrAmountOverflow = NewError(ErrValidation, "Amount overflow")
)

// IsAuth reports whether err is an authorization failure.
func IsAuth(err error) bool { return errors.Is(err, ErrAuth) }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsStage reports whether err is a stage failure.
func IsStage(err error) bool { return errors.Is(err, ErrStage) }

// IsState reports whether err is a state failure.
func IsState(err error) bool { return errors.Is(err, ErrState) }
