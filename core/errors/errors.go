package errors

import stderrors "errors"

// Kinds of rejected preconditions. Every Reason wraps exactly one of them so
// callers can branch with errors.Is on the kind or on the specific reason.
var (
	ErrAuthorization       = stderrors.New("authorization error")
	ErrInvalidIndex        = stderrors.New("invalid index error")
	ErrTiming              = stderrors.New("timing error")
	ErrValidation          = stderrors.New("validation error")
	ErrCapacity            = stderrors.New("capacity error")
	ErrState               = stderrors.New("state error")
	ErrInsufficientBalance = stderrors.New("insufficient balance error")
)

var kinds = []error{
	ErrAuthorization,
	ErrInvalidIndex,
	ErrTiming,
	ErrValidation,
	ErrCapacity,
	ErrState,
	ErrInsufficientBalance,
}

// Reason is a stable, human readable rejection bound to a kind.
type Reason struct {
	kind   error
	reason string
}

// New declares a reason of the supplied kind.
func New(kind error, reason string) *Reason {
	return &Reason{kind: kind, reason: reason}
}

func (r *Reason) Error() string { return r.reason }

// Unwrap exposes the kind to errors.Is.
func (r *Reason) Unwrap() error { return r.kind }

// Kind returns the kind sentinel.
func (r *Reason) Kind() error { return r.kind }

// KindOf returns the kind wrapped by err, or nil for infrastructure errors.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if stderrors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// KindName returns a short stable label for the kind wrapped by err.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrAuthorization:
		return "authorization"
	case ErrInvalidIndex:
		return "invalid_index"
	case ErrTiming:
		return "timing"
	case ErrValidation:
		return "validation"
	case ErrCapacity:
		return "capacity"
	case ErrState:
		return "state"
	case ErrInsufficientBalance:
		return "insufficient_balance"
	default:
		return "internal"
	}
}
