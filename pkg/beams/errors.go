package beams

import "fmt"

// Kind classifies an Error. Every Kind is itself an error so callers can
// match on it with errors.Is:
//
//	if errors.Is(err, beams.ErrTooLong) { ... }
type Kind string

func (k Kind) Error() string { return string(k) }

// Validation-stage kinds. These are returned before any network call is made.
const (
	ErrMissingArgument    Kind = "missing argument"
	ErrInvalidType        Kind = "invalid type"
	ErrEmptyIdentifier    Kind = "empty identifier"
	ErrEmptyCollection    Kind = "empty collection"
	ErrTooLong            Kind = "too long"
	ErrTooManyElements    Kind = "too many elements"
	ErrForbiddenCharacter Kind = "forbidden character"
)

// Signing and network-stage kinds.
const (
	ErrSigning   Kind = "signing error"
	ErrHTTP      Kind = "http error"
	ErrTransport Kind = "transport error"
)

// Error is the single error type returned by this package.
type Error struct {
	Kind Kind
	Msg  string

	// StatusCode and Body are set for ErrHTTP only. Body holds at most the
	// first 64 KiB of the response.
	StatusCode int
	Body       string

	// Err is the underlying cause for ErrSigning and ErrTransport.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// IsValidation reports whether e was raised by argument validation.
func (e *Error) IsValidation() bool {
	switch e.Kind {
	case ErrSigning, ErrHTTP, ErrTransport:
		return false
	}
	return true
}

// NewError returns an *Error of the given kind with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
