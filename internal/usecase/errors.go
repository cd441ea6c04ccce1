package usecase

import "errors"

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidState     = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
	ErrGateway          = errors.New("payment gateway error")
	ErrConfig           = errors.New("configuration error")
	ErrPersistence      = errors.New("persistence error")
)

// Error pairs one of the sentinel kinds above with the message shown to the
// caller. Err keeps the underlying cause for logs.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func validationError(fields map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: "Validation failed", Fields: fields}
}

// Message is the caller-facing text of err, or fallback when err carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// Fields returns per-field validation messages, if any.
func Fields(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
