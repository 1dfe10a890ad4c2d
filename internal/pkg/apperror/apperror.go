package apperror

import "errors"

// Kind classifies a domain error for the transport layer.
type Kind string

const (
	KindUnknown       Kind = ""
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindStage         Kind = "stage"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
)

// Error is a domain error carrying its Kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New returns a sentinel-style error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Kinded is implemented by errors that know their own Kind.
type Kinded interface {
	ErrorKind() Kind
}

func (e *Error) ErrorKind() Kind {
	return e.Kind
}

// KindOf walks the wrap chain and returns the first Kind found.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var k Kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
