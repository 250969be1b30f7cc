package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrOutOfStock      = errors.New("out of stock")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error pairs a kind with a message that is safe to show to the caller.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func NotFound(msg string) error        { return &Error{Kind: ErrNotFound, Msg: msg} }
func AlreadyExists(msg string) error   { return &Error{Kind: ErrAlreadyExists, Msg: msg} }
func Unauthorized(msg string) error    { return &Error{Kind: ErrUnauthorized, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: ErrForbidden, Msg: msg} }
func OutOfStock(msg string) error      { return &Error{Kind: ErrOutOfStock, Msg: msg} }
func InvalidArgument(msg string) error { return &Error{Kind: ErrInvalidArgument, Msg: msg} }

// Kinds lists every caller-visible kind; anything else is internal.
var Kinds = []error{ErrNotFound, ErrAlreadyExists, ErrUnauthorized, ErrForbidden, ErrOutOfStock, ErrInvalidArgument}

// KindOf returns the taxonomy kind of err, or nil for internal errors.
func KindOf(err error) error {
	for _, k := range Kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
