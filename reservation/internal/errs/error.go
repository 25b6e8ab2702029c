package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindForbidden
	KindInvalidTransition
	KindStore
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrStore             = errors.New("store failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindForbidden:
		return ErrForbidden
	case KindInvalidTransition:
		return ErrInvalidTransition
	case KindStore:
		return ErrStore
	default:
		return nil
	}
}

// Error carries the failure kind, the offending identifier if any, and the cause.
type Error struct {
	Kind Kind
	ID   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Message()
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Message is the caller-facing text without the wrapped cause.
func (e *Error) Message() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.sentinel().Error()
	}
	if e.ID != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.ID)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(what, id string) error {
	return &Error{Kind: KindNotFound, ID: id, Msg: what + " not found"}
}

func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

func InvalidTransition(id, from, to string) error {
	return &Error{
		Kind: KindInvalidTransition,
		ID:   id,
		Msg:  fmt.Sprintf("cannot move reservation from %s to %s", from, to),
	}
}

func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStore, Msg: op, Err: err}
}
