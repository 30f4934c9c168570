package port

import (
	"errors"
	"fmt"
)

// Sentinel errors used across ports.
var (
	ErrMissingConfig        = errors.New("missing required backend configuration")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("already exists")
	ErrFileNotFound         = errors.New("file does not exist at the provided URI")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrIncompleteSubmission = errors.New("submission is incomplete")
)

// Kind classifies a failure for the caller. UI code picks the notice from it.
type Kind string

const (
	KindConfig          Kind = "config"
	KindAuth            Kind = "auth"
	KindLocalFile       Kind = "local_file"
	KindRemote          Kind = "remote"
	KindInvalidArgument Kind = "invalid_argument"
)

// Error is the typed failure returned by the client core.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap classifies err. An error that is already typed keeps its kind.
func Wrap(kind Kind, op, message string, err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return &Error{Kind: kind, Op: op, Message: message, Cause: err}
}

// NewError builds a typed error without an underlying cause.
func NewError(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// IsKind reports whether the first typed error in the chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind == kind
	}
	return false
}
