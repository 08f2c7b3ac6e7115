// Package apperr provides the typed failure descriptors returned by the
// orchestrator. The API layer maps them to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is a user-correctable input problem. No request was issued.
	KindValidation
	// KindNetwork is a transport failure or non-success response from the backend.
	KindNetwork
	// KindEmptyResult means a search succeeded but produced zero candidates.
	KindEmptyResult
	// KindPartialPipeline means optimize succeeded but render failed.
	KindPartialPipeline
	KindNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindEmptyResult:
		return "empty_result"
	case KindPartialPipeline:
		return "partial_pipeline"
	case KindNotFound:
		return "not_found"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a failure descriptor with a typed Kind.
type Error struct {
	Kind    Kind
	Message string
	Op      string // Operation that failed (optional)
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code the API layer answers with for this kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNetwork:
		return http.StatusBadGateway
	case KindEmptyResult:
		return http.StatusOK
	case KindPartialPipeline:
		return http.StatusOK
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the operation name and returns the same error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Network(message string, err error) *Error {
	return Wrap(KindNetwork, message, err)
}

func EmptyResult(message string) *Error {
	return New(KindEmptyResult, message)
}

func PartialPipeline(message string, err error) *Error {
	return Wrap(KindPartialPipeline, message, err)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// KindOf reports the Kind of the first *Error in err's chain.
// Errors that carry no Kind report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
