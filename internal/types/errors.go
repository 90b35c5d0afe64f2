package types

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrValidation = errors.New("invalid input")

// ErrorKind classifies failures coming back from external collaborators
// (completion provider, geocoder, forecast provider) and from the AI-response
// recovery pipeline. Handlers map kinds onto HTTP statuses.
type ErrorKind string

const (
	ErrKindConfiguration   ErrorKind = "configuration"
	ErrKindTimeout         ErrorKind = "timeout"
	ErrKindUnreachable     ErrorKind = "unreachable"
	ErrKindHTTP            ErrorKind = "http_error"
	ErrKindUnauthorized    ErrorKind = "unauthorized"
	ErrKindUpstream        ErrorKind = "upstream_error"
	ErrKindEmptyCompletion ErrorKind = "empty_completion"
	ErrKindMalformed       ErrorKind = "malformed_response"
	ErrKindUnparseable     ErrorKind = "unparseable"
	ErrKindPlaceNotFound   ErrorKind = "place_not_found"
)

// ExternalError is the tagged failure result every generator-level function
// returns instead of letting lower-layer errors escape untyped.
type ExternalError struct {
	Kind    ErrorKind
	Status  int // set for ErrKindHTTP only
	Message string
	Err     error
}

func (e *ExternalError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ExternalError) Unwrap() error { return e.Err }

func NewExternalError(kind ErrorKind, message string, err error) *ExternalError {
	return &ExternalError{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err carries the given classification anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	var ee *ExternalError
	if errors.As(err, &ee) {
		return ee.Kind == kind
	}
	return false
}

// KindOf returns the classification of err, or "" when err is not an ExternalError.
func KindOf(err error) ErrorKind {
	var ee *ExternalError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

// IsNetworkKind reports whether err is a retryable network-level failure.
func IsNetworkKind(err error) bool {
	k := KindOf(err)
	return k == ErrKindTimeout || k == ErrKindUnreachable
}
