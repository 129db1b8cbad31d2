package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
)

// Sentinel errors matched with errors.Is against an *Error.
var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("server error")
)

// Kind tells whether a request failed before or after a response arrived.
type Kind int

const (
	// KindNetwork means no HTTP response was received.
	KindNetwork Kind = iota + 1
	// KindHTTP means the server answered with a status >= 400.
	KindHTTP
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	}
	return "unknown"
}

// Error is the failure result of every API call.
type Error struct {
	Kind   Kind
	Status int
	Body   *models.ErrorBody
	Method string
	Path   string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNetwork:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	default:
		if msg := e.ServerMessage(); msg != "" {
			return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
		}
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is maps the error onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindNetwork
	case ErrBadRequest:
		return e.Kind == KindHTTP && (e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity)
	case ErrUnauthorized:
		return e.Kind == KindHTTP && e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Kind == KindHTTP && e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Kind == KindHTTP && e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Kind == KindHTTP && e.Status == http.StatusConflict
	case ErrServer:
		return e.Kind == KindHTTP && e.Status >= http.StatusInternalServerError
	}
	return false
}

// ServerMessage returns the server supplied message, if any.
func (e *Error) ServerMessage() string {
	if e.Body == nil {
		return ""
	}
	return e.Body.Message
}

// AsError unwraps err into an *Error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetwork reports whether err is a transport failure with no response.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Retryable reports whether a read may be retried: network failures and
// server faults are, client errors are not.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrServer)
}
