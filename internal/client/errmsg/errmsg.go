// Package errmsg turns errors into the one-line messages shown to the user.
package errmsg

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/familyorganizer/internal/client/api"
	"github.com/dmitrijs2005/familyorganizer/internal/client/validation"
)

const (
	NoConnection  = "no connection to the server"
	Unauthorized  = "not authorized, please log in again"
	Forbidden     = "no access to this resource"
	NotFound      = "not found"
	ServerFault   = "server error, please try again later"
	TimedOut      = "the server did not answer in time"
	InvalidPrefix = "invalid input"
)

// Format returns the message for err. A message sent by the server takes
// priority over the generic text for its status.
func Format(err error) string {
	if err == nil {
		return ""
	}

	if apiErr, ok := api.AsError(err); ok {
		if msg := apiErr.ServerMessage(); msg != "" {
			return msg
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return TimedOut
	case errors.Is(err, api.ErrUnavailable):
		return NoConnection
	case errors.Is(err, api.ErrUnauthorized):
		return Unauthorized
	case errors.Is(err, api.ErrForbidden):
		return Forbidden
	case errors.Is(err, api.ErrNotFound):
		return NotFound
	case errors.Is(err, api.ErrServer):
		return ServerFault
	}

	if ve, ok := validation.AsErrors(err); ok {
		parts := make([]string, len(ve))
		for i, fe := range ve {
			parts[i] = fe.Error()
		}
		return InvalidPrefix + ": " + strings.Join(parts, "; ")
	}

	return err.Error()
}
