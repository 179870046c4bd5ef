// Package apierror builds the JSON error bodies returned by the HTTP API:
// {"error": "<Kind>", "message": "<detail>"}.
package apierror

import "github.com/labstack/echo/v4"

const (
	KindInput             = "InputError"
	KindNotFound          = "NotFound"
	KindCapacityExceeded  = "CapacityExceeded"
	KindScheduleBlocked   = "ScheduleBlocked"
	KindConflict          = "Conflict"
	KindInvalidTransition = "InvalidTransition"
	KindTimeout           = "Timeout"
	KindCanceled          = "Canceled"
	KindUnauthorized      = "Unauthorized"
	KindForbidden         = "Forbidden"
	KindRateLimited       = "RateLimited"
	KindInternal          = "InternalError"
)

// StatusClientClosedRequest reports a request abandoned by the client before a
// response was written. It keeps disconnects out of the 5xx range.
const StatusClientClosedRequest = 499

type Body struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// New returns an echo error whose message is serialized as Body by echo's
// default error handler.
func New(status int, kind, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, Body{Error: kind, Message: message})
}
