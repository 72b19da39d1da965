package api

import (
	"encoding/json"
	"fmt"
)

// Error codes reported by the adapters. Tool handlers surface these
// verbatim; none of them trigger an automatic retry.
const (
	CodeNetworkError   = "NETWORK_ERROR"
	CodeHTTPError      = "HTTP_ERROR"
	CodeStreamingError = "STREAMING_ERROR"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Result is the uniform outcome of a backend call. Exactly one of Data
// and Err is meaningful: Err is set iff Success is false. Adapters never
// return a Go error past their boundary; every failure mode collapses
// into a Result.
type Result struct {
	Success bool
	Data    json.RawMessage
	Err     *Error
}

func success(data json.RawMessage) Result {
	return Result{Success: true, Data: data}
}

func failure(code, format string, args ...any) Result {
	return Result{
		Success: false,
		Err: &Error{
			Code:    code,
			Message: fmt.Sprintf(format, args...),
		},
	}
}
