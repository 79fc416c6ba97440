package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionExpired is returned when a 401 could not be recovered by a
	// token refresh. The stored credentials have been cleared.
	ErrSessionExpired = errors.New("api: session expired, log in again")

	// ErrNoRefreshToken means a 401 arrived and there was nothing to refresh with.
	ErrNoRefreshToken = errors.New("api: no refresh token stored")
)

// Error is a non-2xx response. Data holds the decoded body when it was JSON.
type Error struct {
	Status  int
	Data    map[string]any
	Message string
	Body    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
	}
	if e.Body != "" {
		return fmt.Sprintf("api error (%d): %s", e.Status, e.Body)
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

// ServerMessage is the message the server attached to the failure, if any.
func (e *Error) ServerMessage() string {
	return e.Message
}

func newError(status int, body []byte) *Error {
	e := &Error{Status: status, Body: strings.TrimSpace(string(body))}
	var data map[string]any
	if err := json.Unmarshal(body, &data); err == nil {
		e.Data = data
		e.Message = messageFrom(data)
	}
	return e
}

func messageFrom(data map[string]any) string {
	for _, k := range []string{"message", "error"} {
		if s, ok := data[k].(string); ok && s != "" {
			return s
		}
	}
	// Some endpoints nest the failure: {"data":{"message":"..."}}.
	if inner, ok := data["data"].(map[string]any); ok {
		if s, ok := inner["message"].(string); ok {
			return s
		}
	}
	return ""
}

// ErrorMessage returns the server-provided message when err carries one,
// otherwise fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
