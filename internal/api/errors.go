package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a backend rejection. Message carries the backend-provided text when
// the payload had one, so handlers can surface it verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// UserMessage returns the backend message, or fallback when none was provided.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// errorPayload matches the backend's {"error": "..."} and DRF's
// {"detail": "..."} rejection bodies.
type errorPayload struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func newError(status int, body []byte) *Error {
	var payload errorPayload
	msg := ""
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil {
			msg = payload.Error
			if msg == "" {
				msg = payload.Detail
			}
		}
	}
	return &Error{Status: status, Message: strings.TrimSpace(msg)}
}
