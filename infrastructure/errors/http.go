// Package errors turns non-2xx HTTP responses from upstream services into
// typed Go errors.
package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of an error response body is read.
const maxErrorBody = 4 << 10

// HTTPError is a failed upstream HTTP call.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the status suggests the call may succeed later.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// ParseHTTPError returns nil for status codes below 400. Otherwise it reads a
// bounded prefix of the body and extracts an {"error"} or {"detail"} message
// when the body is JSON, falling back to the raw text.
func ParseHTTPError(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: "unreadable error body"}
	}

	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: payload.Error}
		}
		if payload.Detail != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: payload.Detail}
		}
	}

	return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
