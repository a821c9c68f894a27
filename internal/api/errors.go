package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// defaultErrorMessage is shown when neither the response body nor the
// transport gives anything usable.
const defaultErrorMessage = "Request failed"

// APIError is a non-2xx response from the REST collaborator.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// newAPIError builds an APIError from a failed response, preferring the
// structured message in the body, then the HTTP status text, then a
// static default.
func newAPIError(statusCode int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return &APIError{StatusCode: statusCode, Message: payload.Message}
		}
		if payload.Error != "" {
			return &APIError{StatusCode: statusCode, Message: payload.Error}
		}
	}
	if text := http.StatusText(statusCode); text != "" {
		return &APIError{StatusCode: statusCode, Message: text}
	}
	return &APIError{StatusCode: statusCode, Message: defaultErrorMessage}
}

// ErrorMessage extracts a user-facing message from any error returned by
// the client: the server's structured message for API errors, the error's
// own text otherwise, and a static default for nil-ish cases.
func ErrorMessage(err error) string {
	if err == nil {
		return defaultErrorMessage
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return defaultErrorMessage
}
