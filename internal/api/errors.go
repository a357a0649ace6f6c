package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// GenericErrorMessage is used when the server's error body cannot be decoded.
const GenericErrorMessage = "Request failed"

// RequestError is returned for any non-2xx response, and for 2xx responses
// whose body cannot be decoded. Message is the server-supplied detail when
// one is available.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	RequestID  string
}

// Error returns the server message verbatim so it can be shown to users as-is.
func (e *RequestError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a RequestError with status 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode extracts the HTTP status from err, or 0 if err is not a RequestError.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// errorBody is the error shape the backend uses. Detail is either a string
// or, for request validation failures, a list of {loc, msg, type} objects.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Msg string `json:"msg"`
}

// decodeErrorMessage extracts a human-readable message from an error body,
// falling back to GenericErrorMessage.
func decodeErrorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return GenericErrorMessage
	}

	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err == nil {
		if strings.TrimSpace(detail) == "" {
			return GenericErrorMessage
		}
		return detail
	}

	var details []validationDetail
	if err := json.Unmarshal(eb.Detail, &details); err == nil && len(details) > 0 && details[0].Msg != "" {
		return details[0].Msg
	}

	return GenericErrorMessage
}
