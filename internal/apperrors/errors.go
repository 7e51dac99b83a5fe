// =============================================================================
// BRO.AI - Error Types
// =============================================================================
//
// Service calls (import service, recipe repository, KPI feed) fail with an
// *APIError carrying an HTTP-like status and a human message. Transport and
// timeout failures carry no status. Lookups that miss fail with an error
// that matches ErrNotFound through errors.Is, whether the miss came from the
// in-memory backend or from a 404 over the network.
//
// HumanMessage converts any of these into the short sentence shown to users.
//
// =============================================================================

package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound matches every "resource does not exist" failure.
var ErrNotFound = errors.New("not found")

// =============================================================================
// API ERROR
// =============================================================================

// APIError is a failed call against the BRO.AI API.
type APIError struct {
	// Status is the HTTP status code. It is 0 for network and timeout failures.
	Status int

	// StatusText is the reason phrase ("Not Found", "Network Error", ...).
	StatusText string

	// Message is the human message for the status.
	Message string

	// Details holds the decoded response body, when there was one.
	Details any

	// Timeout is set when the call hit its deadline.
	Timeout bool
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.StatusText, e.Message)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.StatusText, e.Message)
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// NewAPIError builds the error for a non-2xx response.
func NewAPIError(status int, statusText string, details any) *APIError {
	return &APIError{
		Status:     status,
		StatusText: statusText,
		Message:    StatusMessage(status, statusText),
		Details:    details,
	}
}

// NewNetworkError wraps a transport failure. The result has no status.
func NewNetworkError(cause error) *APIError {
	msg := "Unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return &APIError{StatusText: "Network Error", Message: msg}
}

// NewTimeoutError is returned when a call exceeds its deadline.
func NewTimeoutError() *APIError {
	return &APIError{
		StatusText: "Request Timeout",
		Message:    "The request exceeded the time limit",
		Timeout:    true,
	}
}

// statusMessages maps the statuses the API is known to return.
var statusMessages = map[int]string{
	400: "Invalid request. Check the data you sent.",
	401: "Unauthorized. Check your credentials.",
	403: "Access denied. You do not have permission for this action.",
	404: "Resource not found.",
	409: "Conflict. The resource already exists or is in use.",
	422: "Invalid data. Check the required fields.",
	429: "Too many requests. Try again in a few moments.",
	500: "Internal server error. Try again later.",
	502: "Server unavailable. Try again later.",
	503: "Service temporarily unavailable.",
}

// StatusMessage returns the human message for an HTTP status.
func StatusMessage(status int, statusText string) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return fmt.Sprintf("Error %d: %s", status, statusText)
}

// =============================================================================
// NOT FOUND
// =============================================================================

// NotFoundError is a lookup miss in a local repository.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is makes NotFoundError match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// =============================================================================
// HUMAN MESSAGES
// =============================================================================

const timeoutMessage = "Timeout. Try again."

// HumanMessage converts an error into the sentence shown to users.
func HumanMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case 401:
			return "Unauthorized. Check your credentials."
		case 403:
			return "Access denied."
		case 404:
			return "Resource not found."
		case 408:
			return timeoutMessage
		case 500:
			return "Internal server error."
		case 0:
			if apiErr.Timeout {
				return timeoutMessage
			}
			return apiErr.Message
		default:
			msg := apiErr.Message
			if msg == "" {
				msg = "Unknown error"
			}
			return fmt.Sprintf("Error %d: %s", apiErr.Status, msg)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutMessage
	}

	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "Timeout") {
		return timeoutMessage
	}
	return msg
}
