package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"chatfront/internal/models"
)

// APIError is a non-2xx answer from a backend. Message holds the server's
// own error text and is empty when the body carried none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// TransportError covers everything that is not an application answer:
// unreachable hosts, cancelled requests and malformed bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// ServerMessage returns the backend's own error text carried by err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Detail picks the text shown to the user for a failed call: the server's
// message, else the error's own text, else fallback.
func Detail(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := ServerMessage(err); msg != "" {
		return msg
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

func apiErrorFrom(resp *resty.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode()}

	var body models.ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Message = body.Message()
	}
	return apiErr
}

func decodeBody(op string, resp *resty.Response, out interface{}) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
