package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/cobaltadmin/authcore/upstream"
)

// Kind is the closed failure taxonomy. Every failed call maps to exactly
// one kind; call sites switch on it and nothing else.
type Kind int

const (
	// KindUnknown is the fallback for anything the classifier cannot
	// place. Treated as non-retryable.
	KindUnknown Kind = iota
	// KindValidation is a rejected input: a field-level problem the user
	// can fix.
	KindValidation
	// KindAuthentication means the session could not be established even
	// after the refresh attempt.
	KindAuthentication
	// KindNetwork is a transport failure. The only retryable kind.
	KindNetwork
	// KindTimeout is a deadline hit, client or server side.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// APIError is the single failure shape the pipeline produces.
type APIError struct {
	Kind    Kind
	Code    string
	Message string
	// Field names the offending input for validation failures.
	Field  string
	Status int

	cause error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Code)
	}
	return e.Kind.String()
}

// Unwrap exposes the original error for errors.Is checks in logs and
// tests; presentation code must not reach through it.
func (e *APIError) Unwrap() error { return e.cause }

// Retryable reports whether a retry could plausibly change the outcome.
func (e *APIError) Retryable() bool { return e.Kind == KindNetwork }

// wireError is the backend's JSON error body.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// Classify maps a raw call failure to the closed taxonomy.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newError(KindTimeout, "timeout", "", 0, err)
	case errors.Is(err, upstream.ErrInvalidGrant):
		return newError(KindAuthentication, "session_expired", "", http.StatusUnauthorized, err)
	}

	// url.Error and net.OpError both satisfy net.Error, so this covers
	// every transport failure the http client produces.
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return newError(KindTimeout, "timeout", "", 0, err)
		}
		return newError(KindNetwork, "network", "", 0, err)
	}

	return newError(KindUnknown, "", "", 0, err)
}

// classifyStatus maps a non-2xx response to the taxonomy.
func classifyStatus(status int, body wireError, cause error) *APIError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code := body.Code
		if code == "" {
			code = "session_expired"
		}
		return newError(KindAuthentication, code, "", status, cause)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e := newError(KindValidation, body.Code, body.Field, status, cause)
		if body.Message != "" {
			e.Message = body.Message
		}
		return e
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return newError(KindTimeout, "timeout", "", status, cause)
	case status >= 500:
		return newError(KindNetwork, "server_error", "", status, cause)
	default:
		return newError(KindUnknown, body.Code, "", status, cause)
	}
}

func newError(kind Kind, code, field string, status int, cause error) *APIError {
	return &APIError{
		Kind:    kind,
		Code:    code,
		Message: messageFor(kind, code),
		Field:   field,
		Status:  status,
		cause:   cause,
	}
}
