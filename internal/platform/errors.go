package platform

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the backend refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeAuth indicates a missing or rejected token (HTTP 401)
	ErrTypeAuth
	// ErrTypeAccessDenied indicates the caller lacks access to the resource (HTTP 403)
	ErrTypeAccessDenied
	// ErrTypeNotFound indicates the resource does not exist (HTTP 404)
	ErrTypeNotFound
	// ErrTypeHTTP indicates any other non-success status code
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
	// ErrTypeValidation indicates the backend rejected the request content (HTTP 422)
	ErrTypeValidation
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeAccessDenied:
		return "Access Denied"
	case ErrTypeNotFound:
		return "Not Found"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// PlatformError represents an error that occurred talking to the platform
type PlatformError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	RequestID  string    // X-Request-ID of the failed call (if any)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *PlatformError) Unwrap() error {
	return e.Err
}

// UserMessage returns the short message shown in notifications
func (e *PlatformError) UserMessage() string {
	return ShortMessage(e)
}

// ClassifyNetworkError analyzes a transport error and returns a more specific error
func ClassifyNetworkError(err error) *PlatformError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &PlatformError{Type: ErrTypeTimeout, Message: "Request timed out", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &PlatformError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &PlatformError{Type: ErrTypeConnectionRefused, Message: "Backend refused connection", Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return ClassifyNetworkError(urlErr.Err)
	}

	return &PlatformError{Type: ErrTypeNetwork, Message: "Network error occurred", Err: err}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *PlatformError {
	classified := ClassifyNetworkError(err)
	if classified == nil {
		return &PlatformError{Type: ErrTypeNetwork, Message: message}
	}
	if classified.Type == ErrTypeNetwork {
		classified.Message = message
	}
	return classified
}

// NewStatusError maps a non-success HTTP status to a typed error.
// message is the backend's own explanation, if it sent one.
func NewStatusError(statusCode int, message string) *PlatformError {
	e := &PlatformError{StatusCode: statusCode, Message: message}
	switch statusCode {
	case http.StatusUnauthorized:
		e.Type = ErrTypeAuth
	case http.StatusForbidden:
		e.Type = ErrTypeAccessDenied
	case http.StatusNotFound:
		e.Type = ErrTypeNotFound
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		e.Type = ErrTypeValidation
	default:
		e.Type = ErrTypeHTTP
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("unexpected status code: %d", statusCode)
	}
	return e
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *PlatformError {
	return &PlatformError{Type: ErrTypeParse, Message: message, Err: err}
}

func typeOf(err error) (ErrorType, bool) {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Type, true
	}
	return ErrTypeUnknown, false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	t, ok := typeOf(err)
	return ok && (t == ErrTypeNetwork || t == ErrTypeTimeout || t == ErrTypeConnectionRefused || t == ErrTypeDNS)
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeAuth
}

// IsAccessDenied checks if the caller was denied access
func IsAccessDenied(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeAccessDenied
}

// IsNotFound checks if the requested resource does not exist
func IsNotFound(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeNotFound
}

// IsValidationError checks if the backend rejected the request content
func IsValidationError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeValidation
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeParse
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var pe *PlatformError
	if !errors.As(err, &pe) {
		return err.Error()
	}

	switch pe.Type {
	case ErrTypeTimeout:
		return "Platform not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Platform refused connection - is the server running?"
	case ErrTypeDNS:
		return "Cannot resolve platform hostname"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeAuth:
		return "Authentication failed - check ORDERDESK_TOKEN"
	case ErrTypeAccessDenied:
		return "Insufficient access rights"
	case ErrTypeNotFound:
		return "Record not found"
	case ErrTypeHTTP:
		return fmt.Sprintf("Platform error (HTTP %d)", pe.StatusCode)
	case ErrTypeParse:
		return "Failed to parse platform response"
	default:
		return pe.Message
	}
}

// TroubleshootingHint returns longer advice for an error, for CLI output
func TroubleshootingHint(err error) string {
	var pe *PlatformError
	if !errors.As(err, &pe) {
		return "An unexpected error occurred. Please try again."
	}

	switch pe.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The platform did not respond in time.",
			"Troubleshooting:",
			"  • Check that the platform URL is correct",
			"  • Try increasing --timeout",
		}, "\n")
	case ErrTypeConnectionRefused, ErrTypeNetwork, ErrTypeDNS:
		return strings.Join([]string{
			"Could not reach the platform.",
			"Troubleshooting:",
			"  • Verify --url or the baseURL in your config file",
			"  • Run 'orderdesk discover' to find backends on the local network",
		}, "\n")
	case ErrTypeAuth:
		return "Set ORDERDESK_TOKEN to a valid API token."
	case ErrTypeAccessDenied:
		return "Your token does not grant access to this resource."
	case ErrTypeValidation:
		return "The platform rejected the request. Check the error message for details."
	default:
		return "An error occurred. Please check the error message for details."
	}
}
