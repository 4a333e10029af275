package netatmo

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the Netatmo client.
// All errors are defined here for easy discovery and consistent organization.
var (
	// Authentication errors
	ErrNotAuthenticated = errors.New("netatmo: not authenticated (call Authenticate first)")
	ErrUnauthorized     = errors.New("netatmo: unauthorized (invalid or expired token)")

	// Resource errors
	ErrNotFound = errors.New("netatmo: resource not found")
	ErrNoDevice = errors.New("netatmo: account has no device of the requested kind")

	// Rate limiting
	ErrRateLimited = errors.New("netatmo: rate limited (too many requests)")

	// Capability gate
	ErrUnsupportedCapability = errors.New("netatmo: module does not support the capability implied by this attribute")

	// Schema drift
	ErrUnexpectedResponse = errors.New("netatmo: unexpected response shape from backend")

	// Validation errors
	ErrEmptyModuleID   = errors.New("netatmo: module ID cannot be empty")
	ErrEmptyHomeID     = errors.New("netatmo: home ID cannot be empty")
	ErrEmptyRoomID     = errors.New("netatmo: room ID cannot be empty")
	ErrEmptyScheduleID = errors.New("netatmo: schedule ID cannot be empty")
	ErrNilAuth         = errors.New("netatmo: token source cannot be nil")
	ErrNilToken        = errors.New("netatmo: token cannot be nil")
)

// AuthReason classifies authentication failures.
type AuthReason string

// Authentication failure reasons.
const (
	// ReasonInvalidCredentials means the initial password grant was rejected.
	// Retrying with the same credentials will not help.
	ReasonInvalidCredentials AuthReason = "invalid_credentials"
	// ReasonRefreshRejected means the backend rejected the refresh token.
	// The session cannot recover without re-authentication.
	ReasonRefreshRejected AuthReason = "refresh_rejected"
)

// AuthError represents a grant rejected by the token endpoint.
// Retrying will not help without re-authentication.
type AuthError struct {
	Reason      AuthReason
	Code        string // OAuth "error" field, e.g. "invalid_grant"
	Description string // OAuth "error_description" field
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("netatmo: auth failed (%s): %s - %s", e.Reason, e.Code, e.Description)
	}
	return fmt.Sprintf("netatmo: auth failed (%s): %s", e.Reason, e.Code)
}

// NetworkError wraps a transport-level failure. These are transient and
// retrying may help.
type NetworkError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("netatmo: %s: network error: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying error was a timeout.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// MalformedCatalogError indicates the catalog response could not be parsed
// into the expected shape.
type MalformedCatalogError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *MalformedCatalogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("netatmo: malformed catalog: %s: %v", e.Reason, e.Err)
	}
	return "netatmo: malformed catalog: " + e.Reason
}

// Unwrap returns the underlying parse error, if any.
func (e *MalformedCatalogError) Unwrap() error { return e.Err }

// APIError represents a non-OK response from the Netatmo API.
type APIError struct {
	StatusCode int
	Code       int // Netatmo error code from the response body, if present
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("netatmo: API error %d: %s (code: %d)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("netatmo: API error %d: %s", e.StatusCode, e.Message)
}

// IsAuthError returns true if the error is a rejected grant.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsInvalidCredentials returns true if the initial credential exchange was rejected.
func IsInvalidCredentials(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Reason == ReasonInvalidCredentials
}

// IsRefreshRejected returns true if the backend rejected a refresh token.
func IsRefreshRejected(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Reason == ReasonRefreshRejected
}

// IsNetworkError returns true if the error is a transient transport failure.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeout returns true if the error indicates a timeout, including a
// context deadline exceeded while waiting for a shared refresh.
func IsTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// IsUnauthorized returns true if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsNotFound returns true if the error indicates the resource was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// IsMalformedCatalog returns true if the catalog response could not be parsed.
func IsMalformedCatalog(err error) bool {
	var malErr *MalformedCatalogError
	return errors.As(err, &malErr)
}

// IsRetryable returns true for failures where a caller retry is likely to
// help: transport errors, timeouts, rate limits and 5xx responses. Rejected
// grants and capability-gate violations are never retryable.
func IsRetryable(err error) bool {
	if IsAuthError(err) {
		return false
	}
	if IsNetworkError(err) || IsTimeout(err) || IsRateLimited(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 && apiErr.StatusCode < 600
	}
	return false
}
