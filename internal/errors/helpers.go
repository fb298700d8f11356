package errors

import (
	"errors"
	"net"
	"os"
)

// IsAuthError reports whether err indicates an authentication problem
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return true
	}
	if errors.Is(err, ErrNoAPIKey) || errors.Is(err, ErrAuthFailed) {
		return true
	}
	if status := GetHTTPStatus(err); status == 401 || status == 403 {
		return true
	}
	return false
}

// IsRateLimitError reports whether err indicates quota exhaustion
func IsRateLimitError(err error) bool {
	return GetHTTPStatus(err) == 429
}

// IsNetworkError reports whether err is a transport-level failure
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// IsTimeoutError reports whether err is a timeout
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}

// GetHTTPStatus extracts the HTTP status from an APIError in the chain,
// or 0 when none is present
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
