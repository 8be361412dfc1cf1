package shared

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrInvalidState     = fmt.Errorf("invalid state parameter")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrChannelNotFound    = fmt.Errorf("channel not found")
	ErrUploadIncomplete   = fmt.Errorf("upload did not complete")
	ErrSessionNotFound    = fmt.Errorf("session not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// AuthenticationError reports a missing, invalid or expired token bundle.
//
// It is a precondition failure and is never retried.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return ErrNotAuthenticated.Error()
	}
	return fmt.Sprintf("%v: %v", ErrNotAuthenticated, e.Err)
}

func (e *AuthenticationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNotAuthenticated}
	}
	return []error{ErrNotAuthenticated, e.Err}
}

// RemoteAPIError reports a failed call to the YouTube Data API.
type RemoteAPIError struct {
	// Op names the remote call, e.g. "playlistItems.list"
	Op string
	// StatusCode is the HTTP status returned by the API, 0 for transport failures
	StatusCode int
	Err        error
}

func (e *RemoteAPIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteAPIError) Unwrap() []error {
	return []error{ErrAPIRequest, e.Err}
}

// RateLimited reports whether the API rejected the call for quota or rate reasons.
func (e *RemoteAPIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusForbidden
}

// NotFound reports whether the target resource does not exist.
func (e *RemoteAPIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// ValidationError reports bad caller input such as a disallowed upload file type.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// UploadError is the terminal failure of a video upload.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s failed: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is (or wraps) an [AuthenticationError].
func IsAuthError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsRemoteError reports whether err is (or wraps) a [RemoteAPIError].
func IsRemoteError(err error) bool {
	var apiErr *RemoteAPIError
	return errors.As(err, &apiErr)
}
