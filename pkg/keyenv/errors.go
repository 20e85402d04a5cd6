package keyenv

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingToken is returned by New when the config carries no service
// token. No request is attempted.
var ErrMissingToken = errors.New("keyenv: service token is required")

// APIError is the single error type for every failed API call.
//
// All failure modes collapse into it: transport failures carry StatusCode 0
// with the transport error text as Message, timeouts carry StatusCode 408
// (synthesized client-side when the transport reports a timeout, not
// necessarily an HTTP 408 from the server), and HTTP errors carry the
// server's status with Message, Code, and Details taken from the decoded
// error body when one was present.
type APIError struct {
	Op         string // operation that failed: "get_secret", "create_secret", ...
	StatusCode int    // HTTP status; 0 when the server was never reached
	Code       string // optional API-defined error code
	Message    string
	Details    map[string]any
	Err        error // underlying transport error, if any
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		if e.Code != "" {
			return fmt.Sprintf("keyenv %s error (status %d, code %s): %s", e.Op, e.StatusCode, e.Code, e.Message)
		}
		return fmt.Sprintf("keyenv %s error (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("keyenv %s error: %s", e.Op, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether the server answered 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether the server rejected the token with 401.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsTimeout reports whether the request timed out, either reported by the
// server or synthesized from a transport-level timeout.
func (e *APIError) IsTimeout() bool {
	return e.StatusCode == http.StatusRequestTimeout
}

// IsNotFound returns true if err is an *APIError for a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}

// IsUnauthorized returns true if err is an *APIError for a rejected token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// IsTimeout returns true if err is an *APIError for a timed-out request.
func IsTimeout(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsTimeout()
}
