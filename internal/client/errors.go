// ABOUTME: Error taxonomy for backend calls
// ABOUTME: Sentinels for auth/timeout failures and a typed error for non-2xx replies

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthExpired means the session could not be recovered by a refresh
	ErrAuthExpired = errors.New("session expired")
	// ErrNetworkTimeout means the request was aborted by a client-side deadline
	ErrNetworkTimeout = errors.New("request timed out")
	// ErrRequestCanceled means the caller canceled the request
	ErrRequestCanceled = errors.New("request canceled")
	// ErrInvalidServerResponse means a 2xx reply did not have the expected shape
	ErrInvalidServerResponse = errors.New("invalid response from server")
	// ErrNoRefreshToken means a refresh was needed but none is stored
	ErrNoRefreshToken = errors.New("no refresh token stored")
)

// BackendError is a non-2xx reply from the backend
type BackendError struct {
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error: %s", e.Detail)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// errorBody covers both {"detail": ...} and {"error": ...} payloads
type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func newBackendError(status int, body []byte) *BackendError {
	be := &BackendError{StatusCode: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		be.Detail = eb.Detail
		if be.Detail == "" {
			be.Detail = eb.Error
		}
	}
	return be
}

// IsUnauthorized reports whether err is an authorization failure
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrAuthExpired) {
		return true
	}
	var be *BackendError
	return errors.As(err, &be) && be.StatusCode == http.StatusUnauthorized
}

// IsTimeout reports whether err came from a client-side abort
func IsTimeout(err error) bool {
	return errors.Is(err, ErrNetworkTimeout) || errors.Is(err, ErrRequestCanceled)
}

// Detail returns the backend's detail message if err carries one
func Detail(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Detail
	}
	return ""
}
