package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/andriandrian/lifeline-admin/internal/validation"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// AuthenticationError is a rejected login. Message comes verbatim from the API.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Message
}

// RefreshError ends the session: the refresh call failed, cookies were cleared
// and the app was sent to the login route.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("session expired: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

var errNoReplayBody = errors.New("request body cannot be replayed")

type Kind int

const (
	KindNone Kind = iota
	KindAuthentication
	KindRefresh
	KindValidation
	KindNotFound
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuthentication:
		return "authentication"
	case KindRefresh:
		return "refresh"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "remote"
	}
}

// Classify maps an error from any client call onto the failure kinds the UI reacts to.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var authErr *AuthenticationError
	var refreshErr *RefreshError
	var validationErr *validation.Error
	switch {
	case errors.As(err, &refreshErr):
		return KindRefresh
	case errors.As(err, &authErr):
		return KindAuthentication
	case errors.As(err, &validationErr):
		return KindValidation
	case IsStatus(err, http.StatusNotFound):
		return KindNotFound
	default:
		return KindRemote
	}
}

// Notice is the short message shown to the operator for err.
func Notice(err error) string {
	var authErr *AuthenticationError
	var validationErr *validation.Error
	var httpErr *HTTPError

	switch Classify(err) {
	case KindNone:
		return ""
	case KindAuthentication:
		errors.As(err, &authErr)
		return authErr.Message
	case KindRefresh:
		return "Your session has ended. Please log in again."
	case KindValidation:
		errors.As(err, &validationErr)
		return validationErr.Error()
	case KindNotFound:
		return "The requested record was not found."
	default:
		if errors.As(err, &httpErr) && httpErr.Message != "" {
			return httpErr.Message
		}
		return "Something went wrong while contacting the server."
	}
}
