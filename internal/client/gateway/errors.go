package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Identity errors reported by the identity provider.
var (
	ErrDuplicateEmail = errors.New("email already in use")
	ErrWeakPassword   = errors.New("weak password")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrUserNotFound   = errors.New("user not found")
	ErrWrongPassword  = errors.New("wrong password")
)

// ErrUnauthenticated is returned by operations that need a signed-in user.
var ErrUnauthenticated = errors.New("not signed in")

var codeErrors = map[string]error{
	"auth/email-already-in-use": ErrDuplicateEmail,
	"auth/weak-password":        ErrWeakPassword,
	"auth/invalid-email":        ErrInvalidEmail,
	"auth/user-not-found":       ErrUserNotFound,
	"auth/wrong-password":       ErrWrongPassword,
	"UNAUTHORIZED":              ErrUnauthenticated,
}

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s: %s", e.Code, e.Message)
}

// Unwrap exposes the sentinel matching the error code, if any.
func (e *APIError) Unwrap() error {
	return codeErrors[e.Code]
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	var env struct {
		Error *APIError `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}

var authMessages = []struct {
	err error
	msg string
}{
	{ErrUserNotFound, "User with this email does not exist"},
	{ErrWrongPassword, "Incorrect password"},
	{ErrDuplicateEmail, "This email is already registered"},
	{ErrInvalidEmail, "Invalid email address"},
	{ErrWeakPassword, "Password should be at least 6 characters"},
}

// AuthErrorMessage returns the user-facing message for an identity error.
func AuthErrorMessage(err error) string {
	for _, m := range authMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Authentication error. Please try again."
}
