package httpx

import (
	"fmt"
	"net/http"
)

// Error is a JSON error response: {"error": code, "error_description": ...}.
type Error struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e to w.
func (e *Error) WriteError(w http.ResponseWriter) {
	WriteJSON(w, e.StatusCode, e)
}

var (
	ErrInvalidRequest = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "the request is malformed or missing required parameters",
	}
	ErrInvalidCredentials = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_credentials",
		Description: "invalid credentials",
	}
	ErrInvalidDevice = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_device",
		Description: "device_code is required and must belong to the signing-in user",
	}
	ErrInvalidGrant = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_grant",
		Description: "the refresh token is expired or revoked",
	}
	ErrSessionNotFound = &Error{
		StatusCode:  http.StatusNotFound,
		Code:        "session_not_found",
		Description: "no active session",
	}
	ErrServerError = &Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        "server_error",
		Description: "the server encountered an unexpected condition",
	}
)
