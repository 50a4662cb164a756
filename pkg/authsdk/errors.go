package authsdk

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/stanza/pkg/httpx"
)

// Error codes returned by the service.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidDevice      = "invalid_device"
	ErrorCodeInvalidGrant       = "invalid_grant"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeSessionNotFound    = "session_not_found"
	ErrorCodeRateLimitExceeded  = "rate_limit_exceeded"
	ErrorCodeServerError        = "server_error"
)

// APIError is an error response from the service. It is the same shape the
// server writes, so handlers and clients share one type.
type APIError = httpx.Error

// IsErrorCode reports whether err is an *APIError carrying code.
func IsErrorCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a non-2xx response into an *APIError. Bearer
// failures carry no body, only a WWW-Authenticate challenge.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	if challenge := resp.Header.Get("WWW-Authenticate"); strings.HasPrefix(challenge, "Bearer") {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeInvalidToken,
			Description: bearerDescription(challenge),
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: http.StatusText(resp.StatusCode),
	}
}

// bearerDescription pulls error_description out of a Bearer challenge.
func bearerDescription(challenge string) string {
	const key = `error_description="`
	i := strings.Index(challenge, key)
	if i < 0 {
		return "unauthorized"
	}
	rest := challenge[i+len(key):]
	if j := strings.IndexByte(rest, '"'); j >= 0 {
		return rest[:j]
	}
	return rest
}
