package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/stanza/internal/auth/service"
	"github.com/aussiebroadwan/stanza/pkg/httpx"
	"github.com/aussiebroadwan/stanza/pkg/slogx"
)

// writeServiceError maps service sentinels to responses. Anything unknown
// is logged and hidden behind server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidDevice):
		httpx.ErrInvalidDevice.WriteError(w)
	case errors.Is(err, service.ErrInvalidPrincipal):
		httpx.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrSessionNotFound):
		httpx.ErrSessionNotFound.WriteError(w)
	case errors.Is(err, service.ErrSessionExpired):
		httpx.ErrInvalidGrant.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.ErrServerError.WriteError(w)
	}
}
