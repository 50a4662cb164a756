package http

import (
	"net/http"

	"github.com/aussiebroadwan/stanza/internal/auth/service"
	"github.com/aussiebroadwan/stanza/pkg/authsdk"
	"github.com/aussiebroadwan/stanza/pkg/httpx"
	"github.com/aussiebroadwan/stanza/pkg/jwtx"
	"github.com/aussiebroadwan/stanza/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh. The refresh token is never
// rotated; only a new access token is returned.
type RefreshHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Refresh Access Token
//	@Description	Exchanges an active, unexpired refresh token for a new 24 hour access token.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.AccessTokenResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		401		{object}	authsdk.APIError	"invalid_grant - expired or revoked"
//	@Failure		404		{object}	authsdk.APIError	"session_not_found - unknown token"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		log.Debug("refresh body rejected", "err", err)
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	access, err := h.SessionService.RefreshAccessToken(ctx, req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.AccessTokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(jwtx.AccessTokenTTL.Seconds()),
	})
}
