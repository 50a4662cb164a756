package http

import (
	"net/http"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
	"github.com/aussiebroadwan/stanza/internal/auth/service"
	"github.com/aussiebroadwan/stanza/pkg/authsdk"
	"github.com/aussiebroadwan/stanza/pkg/httpx"
	"github.com/aussiebroadwan/stanza/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Sign In
//	@Description	Checks email and password, registers the device and returns a token pair.
//	@Description	If the user already has an active refresh token it is returned unchanged, whichever device it was issued on.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials and device"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request, invalid_device"
//	@Failure		401		{object}	authsdk.APIError	"invalid_credentials"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Header			200		{string}	Cache-Control	"no-store"
//	@Header			200		{string}	Pragma			"no-cache"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		log.Debug("login body rejected", "err", err)
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.SessionService.Login(ctx, req.Email, req.Password, domain.DeviceInfo{
		Code: req.DeviceCode,
		Type: req.DeviceType,
		Name: req.DeviceName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}
