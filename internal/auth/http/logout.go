package http

import (
	"net/http"

	"github.com/aussiebroadwan/stanza/internal/auth/service"
	"github.com/aussiebroadwan/stanza/pkg/httpx"
)

// LogoutHandler serves POST /v1/auth/logout for the user named by the
// Bearer token.
type LogoutHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Sign Out
//	@Description	Deletes the caller's active refresh token and the device it was bound to.
//	@Description	Access tokens already issued stay valid until they expire.
//	@Tags			Session
//	@Produce		json
//	@Security		BearerAuth
//	@Success		204	"Signed out"
//	@Failure		401	"Missing, invalid or expired access token"
//	@Failure		404	{object}	authsdk.APIError	"session_not_found"
//	@Failure		429	{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.SessionService.RevokeSession(ctx, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
