package authsdk

import (
	"context"
	"net/http"
)

// LoginGrant posts credentials to /v1/auth/login and returns the raw token
// pair. Most callers want Login instead.
func (c *SDKClient) LoginGrant(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/auth/login", req, "")
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*AccessTokenResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return nil, err
	}

	var tokenResp AccessTokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// Logout signs out the user that owns accessToken. The refresh token and
// the device it was bound to are deleted server side.
func (c *SDKClient) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, accessToken)
	if err != nil {
		return err
	}
	return expectNoContent(resp)
}
