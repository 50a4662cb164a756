package authsdk

import (
	"context"
	"errors"
	"net/http"
)

// ErrNotReady is returned by GetReadiness alongside the report when the
// service answered 503.
var ErrNotReady = errors.New("authsdk: service not ready")

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/livez", nil, "")
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service is ready. A degraded service still
// returns its report so the failing check can be inspected.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/readyz", nil, "")
	if err != nil {
		return nil, err
	}
	status := resp.StatusCode

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK, http.StatusServiceUnavailable); err != nil {
		return nil, err
	}
	if status == http.StatusServiceUnavailable {
		return &health, ErrNotReady
	}
	return &health, nil
}
