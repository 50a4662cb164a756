package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/store"
	"github.com/aussiebroadwan/stanza/pkg/authsdk"
	"github.com/aussiebroadwan/stanza/pkg/httpx"
	"github.com/aussiebroadwan/stanza/pkg/jwtx"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
)

// LivezHandler godoc
//
//	@Summary		Liveness Check Endpoint
//	@Description	Returns 200 with uptime and version as long as the process is serving requests
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, health(statusOK, startTime, version, nil))
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Reports whether the store answers a ping and the RSA key pair is loaded
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"one or more checks failed"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	issuer *jwtx.Issuer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{Database: statusOK, Signer: statusOK}

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
		}
		if !issuer.Ready() {
			checks.Signer = "error: no keys loaded"
		}

		if checks.Database != statusOK || checks.Signer != statusOK {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, health(statusDegraded, startTime, version, checks))
			return
		}
		httpx.WriteJSON(w, http.StatusOK, health(statusOK, startTime, version, checks))
	}
}

func health(status string, startTime time.Time, version string, checks *authsdk.HealthChecks) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(startTime).Round(time.Second).String(),
		Version: version,
		Checks:  checks,
	}
}
