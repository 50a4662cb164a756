package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/stanza/pkg/jwtx"
	"github.com/aussiebroadwan/stanza/pkg/slogx"
)

// AccessTokenParser is the part of jwtx.Issuer the middleware needs.
type AccessTokenParser interface {
	ParseAccessClaims(token string) (*jwtx.AccessClaims, error)
	CheckExpiry(token string) error
}

// AuthnMiddleware requires a valid, unexpired Bearer access token and puts
// its claims into the request context.
func AuthnMiddleware(p AccessTokenParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

			claims, err := p.ParseAccessClaims(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}
			if claims.Subject == "" {
				writeBearerError(w, "token verification failed")
				return
			}

			if err := p.CheckExpiry(raw); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			ctx = slogx.With(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750 error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
