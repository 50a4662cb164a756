package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/stanza/pkg/jwtx"
)

// InitIssuer decodes the configured RSA pair and builds the token issuer.
// A bad key is fatal: the service cannot mint or check anything without it,
// so the *jwtx.KeyLoadError is returned for the caller to exit on.
//
// Keys are fixed for the life of the process. Rotating them means restarting
// with a new pair, which invalidates every access token already issued;
// refresh tokens survive because they are looked up by value.
func InitIssuer(cfg Config, logger *slog.Logger) (*jwtx.Issuer, error) {
	keys, err := jwtx.LoadKeyPair(cfg.PrivateKey, cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}

	issuer, err := jwtx.NewIssuer(keys, jwtx.WithIssuer(cfg.Issuer))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	logger.Info("signing keys loaded",
		"algorithm", "RS256",
		"bits", keys.Public.N.BitLen(),
		"issuer", cfg.Issuer,
	)

	return issuer, nil
}
