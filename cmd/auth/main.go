package main

import (
	"errors"
	"log"

	"github.com/aussiebroadwan/stanza/internal/auth/app"
	"github.com/aussiebroadwan/stanza/pkg/jwtx"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		var keyErr *jwtx.KeyLoadError
		if errors.As(err, &keyErr) {
			log.Fatalf("unusable %s signing key, check AUTH_PRIVATE_KEY and AUTH_PUBLIC_KEY: %v", keyErr.Part, err)
		}
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
