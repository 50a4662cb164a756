// Command keygen prints a fresh RSA signing pair in the form the auth
// service reads from AUTH_PRIVATE_KEY and AUTH_PUBLIC_KEY.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/aussiebroadwan/stanza/pkg/cryptox"
)

func main() {
	bits := flag.Int("bits", 2048, "RSA key size in bits (min 2048)")
	flag.Parse()

	priv, pub, err := cryptox.GenerateRSAKeyPair(*bits)
	if err != nil {
		log.Fatalf("failed to generate key pair: %v", err)
	}

	fmt.Printf("AUTH_PRIVATE_KEY=%s\n", priv)
	fmt.Printf("AUTH_PUBLIC_KEY=%s\n", pub)
}
