package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
)

// GenerateRSAKeyPair creates a new RSA key pair and returns it in the form the
// auth service reads from its environment: base64 PKCS8 DER for the private
// key and base64 X.509 (PKIX) DER for the public key.
func GenerateRSAKeyPair(bits int) (privateB64, publicB64 string, err error) {
	if bits < 2048 {
		return "", "", fmt.Errorf("cryptox: RSA key size must be at least 2048 bits")
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", "", fmt.Errorf("cryptox: failed to generate RSA key: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", "", fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("cryptox: failed to marshal public key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(privDER), base64.StdEncoding.EncodeToString(pubDER), nil
}
