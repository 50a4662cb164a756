package jwtx

import (
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// RS256Signer signs tokens with an RSA private key using RSA SHA-256.
type RS256Signer struct {
	key *rsa.PrivateKey
}

// NewSignerRS256 wraps an already decoded private key.
func NewSignerRS256(key *rsa.PrivateKey) (*RS256Signer, error) {
	if key == nil {
		return nil, errors.New("jwtx: nil RSA private key")
	}
	return &RS256Signer{key: key}, nil
}

func (s *RS256Signer) Alg() string { return jwt.SigningMethodRS256.Alg() }

// Sign turns the claims into a signed compact JWT of the given typ. Extra
// header fields are copied in; alg and typ cannot be overridden.
func (s *RS256Signer) Sign(typ string, claims jwt.Claims, header map[string]any) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	for k, v := range header {
		if k == "alg" || k == "typ" {
			continue
		}
		token.Header[k] = v
	}
	token.Header["typ"] = typ
	return token.SignedString(s.key)
}
