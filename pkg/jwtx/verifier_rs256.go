package jwtx

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// RS256Verifier checks RS256 signatures against a single public key. It does
// not validate time based claims; the Issuer does that against its own clock.
type RS256Verifier struct {
	pub    *rsa.PublicKey
	parser *jwt.Parser
}

// NewVerifierRS256 creates a verifier for the given public key.
func NewVerifierRS256(pub *rsa.PublicKey) (*RS256Verifier, error) {
	if pub == nil {
		return nil, errors.New("jwtx: nil RSA public key")
	}

	return &RS256Verifier{
		pub: pub,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithStrictDecoding(), // padding bit flips must not verify
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Verify parses tokenStr into claims, checks the signature and requires the
// typ header to be typ.
func (v *RS256Verifier) Verify(tokenStr, typ string, claims jwt.Claims) error {
	token, err := v.parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return v.pub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return fmt.Errorf("%w: %v", ErrInvalidSig, err)
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !token.Valid {
		return ErrInvalidSig
	}
	if got, _ := token.Header["typ"].(string); got != typ {
		return fmt.Errorf("%w: got %q, want %q", ErrWrongType, got, typ)
	}
	return nil
}
