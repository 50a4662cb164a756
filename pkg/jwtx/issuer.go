package jwtx

import (
	"time"

	"github.com/aussiebroadwan/stanza/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Issued is a freshly minted token with the times it was stamped with.
// Times are truncated to jwt.TimePrecision, same as the claims.
type Issued struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer mints and checks access and refresh tokens with one RSA key pair.
// It is stateless apart from the keys, so one instance serves every request.
type Issuer struct {
	signer   *RS256Signer
	verifier *RS256Verifier
	issuer   string
	now      func() time.Time
}

// Option customises an Issuer.
type Option func(*Issuer)

// WithClock replaces time.Now, mostly for tests that need to move time.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// WithIssuer sets the iss claim on access tokens.
func WithIssuer(issuer string) Option {
	return func(i *Issuer) { i.issuer = issuer }
}

// NewIssuer builds an Issuer from a loaded key pair.
func NewIssuer(keys *KeyPair, opts ...Option) (*Issuer, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}

	signer, err := NewSignerRS256(keys.Private)
	if err != nil {
		return nil, err
	}
	verifier, err := NewVerifierRS256(keys.Public)
	if err != nil {
		return nil, err
	}

	i := &Issuer{
		signer:   signer,
		verifier: verifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Now is the issuer's current time.
func (i *Issuer) Now() time.Time { return i.now().UTC() }

// IssueAccessToken signs a 24h access token for subject.
func (i *Issuer) IssueAccessToken(subject string, id Identity) (string, error) {
	if subject == "" {
		return "", ErrMissingSubject
	}
	return i.signer.Sign(TypeAccess, NewAccessClaims(subject, i.issuer, id, i.Now()), nil)
}

// IssueRefreshToken signs a 30 day refresh token for subject. A random
// nonce in the header makes every mint distinct, even within one second.
func (i *Issuer) IssueRefreshToken(subject string) (Issued, error) {
	if subject == "" {
		return Issued{}, ErrMissingSubject
	}

	claims := NewRefreshClaims(subject, i.Now())
	token, err := i.signer.Sign(TypeRefresh, claims, map[string]any{"nonce": idx.New().String()})
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		Token:     token,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ParseAccessClaims verifies the signature and returns the access claims.
// Expiry is not checked. The methods below accept access tokens only; a
// refresh token fails with ErrWrongType.
func (i *Issuer) ParseAccessClaims(token string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := i.verifier.Verify(token, TypeAccess, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// ExtractSubject verifies the signature and returns sub. Expiry is not
// checked here; use IsExpired or Validate for that.
func (i *Issuer) ExtractSubject(token string) (string, error) {
	var claims jwt.RegisteredClaims
	if err := i.verifier.Verify(token, TypeAccess, &claims); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// ExpiresAt verifies the signature and returns exp.
func (i *Issuer) ExpiresAt(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if err := i.verifier.Verify(token, TypeAccess, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrMissingExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired reports whether token is past its exp. Anything that does not
// verify counts as expired.
func (i *Issuer) IsExpired(token string) bool {
	exp, err := i.ExpiresAt(token)
	if err != nil {
		return true
	}
	return !exp.After(i.Now())
}

// CheckExpiry is IsExpired with the reason attached.
func (i *Issuer) CheckExpiry(token string) error {
	exp, err := i.ExpiresAt(token)
	if err != nil {
		return err
	}
	if !exp.After(i.Now()) {
		return ErrExpired
	}
	return nil
}

// Validate is true only when token verifies, belongs to expectedSubject and
// has not expired. The subject must come from the authenticated principal,
// never from the token itself.
func (i *Issuer) Validate(token, expectedSubject string) bool {
	if expectedSubject == "" {
		return false
	}

	subject, err := i.ExtractSubject(token)
	if err != nil || subject != expectedSubject {
		return false
	}
	return !i.IsExpired(token)
}

// Ready reports whether the issuer can sign and verify tokens.
func (i *Issuer) Ready() bool {
	return i != nil && i.signer != nil && i.verifier != nil
}
