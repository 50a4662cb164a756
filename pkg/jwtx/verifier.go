package jwtx

import "errors"

// Token parse failures. Callers outside this package should never see these
// directly; the Issuer turns them into "invalid" or "expired".
var (
	ErrMalformed      = errors.New("jwtx: malformed token")
	ErrInvalidSig     = errors.New("jwtx: invalid signature")
	ErrExpired        = errors.New("jwtx: token expired")
	ErrMissingSubject = errors.New("jwtx: missing subject")
	ErrMissingExpiry  = errors.New("jwtx: missing expiry")
	ErrWrongType      = errors.New("jwtx: wrong token type")
)
