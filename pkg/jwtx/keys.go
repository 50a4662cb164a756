package jwtx

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPrivateKey  = errors.New("jwtx: invalid private key")
	ErrPublicKey   = errors.New("jwtx: invalid public key")
	ErrKeyMismatch = errors.New("jwtx: public key does not match private key")
)

// KeyPart names which half of the signing pair failed to load.
type KeyPart string

const (
	PartPrivate KeyPart = "private"
	PartPublic  KeyPart = "public"
)

// KeyLoadError is returned when configured key material cannot be decoded.
// It matches ErrPrivateKey or ErrPublicKey with errors.Is, depending on which
// half was bad, and also unwraps to the parser error underneath.
type KeyLoadError struct {
	Part KeyPart
	Err  error
}

func (e *KeyLoadError) Error() string {
	return fmt.Sprintf("jwtx: load %s key: %v", e.Part, e.Err)
}

func (e *KeyLoadError) Unwrap() []error {
	sentinel := ErrPublicKey
	if e.Part == PartPrivate {
		sentinel = ErrPrivateKey
	}
	return []error{sentinel, e.Err}
}

// KeyPair is the RSA signing pair. It is decoded once at startup and never
// mutated, so it is safe to share across goroutines.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// LoadKeyPair decodes a base64 PKCS8 private key and a base64 X.509 (PKIX)
// public key. PEM armoured input is accepted too because that is what most
// tooling spits out. Both halves are decoded independently and both failures
// are reported, so "can sign but not verify" is obvious from the logs.
func LoadKeyPair(privateB64, publicB64 string) (*KeyPair, error) {
	priv, privErr := decodePrivateKey(privateB64)
	pub, pubErr := decodePublicKey(publicB64)
	if err := errors.Join(privErr, pubErr); err != nil {
		return nil, err
	}

	kp := &KeyPair{Private: priv, Public: pub}
	if err := kp.Validate(); err != nil {
		return nil, err
	}
	return kp, nil
}

// Validate checks that both keys are present and belong together.
func (kp *KeyPair) Validate() error {
	if kp == nil || kp.Private == nil || kp.Public == nil {
		return errors.New("jwtx: nil RSA key")
	}
	if !kp.Private.PublicKey.Equal(kp.Public) {
		return ErrKeyMismatch
	}
	return nil
}

func decodePrivateKey(encoded string) (*rsa.PrivateKey, error) {
	der, err := decodeKeyMaterial(encoded, "PRIVATE KEY")
	if err != nil {
		return nil, &KeyLoadError{Part: PartPrivate, Err: err}
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, &KeyLoadError{Part: PartPrivate, Err: fmt.Errorf("parse PKCS8: %w", err)}
	}

	rk, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, &KeyLoadError{Part: PartPrivate, Err: fmt.Errorf("not an RSA key (%T)", key)}
	}
	return rk, nil
}

func decodePublicKey(encoded string) (*rsa.PublicKey, error) {
	der, err := decodeKeyMaterial(encoded, "PUBLIC KEY")
	if err != nil {
		return nil, &KeyLoadError{Part: PartPublic, Err: err}
	}

	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, &KeyLoadError{Part: PartPublic, Err: fmt.Errorf("parse X.509: %w", err)}
	}

	rk, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, &KeyLoadError{Part: PartPublic, Err: fmt.Errorf("not an RSA key (%T)", key)}
	}
	return rk, nil
}

// decodeKeyMaterial returns the DER bytes from either a PEM block of the
// expected type or a bare base64 string (newlines and spaces ignored).
func decodeKeyMaterial(encoded, pemType string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, errors.New("missing key material")
	}

	if strings.HasPrefix(encoded, "-----BEGIN") {
		block, _ := pem.Decode([]byte(encoded))
		if block == nil {
			return nil, errors.New("invalid PEM")
		}
		if block.Type != pemType {
			return nil, fmt.Errorf("unsupported PEM type %q", block.Type)
		}
		return block.Bytes, nil
	}

	compact := strings.Join(strings.Fields(encoded), "")
	der, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return der, nil
}
