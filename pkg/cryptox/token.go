package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// OpaqueTokenSize is the entropy of an opaque token in bytes. It encodes to
// 43 base64url characters.
const OpaqueTokenSize = 32

// ErrRandomUnavailable reports a failure of the system random source.
var ErrRandomUnavailable = errors.New("cryptox: random source unavailable")

// OpaqueToken is a single-use secret handed to a user (reset link, email
// verification link, login challenge). Only Fingerprint is ever persisted.
type OpaqueToken struct {
	Value       string
	Fingerprint string
}

// NewOpaqueToken draws a token from the system CSPRNG.
func NewOpaqueToken() (OpaqueToken, error) {
	return NewOpaqueTokenFrom(rand.Reader)
}

// NewOpaqueTokenFrom is NewOpaqueToken with an explicit entropy source.
func NewOpaqueTokenFrom(r io.Reader) (OpaqueToken, error) {
	buf := make([]byte, OpaqueTokenSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return OpaqueToken{}, fmt.Errorf("%w: %w", ErrRandomUnavailable, err)
	}

	value := base64.RawURLEncoding.EncodeToString(buf)
	return OpaqueToken{Value: value, Fingerprint: FingerprintToken(value)}, nil
}

// FingerprintToken returns the base64url SHA-256 of a presented token, the
// form it is looked up by.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
