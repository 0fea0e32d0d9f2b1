// Package auth generates opaque bearer tokens. Tokens are pure random
// bytes: nothing is encoded in them, so revocation is just clearing the
// stored value.
package auth

import (
	"crypto/rand"
	"encoding/base64"
)

type TokenSource struct {
	// Bytes of entropy per token before encoding; 32 yields a 43-char
	// URL-safe string.
	Bytes int
}

func NewTokenSource(n int) *TokenSource {
	if n <= 0 {
		n = 32
	}
	return &TokenSource{Bytes: n}
}

func (t *TokenSource) Generate() (string, error) {
	b := make([]byte, t.Bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
