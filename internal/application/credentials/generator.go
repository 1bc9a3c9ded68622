// Package credentials produces one-time secrets: temporary passwords handed out on
// approval and opaque tokens for password reset links.
package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

const (
	alphanumeric          = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	TemporaryPasswordSize = 6
	opaqueTokenBytes      = 32
)

// GenerateTemporaryPassword returns a 6-character alphanumeric password drawn uniformly
// from crypto/rand. Callers hash it before storage.
func GenerateTemporaryPassword() (string, error) {
	max := big.NewInt(int64(len(alphanumeric)))
	out := make([]byte, TemporaryPasswordSize)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphanumeric[n.Int64()]
	}
	return string(out), nil
}

// GenerateOpaqueToken returns 32 random bytes encoded as unpadded base64url (43 chars).
func GenerateOpaqueToken() (string, error) {
	b := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
