package common

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RandomToken returns prefix followed by n random bytes encoded as unpadded
// base64url.
func RandomToken(prefix string, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random token: %w", err)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// WipeByteArray overwrites b with zeros.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
