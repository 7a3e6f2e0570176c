// Package cryptox hashes and verifies space secrets.
package cryptox

import (
	"errors"
	"fmt"

	"github.com/kentxun/anymind/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor for stored secrets. Tests lower it.
var Cost = bcrypt.DefaultCost

// HashSecret returns a bcrypt hash of secret.
func HashSecret(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), Cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(h), nil
}

// VerifySecret compares secret with a hash produced by HashSecret.
// A mismatch yields common.ErrUnauthorized.
func VerifySecret(hash, secret string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrUnauthorized
	}
	return fmt.Errorf("verify secret: %w", err)
}
