package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// bcrypt ignores everything past the first 72 bytes.
const maxPasswordBytes = 72

// HashPassword hashes an account password. A cost outside bcrypt's range
// falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password longer than %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword checks plain against an account's stored hash and reports
// domain.ErrInvalidCredentials on mismatch.
func VerifyPassword(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domain.ErrInvalidCredentials
	}
	return err
}
