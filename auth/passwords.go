package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt work factor applied to all stored passwords.
const PasswordHashCost = 8

// HashPassword derives a salted one-way bcrypt hash from a raw password.
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), PasswordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword reports whether raw matches the stored bcrypt hash. A
// mismatch is a normal outcome, not an error.
func VerifyPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
