package auth

import (
	"golang.org/x/crypto/bcrypt"

	"saaskit_backend/pkg/apperrors"
)

const (
	MinPasswordLength = 8
	// bcrypt silently truncates beyond 72 bytes, so longer inputs are rejected.
	MaxPasswordLength = 72
)

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash verifies a password against a stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePassword enforces the length bounds of the password policy.
// The breach-database check lives in the services, next to the network call.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return apperrors.ErrWeakPassword
	}
	return nil
}
