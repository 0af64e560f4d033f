package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Lowercase base32 without padding, matching the cookie-friendly session
// token format.
var base32Lower = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// GenerateSessionToken returns the opaque bearer credential handed to the
// client: 20 random bytes, base32-lowercase encoded.
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, 20)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base32Lower.EncodeToString(bytes), nil
}

// SessionIDFromToken derives the server-side session lookup key.
// Deterministic, so a presented token always resolves to the same row.
func SessionIDFromToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GeneratePasswordResetToken returns a 32-byte base64url token. Higher
// entropy than session tokens because it travels in an emailed link.
func GeneratePasswordResetToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// HashToken derives the stored lookup hash for one-time tokens
// (password reset, email verification).
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// HashOtpCode derives the stored lookup hash for OTP codes.
func HashOtpCode(code string) string {
	return HashToken(code)
}

var ten = big.NewInt(10)

// GenerateOtpCode returns a 6-digit numeric code. Each digit is an
// independent uniform draw, avoiding modulo bias over the full range.
func GenerateOtpCode() (string, error) {
	code := make([]byte, 6)
	for i := range code {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to read random digit: %w", err)
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
