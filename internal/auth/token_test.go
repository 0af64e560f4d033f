package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken()
	require.NoError(t, err)

	// 20 bytes in base32 without padding is always 32 chars.
	assert.Len(t, token, 32)
	for _, r := range token {
		assert.Contains(t, "abcdefghijklmnopqrstuvwxyz234567", string(r))
	}

	other, err := GenerateSessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestSessionIDFromToken(t *testing.T) {
	id := SessionIDFromToken("some-token")

	assert.Len(t, id, 64)
	assert.Equal(t, id, SessionIDFromToken("some-token"))
	assert.NotEqual(t, id, SessionIDFromToken("some-other-token"))
}

func TestGeneratePasswordResetToken(t *testing.T) {
	token, err := GeneratePasswordResetToken()
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}

func TestHashToken(t *testing.T) {
	assert.Len(t, HashToken("abc"), 64)
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Equal(t, HashToken("123456"), HashOtpCode("123456"))
}

func TestGenerateOtpCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateOtpCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "unexpected rune %q in otp", r)
		}
	}
}
