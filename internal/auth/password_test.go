package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaskit_backend/pkg/apperrors"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct horse battery", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
	assert.NotEqual(t, "correct horse battery", hash)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("12345678"))
	assert.NoError(t, ValidatePassword(strings.Repeat("x", 72)))

	assert.ErrorIs(t, ValidatePassword("1234567"), apperrors.ErrWeakPassword)
	assert.ErrorIs(t, ValidatePassword(""), apperrors.ErrWeakPassword)
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("x", 73)), apperrors.ErrWeakPassword)
}
