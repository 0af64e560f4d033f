package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaskit_backend/internal/models"
	"saaskit_backend/internal/services/dto"
)

func TestValidateSignInRequest(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&dto.SignInRequest{
		Email:    "user@example.com",
		Password: "whatever",
	}))

	err := v.Validate(&dto.SignInRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	// Keys come from JSON tags, not struct field names.
	assert.Contains(t, vErr.Errors, "email")
	assert.Contains(t, vErr.Errors, "password")
}

func TestPasswordTag(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&dto.SignUpRequest{
		Email:    "user@example.com",
		Username: "user",
		Password: "longenough",
	}))

	err := v.Validate(&dto.SignUpRequest{
		Email:    "user@example.com",
		Username: "user",
		Password: "short",
	})
	require.Error(t, err)
	vErr := err.(*ValidationError)
	assert.Equal(t, "Must be between 8 and 72 characters", vErr.Errors["password"])
}

func TestOtpTag(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&dto.VerifyOtpRequest{
		Email: "user@example.com",
		Code:  "123456",
	}))

	for _, bad := range []string{"12345", "1234567", "12345a", "abcdef"} {
		err := v.Validate(&dto.VerifyOtpRequest{
			Email: "user@example.com",
			Code:  bad,
		})
		assert.Error(t, err, "code %q should be rejected", bad)
	}
}

func TestMembershipRoleTag(t *testing.T) {
	v := New()

	for _, role := range []string{"owner", "admin", "member"} {
		req := dto.InviteMemberRequest{
			Email: "user@example.com",
			Role:  models.MembershipRole(role),
		}
		assert.NoError(t, v.Validate(&req), role)
	}

	req := dto.InviteMemberRequest{
		Email: "user@example.com",
		Role:  models.MembershipRole("superuser"),
	}
	assert.Error(t, v.Validate(&req))
}
