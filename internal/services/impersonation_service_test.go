package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaskit_backend/internal/auth"
	"saaskit_backend/internal/models"
	"saaskit_backend/internal/repositories"
	"saaskit_backend/internal/services/dto"
	"saaskit_backend/pkg/apperrors"
)

func TestImpersonationLifecycle(t *testing.T) {
	db := testDB(t)
	container := newTestContainer(&recordingProvider{})

	admin := createVerifiedUser(t, db, uniqueEmail("admin"), "password-123")
	require.NoError(t, repositories.NewUserRepository().UpdateRole(db, admin.ID, models.UserRoleAdmin))
	target := createVerifiedUser(t, db, uniqueEmail("target"), "password-123")

	signed, err := container.SessionService.SignInWithEmail(db, &dto.SignInRequest{
		Email:    admin.Email,
		Password: "password-123",
	})
	require.NoError(t, err)
	sessionID := auth.SessionIDFromToken(signed.SessionToken)

	require.NoError(t, container.ImpersonationService.Start(db, sessionID, admin.ID, target.ID))

	// The same token now resolves to the target user.
	v, err := container.SessionService.Validate(db, signed.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, v.Session)
	assert.Equal(t, target.ID, v.User.ID)
	require.NotNil(t, v.Session.ImpersonatorUserID)
	assert.Equal(t, admin.ID, *v.Session.ImpersonatorUserID)

	require.NoError(t, container.ImpersonationService.Stop(db, sessionID, admin.ID))

	v, err = container.SessionService.Validate(db, signed.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, v.Session)
	assert.Equal(t, admin.ID, v.User.ID)
	assert.Nil(t, v.Session.ImpersonatorUserID)
}

func TestImpersonationUnknownTarget(t *testing.T) {
	db := testDB(t)
	container := newTestContainer(&recordingProvider{})

	admin := createVerifiedUser(t, db, uniqueEmail("admin2"), "password-123")
	signed, err := container.SessionService.SignInWithEmail(db, &dto.SignInRequest{
		Email:    admin.Email,
		Password: "password-123",
	})
	require.NoError(t, err)

	err = container.ImpersonationService.Start(
		db,
		auth.SessionIDFromToken(signed.SessionToken),
		admin.ID,
		"00000000-0000-0000-0000-000000000000",
	)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestStopImpersonationRequiresMatchingAdmin(t *testing.T) {
	db := testDB(t)
	container := newTestContainer(&recordingProvider{})

	admin := createVerifiedUser(t, db, uniqueEmail("admin3"), "password-123")
	target := createVerifiedUser(t, db, uniqueEmail("target3"), "password-123")

	signed, err := container.SessionService.SignInWithEmail(db, &dto.SignInRequest{
		Email:    admin.Email,
		Password: "password-123",
	})
	require.NoError(t, err)
	sessionID := auth.SessionIDFromToken(signed.SessionToken)

	require.NoError(t, container.ImpersonationService.Start(db, sessionID, admin.ID, target.ID))

	// Only the admin who started it can stop it.
	err = container.ImpersonationService.Stop(db, sessionID, target.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}
