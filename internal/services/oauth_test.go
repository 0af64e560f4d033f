package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaskit_backend/internal/repositories"
	"saaskit_backend/internal/services/dto"
	"saaskit_backend/pkg/apperrors"
)

func TestOAuthCallbackProvisionsNewUser(t *testing.T) {
	db := testDB(t)
	container := newTestContainer(&recordingProvider{})
	svc := container.SessionService

	req := &dto.OAuthCallbackRequest{
		Provider:       "google",
		ProviderUserID: uniqueEmail("sub"),
		Email:          uniqueEmail("oauth"),
		Username:       "traveler",
	}

	resp, err := svc.HandleOAuthCallback(db, req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionToken)
	// The provider vouched for the email.
	assert.True(t, resp.User.EmailVerified)

	// A default organization exists for the new account.
	orgs, err := repositories.NewOrganizationRepository().FindForUser(db, resp.User.ID)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "traveler's org", orgs[0].Name)

	// A second callback for the same identity signs into the SAME account.
	again, err := svc.HandleOAuthCallback(db, req)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)
	assert.NotEqual(t, resp.SessionToken, again.SessionToken)
}

func TestOAuthCallbackLinksExistingAccount(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService

	user := createVerifiedUser(t, db, uniqueEmail("linked"), "password-123")

	resp, err := svc.HandleOAuthCallback(db, &dto.OAuthCallbackRequest{
		Provider:       "github",
		ProviderUserID: uniqueEmail("gh"),
		Email:          user.Email,
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestOAuthCallbackRequiresEmail(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService

	_, err := svc.HandleOAuthCallback(db, &dto.OAuthCallbackRequest{
		Provider:       "github",
		ProviderUserID: uniqueEmail("noemail"),
	})
	assert.ErrorIs(t, err, apperrors.ErrOAuthEmailRequired)
}
