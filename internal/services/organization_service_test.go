package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaskit_backend/internal/auth"
	"saaskit_backend/internal/email"
	"saaskit_backend/internal/models"
	"saaskit_backend/internal/repositories"
	"saaskit_backend/internal/services/dto"
	"saaskit_backend/pkg/apperrors"
)

func TestCreateOrganization(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).OrganizationService

	user := createVerifiedUser(t, db, uniqueEmail("orgowner"), "password-123")

	org, err := svc.Create(db, user.ID, &dto.CreateOrganizationRequest{Name: "Side Project"})
	require.NoError(t, err)
	assert.Equal(t, "Side Project", org.Name)

	membership, err := repositories.NewOrganizationRepository().FindMembership(db, org.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, models.MembershipRoleOwner, membership.Role)
}

func TestGetOrganizationRequiresMembership(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).OrganizationService

	owner := createVerifiedUser(t, db, uniqueEmail("owner"), "password-123")
	outsider := createVerifiedUser(t, db, uniqueEmail("outsider"), "password-123")

	org, err := svc.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Private"})
	require.NoError(t, err)

	_, err = svc.Get(db, org.ID, outsider.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotAMember)

	got, err := svc.Get(db, org.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, org.ID, got.ID)
}

func TestUpdateOrganization(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).OrganizationService

	owner := createVerifiedUser(t, db, uniqueEmail("renamer"), "password-123")
	org, err := svc.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Before"})
	require.NoError(t, err)

	updated, err := svc.Update(db, org.ID, owner.ID, &dto.UpdateOrganizationRequest{
		Name:     "After",
		Settings: map[string]interface{}{"theme": "dark"},
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
}

func TestDeleteOrganizationOwnerOnly(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).OrganizationService

	owner := createVerifiedUser(t, db, uniqueEmail("delowner"), "password-123")
	admin := createVerifiedUser(t, db, uniqueEmail("deladmin"), "password-123")

	org, err := svc.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Doomed"})
	require.NoError(t, err)
	require.NoError(t, repositories.NewOrganizationRepository().CreateMembership(db, &models.Membership{
		OrganizationID: org.ID,
		UserID:         admin.ID,
		Role:           models.MembershipRoleAdmin,
	}))

	err = svc.Delete(db, org.ID, admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	require.NoError(t, svc.Delete(db, org.ID, owner.ID))
	_, err = svc.Get(db, org.ID, owner.ID)
	assert.Error(t, err)
}

func TestInvitationFlow(t *testing.T) {
	db := testDB(t)
	provider := &recordingProvider{}
	container := newTestContainer(provider)
	svc := container.OrganizationService

	owner := createVerifiedUser(t, db, uniqueEmail("inviter"), "password-123")
	invitee := createVerifiedUser(t, db, uniqueEmail("invitee"), "password-123")

	org, err := svc.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Team"})
	require.NoError(t, err)

	inv, err := svc.Invite(db, org.ID, owner.ID, &dto.InviteMemberRequest{
		Email: invitee.Email,
		Role:  models.MembershipRoleMember,
	})
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusPending, inv.Status)

	sent := provider.last(t)
	assert.Equal(t, email.TemplateInvitation, sent.Template)
	token := tokenFromLink(t, sent.Data)

	accepted, err := svc.AcceptInvitation(db, invitee.ID, token)
	require.NoError(t, err)
	assert.Equal(t, org.ID, accepted.ID)

	membership, err := repositories.NewOrganizationRepository().FindMembership(db, org.ID, invitee.ID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, models.MembershipRoleMember, membership.Role)

	// The invitation is single use.
	_, err = svc.AcceptInvitation(db, invitee.ID, token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestInviteRequiresManager(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).OrganizationService

	owner := createVerifiedUser(t, db, uniqueEmail("boss"), "password-123")
	member := createVerifiedUser(t, db, uniqueEmail("plain"), "password-123")

	org, err := svc.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Strict"})
	require.NoError(t, err)
	require.NoError(t, repositories.NewOrganizationRepository().CreateMembership(db, &models.Membership{
		OrganizationID: org.ID,
		UserID:         member.ID,
		Role:           models.MembershipRoleMember,
	}))

	_, err = svc.Invite(db, org.ID, member.ID, &dto.InviteMemberRequest{
		Email: uniqueEmail("nobody"),
		Role:  models.MembershipRoleMember,
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
}

func TestInviteAsOwnerRejected(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).OrganizationService

	owner := createVerifiedUser(t, db, uniqueEmail("soleowner"), "password-123")
	org, err := svc.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "One Throne"})
	require.NoError(t, err)

	_, err = svc.Invite(db, org.ID, owner.ID, &dto.InviteMemberRequest{
		Email: uniqueEmail("pretender"),
		Role:  models.MembershipRoleOwner,
	})
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestAcceptInvitationAlreadyMember(t *testing.T) {
	db := testDB(t)
	provider := &recordingProvider{}
	svc := newTestContainer(provider).OrganizationService

	owner := createVerifiedUser(t, db, uniqueEmail("own4"), "password-123")
	org, err := svc.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Crowded"})
	require.NoError(t, err)

	_, err = svc.Invite(db, org.ID, owner.ID, &dto.InviteMemberRequest{
		Email: owner.Email,
		Role:  models.MembershipRoleMember,
	})
	require.NoError(t, err)
	token := tokenFromLink(t, provider.last(t).Data)

	_, err = svc.AcceptInvitation(db, owner.ID, token)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)
}

func TestRevokeInvitation(t *testing.T) {
	db := testDB(t)
	provider := &recordingProvider{}
	svc := newTestContainer(provider).OrganizationService

	owner := createVerifiedUser(t, db, uniqueEmail("revoker"), "password-123")
	invitee := createVerifiedUser(t, db, uniqueEmail("revoked"), "password-123")

	org, err := svc.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Fickle"})
	require.NoError(t, err)

	inv, err := svc.Invite(db, org.ID, owner.ID, &dto.InviteMemberRequest{
		Email: invitee.Email,
		Role:  models.MembershipRoleMember,
	})
	require.NoError(t, err)
	token := tokenFromLink(t, provider.last(t).Data)

	require.NoError(t, svc.RevokeInvitation(db, org.ID, owner.ID, inv.ID))

	// A revoked invitation can no longer be accepted.
	_, err = svc.AcceptInvitation(db, invitee.ID, token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestRemoveMemberProtectsOwner(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).OrganizationService

	owner := createVerifiedUser(t, db, uniqueEmail("keeper"), "password-123")
	member := createVerifiedUser(t, db, uniqueEmail("leaver"), "password-123")

	org, err := svc.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Stable"})
	require.NoError(t, err)
	require.NoError(t, repositories.NewOrganizationRepository().CreateMembership(db, &models.Membership{
		OrganizationID: org.ID,
		UserID:         member.ID,
		Role:           models.MembershipRoleMember,
	}))

	err = svc.RemoveMember(db, org.ID, owner.ID, owner.ID)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)

	require.NoError(t, svc.RemoveMember(db, org.ID, owner.ID, member.ID))
	membership, err := repositories.NewOrganizationRepository().FindMembership(db, org.ID, member.ID)
	require.NoError(t, err)
	assert.Nil(t, membership)
}

func TestSwitchActiveOrganization(t *testing.T) {
	db := testDB(t)
	container := newTestContainer(&recordingProvider{})
	svc := container.OrganizationService

	user := createVerifiedUser(t, db, uniqueEmail("switcher"), "password-123")
	org, err := svc.Create(db, user.ID, &dto.CreateOrganizationRequest{Name: "Home"})
	require.NoError(t, err)

	signed, err := container.SessionService.SignInWithEmail(db, &dto.SignInRequest{
		Email:    user.Email,
		Password: "password-123",
	})
	require.NoError(t, err)
	sessionID := auth.SessionIDFromToken(signed.SessionToken)

	require.NoError(t, svc.SwitchActiveOrganization(db, sessionID, user.ID, org.ID))

	v, err := container.SessionService.Validate(db, signed.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, v.Session.ActiveOrganizationID)
	assert.Equal(t, org.ID, *v.Session.ActiveOrganizationID)

	// Switching into an organization the user does not belong to fails.
	other := createVerifiedUser(t, db, uniqueEmail("other"), "password-123")
	otherOrg, err := svc.Create(db, other.ID, &dto.CreateOrganizationRequest{Name: "Away"})
	require.NoError(t, err)
	err = svc.SwitchActiveOrganization(db, sessionID, user.ID, otherOrg.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotAMember)
}
