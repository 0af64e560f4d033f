package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaskit_backend/internal/auth"
	"saaskit_backend/internal/email"
	"saaskit_backend/internal/models"
	"saaskit_backend/internal/repositories"
	"saaskit_backend/internal/services/dto"
	"saaskit_backend/pkg/apperrors"
)

func TestSignInWithEmail(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService

	user := createVerifiedUser(t, db, uniqueEmail("signin"), "password-123")

	resp, err := svc.SignInWithEmail(db, &dto.SignInRequest{
		Email:    user.Email,
		Password: "password-123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionToken)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.True(t, resp.ExpiresAt.After(time.Now().Add(29*24*time.Hour)))

	// The token round-trips through Validate.
	v, err := svc.Validate(db, resp.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, v.Session)
	assert.Equal(t, user.ID, v.User.ID)
	assert.Empty(t, v.NewToken, "a fresh session must not renew")
}

func TestSignInRejections(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService

	user := createVerifiedUser(t, db, uniqueEmail("reject"), "password-123")

	_, err := svc.SignInWithEmail(db, &dto.SignInRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.SignInWithEmail(db, &dto.SignInRequest{
		Email:    uniqueEmail("nobody"),
		Password: "password-123",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestSignInUnverifiedEmail(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService

	hash, err := auth.HashPassword("password-123")
	require.NoError(t, err)
	user := &models.User{
		Email:        uniqueEmail("unverified"),
		Username:     "unverified",
		PasswordHash: hash,
		Role:         models.UserRoleUser,
	}
	require.NoError(t, repositories.NewUserRepository().Create(db, user))

	_, err = svc.SignInWithEmail(db, &dto.SignInRequest{
		Email:    user.Email,
		Password: "password-123",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)
}

func TestValidateUnknownToken(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService

	v, err := svc.Validate(db, "nosuchtokennosuchtokennosuchtoke")
	require.NoError(t, err)
	assert.Nil(t, v.Session)
	assert.Nil(t, v.User)
	assert.Empty(t, v.NewToken)
}

func TestValidateExpiredSessionIsDeleted(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService
	sessionRepo := repositories.NewSessionRepository()

	user := createVerifiedUser(t, db, uniqueEmail("expired"), "password-123")

	token, err := auth.GenerateSessionToken()
	require.NoError(t, err)
	sessionID := auth.SessionIDFromToken(token)
	require.NoError(t, sessionRepo.Create(db, &models.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	v, err := svc.Validate(db, token)
	require.NoError(t, err)
	assert.Nil(t, v.Session)

	// Lazy expiry removed the row.
	row, err := sessionRepo.FindByIDWithUser(db, sessionID)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestValidateRenewsNearExpiry(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService
	sessionRepo := repositories.NewSessionRepository()

	user := createVerifiedUser(t, db, uniqueEmail("renew"), "password-123")

	// 10 days left on a 30-day session with a 15-day threshold.
	token, err := auth.GenerateSessionToken()
	require.NoError(t, err)
	require.NoError(t, sessionRepo.Create(db, &models.Session{
		ID:        auth.SessionIDFromToken(token),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(10 * 24 * time.Hour),
	}))

	v, err := svc.Validate(db, token)
	require.NoError(t, err)
	require.NotNil(t, v.Session)
	require.NotEmpty(t, v.NewToken, "session within the renewal window must rotate")
	assert.NotEqual(t, token, v.NewToken)
	assert.True(t, v.Session.ExpiresAt.After(time.Now().Add(29*24*time.Hour)))

	// The old token is dead, the rotated one resolves.
	old, err := svc.Validate(db, token)
	require.NoError(t, err)
	assert.Nil(t, old.Session)

	renewed, err := svc.Validate(db, v.NewToken)
	require.NoError(t, err)
	require.NotNil(t, renewed.Session)
	assert.Equal(t, user.ID, renewed.User.ID)
	assert.Empty(t, renewed.NewToken)
}

func TestSignOut(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService

	user := createVerifiedUser(t, db, uniqueEmail("signout"), "password-123")

	resp, err := svc.SignInWithEmail(db, &dto.SignInRequest{
		Email:    user.Email,
		Password: "password-123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(db, resp.SessionToken))

	v, err := svc.Validate(db, resp.SessionToken)
	require.NoError(t, err)
	assert.Nil(t, v.Session)

	// Signing out twice is not an error.
	assert.NoError(t, svc.SignOut(db, resp.SessionToken))
}

func TestPasswordResetFlow(t *testing.T) {
	db := testDB(t)
	provider := &recordingProvider{}
	svc := newTestContainer(provider).SessionService

	user := createVerifiedUser(t, db, uniqueEmail("reset"), "old-password-1")

	// An existing session that must be revoked by the reset.
	signed, err := svc.SignInWithEmail(db, &dto.SignInRequest{
		Email:    user.Email,
		Password: "old-password-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(db, user.Email))
	sent := provider.last(t)
	assert.Equal(t, email.TemplatePasswordReset, sent.Template)
	assert.Equal(t, []string{user.Email}, sent.To)
	token := tokenFromLink(t, sent.Data)

	require.NoError(t, svc.ResetPassword(db, token, "new-password-1"))

	// Old password out, new password in.
	_, err = svc.SignInWithEmail(db, &dto.SignInRequest{Email: user.Email, Password: "old-password-1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.SignInWithEmail(db, &dto.SignInRequest{Email: user.Email, Password: "new-password-1"})
	assert.NoError(t, err)

	// The pre-reset session is gone.
	v, err := svc.Validate(db, signed.SessionToken)
	require.NoError(t, err)
	assert.Nil(t, v.Session)

	// The token is single-use.
	err = svc.ResetPassword(db, token, "another-password-1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	db := testDB(t)
	provider := &recordingProvider{}
	svc := newTestContainer(provider).SessionService

	// Silent success, no email.
	require.NoError(t, svc.RequestPasswordReset(db, uniqueEmail("ghost")))
	assert.Empty(t, provider.sends)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService
	tokenRepo := repositories.NewTokenRepository()

	user := createVerifiedUser(t, db, uniqueEmail("stale"), "password-123")

	token, err := auth.GeneratePasswordResetToken()
	require.NoError(t, err)
	require.NoError(t, tokenRepo.CreateResetToken(db, &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: auth.HashToken(token),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	err = svc.ResetPassword(db, token, "new-password-1")
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestResetPasswordPolicy(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService

	err := svc.ResetPassword(db, "irrelevant", "short")
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)
}

func TestVerifyEmailFlow(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService
	userRepo := repositories.NewUserRepository()

	hash, err := auth.HashPassword("password-123")
	require.NoError(t, err)
	user := &models.User{
		Email:        uniqueEmail("verify"),
		Username:     "verify",
		PasswordHash: hash,
	}
	require.NoError(t, userRepo.Create(db, user))

	token, err := svc.IssueVerificationToken(db, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.VerifyEmail(db, token))

	got, err := userRepo.FindByID(db, user.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)

	// Single-use.
	assert.ErrorIs(t, svc.VerifyEmail(db, token), apperrors.ErrInvalidToken)
}

func TestIssueVerificationTokenReplacesOlder(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService

	user := createVerifiedUser(t, db, uniqueEmail("reissue"), "password-123")

	first, err := svc.IssueVerificationToken(db, user.ID)
	require.NoError(t, err)
	second, err := svc.IssueVerificationToken(db, user.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.VerifyEmail(db, first), apperrors.ErrInvalidToken)
	assert.NoError(t, svc.VerifyEmail(db, second))
}

func TestOtpFlow(t *testing.T) {
	db := testDB(t)
	provider := &recordingProvider{}
	svc := newTestContainer(provider).SessionService
	userRepo := repositories.NewUserRepository()

	// Unverified on purpose: completing the OTP proves mailbox control.
	hash, err := auth.HashPassword("password-123")
	require.NoError(t, err)
	user := &models.User{
		Email:        uniqueEmail("otp"),
		Username:     "otp",
		PasswordHash: hash,
	}
	require.NoError(t, userRepo.Create(db, user))

	require.NoError(t, svc.RequestOtp(db, user.Email))
	sent := provider.last(t)
	assert.Equal(t, email.TemplateOtp, sent.Template)
	code, ok := sent.Data["Code"].(string)
	require.True(t, ok)
	require.Len(t, code, 6)

	_, err = svc.VerifyOtpAndSignIn(db, user.Email, "000000")
	if code != "000000" {
		assert.ErrorIs(t, err, apperrors.ErrInvalidOtp)
	}

	resp, err := svc.VerifyOtpAndSignIn(db, user.Email, code)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionToken)
	assert.True(t, resp.User.EmailVerified)

	got, err := userRepo.FindByID(db, user.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)

	// Codes are single-use.
	_, err = svc.VerifyOtpAndSignIn(db, user.Email, code)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOtp)
}

func TestRequestOtpReplacesOlderCode(t *testing.T) {
	db := testDB(t)
	provider := &recordingProvider{}
	svc := newTestContainer(provider).SessionService

	user := createVerifiedUser(t, db, uniqueEmail("otp2"), "password-123")

	require.NoError(t, svc.RequestOtp(db, user.Email))
	firstCode := provider.last(t).Data["Code"].(string)

	require.NoError(t, svc.RequestOtp(db, user.Email))
	secondCode := provider.last(t).Data["Code"].(string)

	if firstCode != secondCode {
		_, err := svc.VerifyOtpAndSignIn(db, user.Email, firstCode)
		assert.ErrorIs(t, err, apperrors.ErrInvalidOtp)
	}
	_, err := svc.VerifyOtpAndSignIn(db, user.Email, secondCode)
	assert.NoError(t, err)
}

func TestExpiredOtp(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService
	tokenRepo := repositories.NewTokenRepository()

	user := createVerifiedUser(t, db, uniqueEmail("otpexp"), "password-123")

	require.NoError(t, tokenRepo.CreateOtpCode(db, &models.OtpCode{
		UserID:    user.ID,
		CodeHash:  auth.HashOtpCode("123456"),
		ExpiresAt: time.Now().Add(-time.Second),
	}))

	_, err := svc.VerifyOtpAndSignIn(db, user.Email, "123456")
	assert.ErrorIs(t, err, apperrors.ErrOtpExpired)
}

func TestChangePassword(t *testing.T) {
	db := testDB(t)
	svc := newTestContainer(&recordingProvider{}).SessionService

	user := createVerifiedUser(t, db, uniqueEmail("change"), "old-password-1")

	current, err := svc.SignInWithEmail(db, &dto.SignInRequest{Email: user.Email, Password: "old-password-1"})
	require.NoError(t, err)
	other, err := svc.SignInWithEmail(db, &dto.SignInRequest{Email: user.Email, Password: "old-password-1"})
	require.NoError(t, err)
	currentID := auth.SessionIDFromToken(current.SessionToken)

	err = svc.ChangePassword(db, user.ID, currentID, "wrong-password", "new-password-1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(db, user.ID, currentID, "old-password-1", "new-password-1"))

	_, err = svc.SignInWithEmail(db, &dto.SignInRequest{Email: user.Email, Password: "new-password-1"})
	assert.NoError(t, err)

	// The requesting session survives; every other one is revoked.
	v, err := svc.Validate(db, current.SessionToken)
	require.NoError(t, err)
	assert.NotNil(t, v.Session)

	v, err = svc.Validate(db, other.SessionToken)
	require.NoError(t, err)
	assert.Nil(t, v.Session)
}
