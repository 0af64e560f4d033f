package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"saaskit_backend/internal/auth"
	"saaskit_backend/internal/config"
	"saaskit_backend/internal/email"
	"saaskit_backend/internal/logger"
	"saaskit_backend/internal/models"
	"saaskit_backend/internal/repositories"
	"saaskit_backend/internal/services/dto"
	"saaskit_backend/pkg/apperrors"
)

// SessionService owns the session and credential lifecycle: sign-in,
// validation with sliding-window renewal, sign-out, password reset,
// email verification, OTP sign-in and OAuth callback handling.
type SessionService interface {
	// Validate resolves a presented bearer token. A miss or an expired
	// session yields an all-nil result, not an error — callers treat it
	// as "anonymous".
	Validate(db *gorm.DB, token string) (*dto.SessionValidation, error)

	SignInWithEmail(db *gorm.DB, req *dto.SignInRequest) (*dto.SignInResponse, error)
	SignOut(db *gorm.DB, token string) error

	RequestPasswordReset(db *gorm.DB, emailAddr string) error
	ResetPassword(db *gorm.DB, token, newPassword string) error

	VerifyEmail(db *gorm.DB, token string) error

	RequestOtp(db *gorm.DB, emailAddr string) error
	VerifyOtpAndSignIn(db *gorm.DB, emailAddr, code string) (*dto.SignInResponse, error)

	HandleOAuthCallback(db *gorm.DB, req *dto.OAuthCallbackRequest) (*dto.SignInResponse, error)

	// ChangePassword verifies the current password, applies the policy to
	// the new one and revokes every other session of the user.
	ChangePassword(db *gorm.DB, userID, keepSessionID, currentPassword, newPassword string) error

	// CreateSession is the primitive shared with onboarding: issues a
	// fresh token and persists its hash.
	CreateSession(db *gorm.DB, userID string) (string, *models.Session, error)

	// IssueVerificationToken purges older tokens and stores a new hashed
	// one; returns the plaintext for the email link.
	IssueVerificationToken(db *gorm.DB, userID string) (string, error)
}

type SessionServiceImpl struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	tokenRepo   repositories.TokenRepository
	oauthRepo   repositories.OAuthRepository
	orgRepo     repositories.OrganizationRepository
	emailProv   email.Provider
	pwned       *auth.PwnedChecker
	cfg         *config.Config
}

func NewSessionService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	tokenRepo repositories.TokenRepository,
	oauthRepo repositories.OAuthRepository,
	orgRepo repositories.OrganizationRepository,
	emailProv email.Provider,
	pwned *auth.PwnedChecker,
	cfg *config.Config,
) SessionService {
	return &SessionServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
		oauthRepo:   oauthRepo,
		orgRepo:     orgRepo,
		emailProv:   emailProv,
		pwned:       pwned,
		cfg:         cfg,
	}
}

func (s *SessionServiceImpl) sessionTTL() time.Duration {
	return time.Duration(s.cfg.Auth.SessionTTLDays) * 24 * time.Hour
}

func (s *SessionServiceImpl) renewalThreshold() time.Duration {
	return time.Duration(s.cfg.Auth.RenewalThresholdDays) * 24 * time.Hour
}

var anonymous = &dto.SessionValidation{}

func (s *SessionServiceImpl) Validate(db *gorm.DB, token string) (*dto.SessionValidation, error) {
	sessionID := auth.SessionIDFromToken(token)

	session, err := s.sessionRepo.FindByIDWithUser(db, sessionID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if session == nil {
		return anonymous, nil
	}

	now := time.Now()

	if !now.Before(session.ExpiresAt) {
		// Lazy expiry: the row is cleaned up on first encounter.
		if err := s.sessionRepo.Delete(db, session.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
		return anonymous, nil
	}

	if !now.Before(session.ExpiresAt.Add(-s.renewalThreshold())) {
		// Sliding-window renewal: rotate id and expiry in place so a
		// leaked token has a bounded lifetime under continued use.
		newToken, err := auth.GenerateSessionToken()
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		newID := auth.SessionIDFromToken(newToken)
		newExpiry := now.Add(s.sessionTTL())

		rows, err := s.sessionRepo.Rotate(db, session.ID, newID, newExpiry)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if rows == 0 {
			// Lost a race with sign-out or another renewal.
			return anonymous, nil
		}

		session.ID = newID
		session.ExpiresAt = newExpiry
		return &dto.SessionValidation{
			Session:  session,
			User:     &session.User,
			NewToken: newToken,
		}, nil
	}

	return &dto.SessionValidation{Session: session, User: &session.User}, nil
}

func (s *SessionServiceImpl) SignInWithEmail(db *gorm.DB, req *dto.SignInRequest) (*dto.SignInResponse, error) {
	user, err := s.userRepo.FindByEmailWithPassword(db, req.Email)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if user == nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		// Checked before the hash comparison; no bcrypt work is spent on
		// accounts that cannot sign in anyway.
		return nil, apperrors.ErrEmailNotVerified
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, session, err := s.CreateSession(db, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.SignInResponse{
		SessionToken: token,
		ExpiresAt:    session.ExpiresAt,
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *SessionServiceImpl) SignOut(db *gorm.DB, token string) error {
	sessionID := auth.SessionIDFromToken(token)
	if err := s.sessionRepo.Delete(db, sessionID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *SessionServiceImpl) RequestPasswordReset(db *gorm.DB, emailAddr string) error {
	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if user == nil {
		// Silent success so the endpoint cannot be used to enumerate
		// registered emails.
		return nil
	}

	token, err := auth.GeneratePasswordResetToken()
	if err != nil {
		return apperrors.InternalError(err)
	}

	ttl := time.Duration(s.cfg.Auth.ResetTokenTTLMin) * time.Minute
	err = db.Transaction(func(tx *gorm.DB) error {
		// At most one live reset token per user.
		if err := s.tokenRepo.DeleteResetTokensForUser(tx, user.ID); err != nil {
			return err
		}
		return s.tokenRepo.CreateResetToken(tx, &models.PasswordResetToken{
			UserID:    user.ID,
			TokenHash: auth.HashToken(token),
			ExpiresAt: time.Now().Add(ttl),
		})
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	s.sendTemplate(user.Email, "Reset your password", email.TemplatePasswordReset, email.TemplateData{
		"Username": user.Username,
		"Link":     fmt.Sprintf("%s/reset-password?token=%s", s.cfg.Email.AppBaseURL, token),
		"TTL":      fmt.Sprintf("%d minutes", s.cfg.Auth.ResetTokenTTLMin),
	})
	return nil
}

func (s *SessionServiceImpl) ResetPassword(db *gorm.DB, token, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	if s.pwned.IsCompromised(newPassword) {
		return apperrors.ErrPasswordCompromised
	}

	record, err := s.tokenRepo.FindResetTokenByHash(db, auth.HashToken(token))
	if err != nil {
		return apperrors.InternalError(err)
	}
	if record == nil {
		return apperrors.ErrInvalidToken
	}
	if !time.Now().Before(record.ExpiresAt) {
		// Best-effort cleanup of the stale token.
		if err := s.tokenRepo.DeleteResetToken(db, record.ID); err != nil {
			logger.Warn("failed to delete expired reset token", "error", err)
		}
		return apperrors.ErrTokenExpired
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.UpdatePassword(tx, record.UserID, hash); err != nil {
			return err
		}
		// Resetting via an emailed link proves mailbox control.
		if err := s.userRepo.MarkEmailVerified(tx, record.UserID); err != nil {
			return err
		}
		if err := s.tokenRepo.DeleteResetToken(tx, record.ID); err != nil {
			return err
		}
		// A successful reset forces re-authentication everywhere.
		return s.sessionRepo.DeleteAllForUser(tx, record.UserID)
	})
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *SessionServiceImpl) VerifyEmail(db *gorm.DB, token string) error {
	record, err := s.tokenRepo.FindVerificationTokenByHash(db, auth.HashToken(token))
	if err != nil {
		return apperrors.InternalError(err)
	}
	if record == nil {
		return apperrors.ErrInvalidToken
	}
	if !time.Now().Before(record.ExpiresAt) {
		if err := s.tokenRepo.DeleteVerificationToken(db, record.ID); err != nil {
			logger.Warn("failed to delete expired verification token", "error", err)
		}
		return apperrors.ErrTokenExpired
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.MarkEmailVerified(tx, record.UserID); err != nil {
			return err
		}
		return s.tokenRepo.DeleteVerificationToken(tx, record.ID)
	})
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *SessionServiceImpl) RequestOtp(db *gorm.DB, emailAddr string) error {
	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if user == nil {
		// Same enumeration resistance as password reset.
		return nil
	}

	code, err := auth.GenerateOtpCode()
	if err != nil {
		return apperrors.InternalError(err)
	}

	ttl := time.Duration(s.cfg.Auth.OtpTTLMin) * time.Minute
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.tokenRepo.DeleteOtpCodesForUser(tx, user.ID); err != nil {
			return err
		}
		return s.tokenRepo.CreateOtpCode(tx, &models.OtpCode{
			UserID:    user.ID,
			CodeHash:  auth.HashOtpCode(code),
			ExpiresAt: time.Now().Add(ttl),
		})
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	s.sendTemplate(user.Email, "Your sign-in code", email.TemplateOtp, email.TemplateData{
		"Username": user.Username,
		"Code":     code,
		"TTL":      fmt.Sprintf("%d minutes", s.cfg.Auth.OtpTTLMin),
	})
	return nil
}

func (s *SessionServiceImpl) VerifyOtpAndSignIn(db *gorm.DB, emailAddr, code string) (*dto.SignInResponse, error) {
	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if user == nil {
		// "No such user" and "wrong code" are indistinguishable.
		return nil, apperrors.ErrInvalidOtp
	}

	record, err := s.tokenRepo.FindOtpCodeForUser(db, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if record == nil {
		return nil, apperrors.ErrInvalidOtp
	}
	if !time.Now().Before(record.ExpiresAt) {
		if err := s.tokenRepo.DeleteOtpCode(db, record.ID); err != nil {
			logger.Warn("failed to delete expired otp code", "error", err)
		}
		return nil, apperrors.ErrOtpExpired
	}
	if auth.HashOtpCode(code) != record.CodeHash {
		return nil, apperrors.ErrInvalidOtp
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.tokenRepo.DeleteOtpCode(tx, record.ID); err != nil {
			return err
		}
		if !user.EmailVerified {
			// Completing an emailed OTP proves mailbox control.
			return s.userRepo.MarkEmailVerified(tx, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	token, session, err := s.CreateSession(db, user.ID)
	if err != nil {
		return nil, err
	}

	user.EmailVerified = true
	return &dto.SignInResponse{
		SessionToken: token,
		ExpiresAt:    session.ExpiresAt,
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *SessionServiceImpl) HandleOAuthCallback(db *gorm.DB, req *dto.OAuthCallbackRequest) (*dto.SignInResponse, error) {
	link, err := s.oauthRepo.FindByProviderUser(db, req.Provider, req.ProviderUserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	var userID string

	switch {
	case link != nil:
		// (a) identity already linked
		userID = link.UserID

	case req.Email != "":
		existing, err := s.userRepo.FindByEmail(db, req.Email)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if existing != nil {
			// (b) link the external identity to the matching account
			if err := s.oauthRepo.Create(db, &models.OAuthAccount{
				Provider:       req.Provider,
				ProviderUserID: req.ProviderUserID,
				UserID:         existing.ID,
			}); err != nil {
				return nil, apperrors.InternalError(err)
			}
			userID = existing.ID
		} else {
			// (c) first sight of this identity: provision an account
			userID, err = s.provisionOAuthUser(db, req)
			if err != nil {
				return nil, err
			}
		}

	default:
		// Without an email there is no safe way to deduplicate identity.
		return nil, apperrors.ErrOAuthEmailRequired
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	// Session creation stays outside the provisioning transaction.
	token, session, err := s.CreateSession(db, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.SignInResponse{
		SessionToken: token,
		ExpiresAt:    session.ExpiresAt,
		User:         dto.NewUserResponse(user),
	}, nil
}

// provisionOAuthUser creates user + default organization + owner
// membership + oauth link in one transaction.
func (s *SessionServiceImpl) provisionOAuthUser(db *gorm.DB, req *dto.OAuthCallbackRequest) (string, error) {
	username := req.Username
	if username == "" {
		username = req.Email
	}

	var userID string
	err := db.Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			Email:    req.Email,
			Username: username,
			// No usable password; reset flow can set one later.
			PasswordHash: "",
			Role:         models.UserRoleUser,
			// The provider vouched for the email.
			EmailVerified: true,
		}
		if err := s.userRepo.Create(tx, user); err != nil {
			return err
		}

		org := &models.Organization{Name: fmt.Sprintf("%s's org", username)}
		if err := s.orgRepo.Create(tx, org); err != nil {
			return err
		}

		if err := s.orgRepo.CreateMembership(tx, &models.Membership{
			OrganizationID: org.ID,
			UserID:         user.ID,
			Role:           models.MembershipRoleOwner,
		}); err != nil {
			return err
		}

		if err := s.oauthRepo.Create(tx, &models.OAuthAccount{
			Provider:       req.Provider,
			ProviderUserID: req.ProviderUserID,
			UserID:         user.ID,
		}); err != nil {
			return err
		}

		userID = user.ID
		return nil
	})
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return userID, nil
}

func (s *SessionServiceImpl) ChangePassword(db *gorm.DB, userID, keepSessionID, currentPassword, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	if s.pwned.IsCompromised(newPassword) {
		return apperrors.ErrPasswordCompromised
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	withHash, err := s.userRepo.FindByEmailWithPassword(db, user.Email)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if withHash == nil || !auth.CheckPasswordHash(currentPassword, withHash.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.UpdatePassword(tx, userID, hash); err != nil {
			return err
		}
		return s.sessionRepo.DeleteAllForUserExcept(tx, userID, keepSessionID)
	})
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *SessionServiceImpl) CreateSession(db *gorm.DB, userID string) (string, *models.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", nil, apperrors.InternalError(err)
	}

	session := &models.Session{
		ID:        auth.SessionIDFromToken(token),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.sessionTTL()),
	}
	if err := s.sessionRepo.Create(db, session); err != nil {
		return "", nil, apperrors.InternalError(err)
	}

	return token, session, nil
}

func (s *SessionServiceImpl) IssueVerificationToken(db *gorm.DB, userID string) (string, error) {
	token, err := auth.GeneratePasswordResetToken()
	if err != nil {
		return "", apperrors.InternalError(err)
	}

	ttl := time.Duration(s.cfg.Auth.VerificationTTLHours) * time.Hour
	if err := s.tokenRepo.DeleteVerificationTokensForUser(db, userID); err != nil {
		return "", apperrors.InternalError(err)
	}
	if err := s.tokenRepo.CreateVerificationToken(db, &models.EmailVerificationToken{
		UserID:    userID,
		TokenHash: auth.HashToken(token),
		ExpiresAt: time.Now().Add(ttl),
	}); err != nil {
		return "", apperrors.InternalError(err)
	}

	return token, nil
}

// sendTemplate delivers transactional mail best-effort; a provider
// failure is logged, never surfaced to the caller.
func (s *SessionServiceImpl) sendTemplate(to, subject, templateName string, data email.TemplateData) {
	if s.emailProv == nil {
		return
	}
	err := s.emailProv.SendWithTemplate(templateName, data, &email.Email{
		To:      []string{to},
		Subject: subject,
	})
	if err != nil {
		logger.Warn("failed to send email", "template", templateName, "error", err)
	}
}
