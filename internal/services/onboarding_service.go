package services

import (
	"fmt"

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

// OnboardingService wraps sign-up: user + organization + owner
// membership + verification token in a single transaction.
type OnboardingService interface {
	SignUp(db *gorm.DB, req *dto.SignUpRequest) (*dto.SignUpResponse, error)
}

type OnboardingServiceImpl struct {
	userRepo       repositories.UserRepository
	orgRepo        repositories.OrganizationRepository
	sessionService SessionService
	emailProv      email.Provider
	pwned          *auth.PwnedChecker
	cfg            *config.Config
}

func NewOnboardingService(
	userRepo repositories.UserRepository,
	orgRepo repositories.OrganizationRepository,
	sessionService SessionService,
	emailProv email.Provider,
	pwned *auth.PwnedChecker,
	cfg *config.Config,
) OnboardingService {
	return &OnboardingServiceImpl{
		userRepo:       userRepo,
		orgRepo:        orgRepo,
		sessionService: sessionService,
		emailProv:      emailProv,
		pwned:          pwned,
		cfg:            cfg,
	}
}

func (s *OnboardingServiceImpl) SignUp(db *gorm.DB, req *dto.SignUpRequest) (*dto.SignUpResponse, error) {
	// Policy and uniqueness checks run before the transaction opens; the
	// breach check is a network call and must not hold a tx open.
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if s.pwned.IsCompromised(req.Password) {
		return nil, apperrors.ErrPasswordCompromised
	}

	existing, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if existing != nil {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	orgName := req.OrganizationName
	if orgName == "" {
		orgName = fmt.Sprintf("%s's org", req.Username)
	}

	var (
		user              *models.User
		org               *models.Organization
		verificationToken string
	)

	err = db.Transaction(func(tx *gorm.DB) error {
		user = &models.User{
			Email:        req.Email,
			Username:     req.Username,
			PasswordHash: hash,
			Role:         models.UserRoleUser,
		}
		if err := s.userRepo.Create(tx, user); err != nil {
			return err
		}

		org = &models.Organization{Name: orgName}
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

		verificationToken, err = s.sessionService.IssueVerificationToken(tx, user.ID)
		return err
	})
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, apperrors.InternalError(err)
	}

	s.sendVerificationEmail(user, verificationToken)

	return &dto.SignUpResponse{
		User:              dto.NewUserResponse(user),
		OrganizationID:    org.ID,
		VerificationToken: verificationToken,
	}, nil
}

func (s *OnboardingServiceImpl) sendVerificationEmail(user *models.User, token string) {
	if s.emailProv == nil {
		return
	}
	err := s.emailProv.SendWithTemplate(email.TemplateVerification, email.TemplateData{
		"Username": user.Username,
		"Link":     fmt.Sprintf("%s/verify-email?token=%s", s.cfg.Email.AppBaseURL, token),
		"TTL":      fmt.Sprintf("%d hours", s.cfg.Auth.VerificationTTLHours),
	}, &email.Email{
		To:      []string{user.Email},
		Subject: "Verify your email",
	})
	if err != nil {
		logger.Warn("failed to send verification email", "error", err)
	}
}
