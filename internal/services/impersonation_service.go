package services

import (
	"gorm.io/gorm"

	"saaskit_backend/internal/repositories"
	"saaskit_backend/pkg/apperrors"
)

// ImpersonationService swaps the effective user of a session. Who may
// call it is enforced by the admin routing middleware, not here.
type ImpersonationService interface {
	Start(db *gorm.DB, sessionID, adminUserID, targetUserID string) error
	Stop(db *gorm.DB, sessionID, adminUserID string) error
}

type ImpersonationServiceImpl struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
}

func NewImpersonationService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
) ImpersonationService {
	return &ImpersonationServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

func (s *ImpersonationServiceImpl) Start(db *gorm.DB, sessionID, adminUserID, targetUserID string) error {
	target, err := s.userRepo.FindByID(db, targetUserID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if target == nil {
		return apperrors.ErrUserNotFound
	}

	rows, err := s.sessionRepo.StartImpersonation(db, sessionID, targetUserID, adminUserID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if rows == 0 {
		// Session vanished concurrently (sign-out, expiry sweep).
		return apperrors.ErrSessionNotFound
	}
	return nil
}

func (s *ImpersonationServiceImpl) Stop(db *gorm.DB, sessionID, adminUserID string) error {
	rows, err := s.sessionRepo.StopImpersonation(db, sessionID, adminUserID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if rows == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}
