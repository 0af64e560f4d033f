package services

import (
	"gorm.io/gorm"

	"saaskit_backend/internal/models"
	"saaskit_backend/internal/repositories"
	"saaskit_backend/internal/services/dto"
	"saaskit_backend/pkg/apperrors"
)

type UserService interface {
	GetProfile(db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)

	// Admin operations.
	ListUsers(db *gorm.DB, limit, offset int) ([]dto.UserResponse, int64, error)
	UpdateRole(db *gorm.DB, userID string, role models.UserRole) error
	DeleteUser(db *gorm.DB, userID string) error
}

type UserServiceImpl struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
}

func NewUserService(userRepo repositories.UserRepository, sessionRepo repositories.SessionRepository) UserService {
	return &UserServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

func (s *UserServiceImpl) GetProfile(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) ListUsers(db *gorm.DB, limit, offset int) ([]dto.UserResponse, int64, error) {
	users, err := s.userRepo.FindAll(db, limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	total, err := s.userRepo.CountAll(db)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.NewUserResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *UserServiceImpl) UpdateRole(db *gorm.DB, userID string, role models.UserRole) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}
	if err := s.userRepo.UpdateRole(db, userID, role); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UserServiceImpl) DeleteUser(db *gorm.DB, userID string) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := s.sessionRepo.DeleteAllForUser(tx, userID); err != nil {
			return err
		}
		return s.userRepo.Delete(tx, userID)
	})
}
