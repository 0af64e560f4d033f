package dto

import (
	"time"

	"saaskit_backend/internal/models"
)

type UserResponse struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Username      string          `json:"username"`
	Role          models.UserRole `json:"role"`
	EmailVerified bool            `json:"email_verified"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewUserResponse strips credentials off a user model.
func NewUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Username:      user.Username,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=2,max=64"`
}

type AdminUpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=user admin"`
}

type ImpersonateRequest struct {
	TargetUserID string `json:"target_user_id" validate:"required,uuid"`
}
