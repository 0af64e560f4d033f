package dto

import (
	"time"

	"saaskit_backend/internal/models"
)

type SignUpRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Username         string `json:"username" validate:"required,min=2,max=64"`
	Password         string `json:"password" validate:"required,password"`
	OrganizationName string `json:"organization_name" validate:"omitempty,max=128"`
}

type SignUpResponse struct {
	User           *UserResponse `json:"user"`
	OrganizationID string        `json:"organization_id"`
	// VerificationToken is returned so the caller can build the email
	// link; it is never persisted in plaintext.
	VerificationToken string `json:"-"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse carries the plaintext session token. This is the only
// moment the token exists server-side; only its hash is stored.
type SignInResponse struct {
	SessionToken string        `json:"session_token"`
	ExpiresAt    time.Time     `json:"expires_at"`
	User         *UserResponse `json:"user"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,password"`
}

type RequestOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,otp"`
}

// OAuthCallbackRequest carries provider-verified profile details. The
// token exchange with the provider happens upstream of this API.
type OAuthCallbackRequest struct {
	Provider       string `json:"provider" validate:"required,oneof=google github"`
	ProviderUserID string `json:"provider_user_id" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Username       string `json:"username" validate:"omitempty,max=64"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

// SessionValidation is the outcome of validating a presented token.
// All-nil fields mean "anonymous", not an error.
type SessionValidation struct {
	Session *models.Session
	User    *models.User
	// NewToken is set when the session was renewed in place; the caller
	// must hand the rotated token back to the client.
	NewToken string
}
