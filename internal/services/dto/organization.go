package dto

import (
	"time"

	"saaskit_backend/internal/models"
)

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
}

type UpdateOrganizationRequest struct {
	Name     string                 `json:"name" validate:"omitempty,min=1,max=128"`
	Settings map[string]interface{} `json:"settings"`
}

type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewOrganizationResponse(org *models.Organization) *OrganizationResponse {
	if org == nil {
		return nil
	}
	return &OrganizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		CreatedAt: org.CreatedAt,
	}
}

type MemberResponse struct {
	UserID   string                `json:"user_id"`
	Email    string                `json:"email"`
	Username string                `json:"username"`
	Role     models.MembershipRole `json:"role"`
	JoinedAt time.Time             `json:"joined_at"`
}

type InviteMemberRequest struct {
	Email string                `json:"email" validate:"required,email"`
	Role  models.MembershipRole `json:"role" validate:"required,is-membership-role"`
}

type InvitationResponse struct {
	ID        string                  `json:"id"`
	Email     string                  `json:"email"`
	Role      models.MembershipRole   `json:"role"`
	Status    models.InvitationStatus `json:"status"`
	ExpiresAt time.Time               `json:"expires_at"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" validate:"required"`
}

type SwitchOrganizationRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
}
