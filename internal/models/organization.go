package models

import (
	"time"

	"gorm.io/datatypes"
)

type MembershipRole string

const (
	MembershipRoleOwner  MembershipRole = "owner"
	MembershipRoleAdmin  MembershipRole = "admin"
	MembershipRoleMember MembershipRole = "member"
)

type Organization struct {
	BaseModel
	Name     string         `gorm:"not null"`
	Settings datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Memberships []Membership `gorm:"foreignKey:OrganizationID"`
}

type Membership struct {
	BaseModel
	OrganizationID string         `gorm:"type:uuid;not null;uniqueIndex:idx_membership_org_user"`
	UserID         string         `gorm:"type:uuid;not null;uniqueIndex:idx_membership_org_user"`
	Role           MembershipRole `gorm:"type:varchar(20);not null;default:'member'"`

	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	User         User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
)

// Invitation tracks a pending org invite. The emailed token is a signed
// JWT; the row exists so invites can be listed and revoked.
type Invitation struct {
	BaseModel
	OrganizationID string           `gorm:"type:uuid;not null;index"`
	Email          string           `gorm:"not null;index"`
	Role           MembershipRole   `gorm:"type:varchar(20);not null;default:'member'"`
	Status         InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	InvitedByID    string           `gorm:"type:uuid;not null"`
	ExpiresAt      time.Time        `gorm:"not null"`

	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
}
