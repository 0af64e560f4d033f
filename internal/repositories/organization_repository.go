package repositories

import (
	"errors"

	"gorm.io/gorm"

	"saaskit_backend/internal/models"
)

type OrganizationRepository interface {
	Create(db *gorm.DB, org *models.Organization) error
	FindByID(db *gorm.DB, id string) (*models.Organization, error)
	Update(db *gorm.DB, org *models.Organization) error
	Delete(db *gorm.DB, id string) error

	// FindForUser lists organizations the user is a member of.
	FindForUser(db *gorm.DB, userID string) ([]models.Organization, error)

	CreateMembership(db *gorm.DB, membership *models.Membership) error
	FindMembership(db *gorm.DB, organizationID, userID string) (*models.Membership, error)
	DeleteMembership(db *gorm.DB, organizationID, userID string) error
	ListMembers(db *gorm.DB, organizationID string) ([]models.Membership, error)

	CreateInvitation(db *gorm.DB, invitation *models.Invitation) error
	FindInvitationByID(db *gorm.DB, id string) (*models.Invitation, error)
	UpdateInvitationStatus(db *gorm.DB, id string, status models.InvitationStatus) error
	ListInvitations(db *gorm.DB, organizationID string) ([]models.Invitation, error)
}

type organizationRepository struct{}

func NewOrganizationRepository() OrganizationRepository {
	return &organizationRepository{}
}

func (r *organizationRepository) Create(db *gorm.DB, org *models.Organization) error {
	return db.Create(org).Error
}

func (r *organizationRepository) FindByID(db *gorm.DB, id string) (*models.Organization, error) {
	var org models.Organization
	err := db.Where("id = ?", id).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) Update(db *gorm.DB, org *models.Organization) error {
	return db.Save(org).Error
}

func (r *organizationRepository) Delete(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&models.Organization{}).Error
}

func (r *organizationRepository) FindForUser(db *gorm.DB, userID string) ([]models.Organization, error) {
	var orgs []models.Organization
	err := db.Joins("JOIN memberships ON memberships.organization_id = organizations.id").
		Where("memberships.user_id = ?", userID).
		Order("organizations.created_at").
		Find(&orgs).Error
	return orgs, err
}

func (r *organizationRepository) CreateMembership(db *gorm.DB, membership *models.Membership) error {
	return db.Create(membership).Error
}

func (r *organizationRepository) FindMembership(db *gorm.DB, organizationID, userID string) (*models.Membership, error) {
	var membership models.Membership
	err := db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *organizationRepository) DeleteMembership(db *gorm.DB, organizationID, userID string) error {
	return db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Delete(&models.Membership{}).Error
}

func (r *organizationRepository) ListMembers(db *gorm.DB, organizationID string) ([]models.Membership, error) {
	var members []models.Membership
	err := db.Preload("User").
		Where("organization_id = ?", organizationID).
		Order("created_at").
		Find(&members).Error
	return members, err
}

func (r *organizationRepository) CreateInvitation(db *gorm.DB, invitation *models.Invitation) error {
	return db.Create(invitation).Error
}

func (r *organizationRepository) FindInvitationByID(db *gorm.DB, id string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := db.Where("id = ?", id).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *organizationRepository) UpdateInvitationStatus(db *gorm.DB, id string, status models.InvitationStatus) error {
	return db.Model(&models.Invitation{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *organizationRepository) ListInvitations(db *gorm.DB, organizationID string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := db.Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}
