package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"saaskit_backend/internal/config"
	"saaskit_backend/internal/email"
	"saaskit_backend/internal/logger"
	"saaskit_backend/internal/models"
	"saaskit_backend/internal/repositories"
	"saaskit_backend/internal/services/dto"
	"saaskit_backend/pkg/apperrors"
)

type OrganizationService interface {
	Create(db *gorm.DB, userID string, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error)
	Get(db *gorm.DB, organizationID, userID string) (*dto.OrganizationResponse, error)
	Update(db *gorm.DB, organizationID, userID string, req *dto.UpdateOrganizationRequest) (*dto.OrganizationResponse, error)
	Delete(db *gorm.DB, organizationID, userID string) error
	ListForUser(db *gorm.DB, userID string) ([]dto.OrganizationResponse, error)
	ListMembers(db *gorm.DB, organizationID, userID string) ([]dto.MemberResponse, error)
	RemoveMember(db *gorm.DB, organizationID, actorUserID, memberUserID string) error

	Invite(db *gorm.DB, organizationID, inviterUserID string, req *dto.InviteMemberRequest) (*dto.InvitationResponse, error)
	AcceptInvitation(db *gorm.DB, userID, token string) (*dto.OrganizationResponse, error)
	RevokeInvitation(db *gorm.DB, organizationID, actorUserID, invitationID string) error
	ListInvitations(db *gorm.DB, organizationID, userID string) ([]dto.InvitationResponse, error)

	// SwitchActiveOrganization stores the active org on the session.
	SwitchActiveOrganization(db *gorm.DB, sessionID, userID, organizationID string) error
}

// inviteClaims is the payload of the signed invitation token emailed to
// the invitee.
type inviteClaims struct {
	InvitationID   string                `json:"inv_id"`
	OrganizationID string                `json:"org_id"`
	Email          string                `json:"email"`
	Role           models.MembershipRole `json:"role"`
	jwt.RegisteredClaims
}

type OrganizationServiceImpl struct {
	orgRepo   repositories.OrganizationRepository
	userRepo  repositories.UserRepository
	sessRepo  repositories.SessionRepository
	emailProv email.Provider
	cfg       *config.Config
}

func NewOrganizationService(
	orgRepo repositories.OrganizationRepository,
	userRepo repositories.UserRepository,
	sessRepo repositories.SessionRepository,
	emailProv email.Provider,
	cfg *config.Config,
) OrganizationService {
	return &OrganizationServiceImpl{
		orgRepo:   orgRepo,
		userRepo:  userRepo,
		sessRepo:  sessRepo,
		emailProv: emailProv,
		cfg:       cfg,
	}
}

// requireMembership loads the caller's membership or fails with 403.
func (s *OrganizationServiceImpl) requireMembership(db *gorm.DB, organizationID, userID string) (*models.Membership, error) {
	membership, err := s.orgRepo.FindMembership(db, organizationID, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if membership == nil {
		return nil, apperrors.ErrNotAMember
	}
	return membership, nil
}

func (s *OrganizationServiceImpl) requireManager(db *gorm.DB, organizationID, userID string) (*models.Membership, error) {
	membership, err := s.requireMembership(db, organizationID, userID)
	if err != nil {
		return nil, err
	}
	if membership.Role != models.MembershipRoleOwner && membership.Role != models.MembershipRoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return membership, nil
}

func (s *OrganizationServiceImpl) Create(db *gorm.DB, userID string, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error) {
	var org *models.Organization
	err := db.Transaction(func(tx *gorm.DB) error {
		org = &models.Organization{Name: req.Name}
		if err := s.orgRepo.Create(tx, org); err != nil {
			return err
		}
		return s.orgRepo.CreateMembership(tx, &models.Membership{
			OrganizationID: org.ID,
			UserID:         userID,
			Role:           models.MembershipRoleOwner,
		})
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewOrganizationResponse(org), nil
}

func (s *OrganizationServiceImpl) Get(db *gorm.DB, organizationID, userID string) (*dto.OrganizationResponse, error) {
	if _, err := s.requireMembership(db, organizationID, userID); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(db, organizationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if org == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}
	return dto.NewOrganizationResponse(org), nil
}

func (s *OrganizationServiceImpl) Update(db *gorm.DB, organizationID, userID string, req *dto.UpdateOrganizationRequest) (*dto.OrganizationResponse, error) {
	if _, err := s.requireManager(db, organizationID, userID); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(db, organizationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if org == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}

	if req.Name != "" {
		org.Name = req.Name
	}
	if req.Settings != nil {
		raw, err := json.Marshal(req.Settings)
		if err != nil {
			return nil, apperrors.NewBadRequestError("Invalid settings payload")
		}
		org.Settings = raw
	}

	if err := s.orgRepo.Update(db, org); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewOrganizationResponse(org), nil
}

func (s *OrganizationServiceImpl) Delete(db *gorm.DB, organizationID, userID string) error {
	membership, err := s.requireMembership(db, organizationID, userID)
	if err != nil {
		return err
	}
	if membership.Role != models.MembershipRoleOwner {
		return apperrors.ErrInsufficientPermissions
	}
	if err := s.orgRepo.Delete(db, organizationID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *OrganizationServiceImpl) ListForUser(db *gorm.DB, userID string) ([]dto.OrganizationResponse, error) {
	orgs, err := s.orgRepo.FindForUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	responses := make([]dto.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		responses = append(responses, *dto.NewOrganizationResponse(&orgs[i]))
	}
	return responses, nil
}

func (s *OrganizationServiceImpl) ListMembers(db *gorm.DB, organizationID, userID string) ([]dto.MemberResponse, error) {
	if _, err := s.requireMembership(db, organizationID, userID); err != nil {
		return nil, err
	}
	members, err := s.orgRepo.ListMembers(db, organizationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	responses := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, dto.MemberResponse{
			UserID:   m.UserID,
			Email:    m.User.Email,
			Username: m.User.Username,
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		})
	}
	return responses, nil
}

func (s *OrganizationServiceImpl) RemoveMember(db *gorm.DB, organizationID, actorUserID, memberUserID string) error {
	if _, err := s.requireManager(db, organizationID, actorUserID); err != nil {
		return err
	}
	target, err := s.orgRepo.FindMembership(db, organizationID, memberUserID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if target == nil {
		return apperrors.ErrNotAMember
	}
	if target.Role == models.MembershipRoleOwner {
		return apperrors.ErrInvalidOperation("organization", "The owner cannot be removed")
	}
	if err := s.orgRepo.DeleteMembership(db, organizationID, memberUserID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *OrganizationServiceImpl) Invite(db *gorm.DB, organizationID, inviterUserID string, req *dto.InviteMemberRequest) (*dto.InvitationResponse, error) {
	if _, err := s.requireManager(db, organizationID, inviterUserID); err != nil {
		return nil, err
	}
	if req.Role == models.MembershipRoleOwner {
		return nil, apperrors.ErrInvalidOperation("organization", "Cannot invite as owner")
	}

	org, err := s.orgRepo.FindByID(db, organizationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if org == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}

	inviter, err := s.userRepo.FindByID(db, inviterUserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	expiresAt := time.Now().Add(time.Duration(s.cfg.Auth.InviteTTLDays) * 24 * time.Hour)
	invitation := &models.Invitation{
		OrganizationID: organizationID,
		Email:          req.Email,
		Role:           req.Role,
		Status:         models.InvitationStatusPending,
		InvitedByID:    inviterUserID,
		ExpiresAt:      expiresAt,
	}
	if err := s.orgRepo.CreateInvitation(db, invitation); err != nil {
		return nil, apperrors.InternalError(err)
	}

	token, err := s.signInviteToken(invitation)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.sendInvitationEmail(req.Email, inviter, org, req.Role, token)

	return &dto.InvitationResponse{
		ID:        invitation.ID,
		Email:     invitation.Email,
		Role:      invitation.Role,
		Status:    invitation.Status,
		ExpiresAt: invitation.ExpiresAt,
	}, nil
}

func (s *OrganizationServiceImpl) AcceptInvitation(db *gorm.DB, userID, token string) (*dto.OrganizationResponse, error) {
	claims, err := s.parseInviteToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	invitation, err := s.orgRepo.FindInvitationByID(db, claims.InvitationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if invitation == nil || invitation.Status != models.InvitationStatusPending {
		return nil, apperrors.ErrInvalidToken
	}
	if !time.Now().Before(invitation.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	existing, err := s.orgRepo.FindMembership(db, invitation.OrganizationID, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if existing != nil {
		return nil, apperrors.ErrAlreadyMember
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.orgRepo.CreateMembership(tx, &models.Membership{
			OrganizationID: invitation.OrganizationID,
			UserID:         userID,
			Role:           invitation.Role,
		}); err != nil {
			return err
		}
		return s.orgRepo.UpdateInvitationStatus(tx, invitation.ID, models.InvitationStatusAccepted)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	org, err := s.orgRepo.FindByID(db, invitation.OrganizationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewOrganizationResponse(org), nil
}

func (s *OrganizationServiceImpl) RevokeInvitation(db *gorm.DB, organizationID, actorUserID, invitationID string) error {
	if _, err := s.requireManager(db, organizationID, actorUserID); err != nil {
		return err
	}
	invitation, err := s.orgRepo.FindInvitationByID(db, invitationID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if invitation == nil || invitation.OrganizationID != organizationID {
		return apperrors.ErrNotFound(nil)
	}
	if err := s.orgRepo.UpdateInvitationStatus(db, invitationID, models.InvitationStatusRevoked); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *OrganizationServiceImpl) ListInvitations(db *gorm.DB, organizationID, userID string) ([]dto.InvitationResponse, error) {
	if _, err := s.requireManager(db, organizationID, userID); err != nil {
		return nil, err
	}
	invitations, err := s.orgRepo.ListInvitations(db, organizationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	responses := make([]dto.InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		responses = append(responses, dto.InvitationResponse{
			ID:        inv.ID,
			Email:     inv.Email,
			Role:      inv.Role,
			Status:    inv.Status,
			ExpiresAt: inv.ExpiresAt,
		})
	}
	return responses, nil
}

func (s *OrganizationServiceImpl) SwitchActiveOrganization(db *gorm.DB, sessionID, userID, organizationID string) error {
	if _, err := s.requireMembership(db, organizationID, userID); err != nil {
		return err
	}
	if err := s.sessRepo.SetActiveOrganization(db, sessionID, &organizationID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *OrganizationServiceImpl) signInviteToken(invitation *models.Invitation) (string, error) {
	claims := inviteClaims{
		InvitationID:   invitation.ID,
		OrganizationID: invitation.OrganizationID,
		Email:          invitation.Email,
		Role:           invitation.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(invitation.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Auth.InviteSecret))
}

func (s *OrganizationServiceImpl) parseInviteToken(tokenStr string) (*inviteClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &inviteClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Auth.InviteSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*inviteClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid invite token")
	}
	return claims, nil
}

func (s *OrganizationServiceImpl) sendInvitationEmail(to string, inviter *models.User, org *models.Organization, role models.MembershipRole, token string) {
	if s.emailProv == nil {
		return
	}
	inviterName := "Someone"
	if inviter != nil {
		inviterName = inviter.Username
	}
	err := s.emailProv.SendWithTemplate(email.TemplateInvitation, email.TemplateData{
		"InviterName":      inviterName,
		"OrganizationName": org.Name,
		"Role":             string(role),
		"Link":             fmt.Sprintf("%s/invitations/accept?token=%s", s.cfg.Email.AppBaseURL, token),
		"TTL":              fmt.Sprintf("%d days", s.cfg.Auth.InviteTTLDays),
	}, &email.Email{
		To:      []string{to},
		Subject: fmt.Sprintf("Invitation to join %s", org.Name),
	})
	if err != nil {
		logger.Warn("failed to send invitation email", "error", err)
	}
}
