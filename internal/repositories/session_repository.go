package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"saaskit_backend/internal/models"
)

type SessionRepository interface {
	Create(db *gorm.DB, session *models.Session) error

	// FindByIDWithUser loads the session and its owning user in one query.
	FindByIDWithUser(db *gorm.DB, id string) (*models.Session, error)

	// Rotate replaces a session's id and expiry in place (sliding-window
	// renewal). Returns the number of rows touched.
	Rotate(db *gorm.DB, oldID, newID string, expiresAt time.Time) (int64, error)

	Delete(db *gorm.DB, id string) error
	DeleteAllForUser(db *gorm.DB, userID string) error
	// DeleteAllForUserExcept revokes every session of the user but the
	// one making the request.
	DeleteAllForUserExcept(db *gorm.DB, userID, keepSessionID string) error
	DeleteExpired(db *gorm.DB) (int64, error)

	SetActiveOrganization(db *gorm.DB, sessionID string, organizationID *string) error

	// StartImpersonation swaps the effective user and records the admin.
	StartImpersonation(db *gorm.DB, sessionID, targetUserID, adminUserID string) (int64, error)

	// StopImpersonation restores the admin as the effective user.
	StopImpersonation(db *gorm.DB, sessionID, adminUserID string) (int64, error)
}

type sessionRepository struct{}

func NewSessionRepository() SessionRepository {
	return &sessionRepository{}
}

func (r *sessionRepository) Create(db *gorm.DB, session *models.Session) error {
	return db.Create(session).Error
}

func (r *sessionRepository) FindByIDWithUser(db *gorm.DB, id string) (*models.Session, error) {
	var session models.Session
	err := db.Preload("User").Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Rotate(db *gorm.DB, oldID, newID string, expiresAt time.Time) (int64, error) {
	result := db.Model(&models.Session{}).Where("id = ?", oldID).
		Updates(map[string]interface{}{
			"id":         newID,
			"expires_at": expiresAt,
		})
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) Delete(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&models.Session{}).Error
}

func (r *sessionRepository) DeleteAllForUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

func (r *sessionRepository) DeleteAllForUserExcept(db *gorm.DB, userID, keepSessionID string) error {
	return db.Where("user_id = ? AND id <> ?", userID, keepSessionID).Delete(&models.Session{}).Error
}

func (r *sessionRepository) DeleteExpired(db *gorm.DB) (int64, error) {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) SetActiveOrganization(db *gorm.DB, sessionID string, organizationID *string) error {
	return db.Model(&models.Session{}).Where("id = ?", sessionID).
		Update("active_organization_id", organizationID).Error
}

func (r *sessionRepository) StartImpersonation(db *gorm.DB, sessionID, targetUserID, adminUserID string) (int64, error) {
	result := db.Model(&models.Session{}).Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"user_id":              targetUserID,
			"impersonator_user_id": adminUserID,
		})
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) StopImpersonation(db *gorm.DB, sessionID, adminUserID string) (int64, error) {
	result := db.Model(&models.Session{}).
		Where("id = ? AND impersonator_user_id = ?", sessionID, adminUserID).
		Updates(map[string]interface{}{
			"user_id":              adminUserID,
			"impersonator_user_id": nil,
		})
	return result.RowsAffected, result.Error
}
