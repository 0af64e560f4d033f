package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"saaskit_backend/internal/models"
)

// TokenRepository covers the three one-time credential tables. All
// lookups are by stored hash; plaintext values never reach the database.
type TokenRepository interface {
	// Email verification
	CreateVerificationToken(db *gorm.DB, token *models.EmailVerificationToken) error
	FindVerificationTokenByHash(db *gorm.DB, hash string) (*models.EmailVerificationToken, error)
	DeleteVerificationToken(db *gorm.DB, id string) error
	DeleteVerificationTokensForUser(db *gorm.DB, userID string) error

	// Password reset
	CreateResetToken(db *gorm.DB, token *models.PasswordResetToken) error
	FindResetTokenByHash(db *gorm.DB, hash string) (*models.PasswordResetToken, error)
	DeleteResetToken(db *gorm.DB, id string) error
	DeleteResetTokensForUser(db *gorm.DB, userID string) error

	// OTP
	CreateOtpCode(db *gorm.DB, code *models.OtpCode) error
	FindOtpCodeForUser(db *gorm.DB, userID string) (*models.OtpCode, error)
	DeleteOtpCode(db *gorm.DB, id string) error
	DeleteOtpCodesForUser(db *gorm.DB, userID string) error

	// Lazy-expiry backstop used by the cleanup worker.
	DeleteExpired(db *gorm.DB) (int64, error)
}

type tokenRepository struct{}

func NewTokenRepository() TokenRepository {
	return &tokenRepository{}
}

func (r *tokenRepository) CreateVerificationToken(db *gorm.DB, token *models.EmailVerificationToken) error {
	return db.Create(token).Error
}

func (r *tokenRepository) FindVerificationTokenByHash(db *gorm.DB, hash string) (*models.EmailVerificationToken, error) {
	var token models.EmailVerificationToken
	err := db.Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) DeleteVerificationToken(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&models.EmailVerificationToken{}).Error
}

func (r *tokenRepository) DeleteVerificationTokensForUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.EmailVerificationToken{}).Error
}

func (r *tokenRepository) CreateResetToken(db *gorm.DB, token *models.PasswordResetToken) error {
	return db.Create(token).Error
}

func (r *tokenRepository) FindResetTokenByHash(db *gorm.DB, hash string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := db.Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) DeleteResetToken(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&models.PasswordResetToken{}).Error
}

func (r *tokenRepository) DeleteResetTokensForUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error
}

func (r *tokenRepository) CreateOtpCode(db *gorm.DB, code *models.OtpCode) error {
	return db.Create(code).Error
}

func (r *tokenRepository) FindOtpCodeForUser(db *gorm.DB, userID string) (*models.OtpCode, error) {
	var code models.OtpCode
	err := db.Where("user_id = ?", userID).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

func (r *tokenRepository) DeleteOtpCode(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&models.OtpCode{}).Error
}

func (r *tokenRepository) DeleteOtpCodesForUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.OtpCode{}).Error
}

func (r *tokenRepository) DeleteExpired(db *gorm.DB) (int64, error) {
	now := time.Now()
	var total int64

	result := db.Where("expires_at < ?", now).Delete(&models.EmailVerificationToken{})
	if result.Error != nil {
		return total, result.Error
	}
	total += result.RowsAffected

	result = db.Where("expires_at < ?", now).Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return total, result.Error
	}
	total += result.RowsAffected

	result = db.Where("expires_at < ?", now).Delete(&models.OtpCode{})
	if result.Error != nil {
		return total, result.Error
	}
	total += result.RowsAffected

	return total, nil
}
