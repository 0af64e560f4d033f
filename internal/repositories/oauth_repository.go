package repositories

import (
	"errors"

	"gorm.io/gorm"

	"saaskit_backend/internal/models"
)

type OAuthRepository interface {
	Create(db *gorm.DB, account *models.OAuthAccount) error
	FindByProviderUser(db *gorm.DB, provider, providerUserID string) (*models.OAuthAccount, error)
}

type oauthRepository struct{}

func NewOAuthRepository() OAuthRepository {
	return &oauthRepository{}
}

func (r *oauthRepository) Create(db *gorm.DB, account *models.OAuthAccount) error {
	return db.Create(account).Error
}

func (r *oauthRepository) FindByProviderUser(db *gorm.DB, provider, providerUserID string) (*models.OAuthAccount, error) {
	var account models.OAuthAccount
	err := db.Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}
