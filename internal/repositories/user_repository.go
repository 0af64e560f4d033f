package repositories

import (
	"errors"

	"gorm.io/gorm"

	"saaskit_backend/internal/models"
)

// UserRepository is a pure data-access facade: one method, one statement.
// Not-found is reported as (nil, nil), never as an error — callers decide
// whether a miss is exceptional.
type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)

	// FindByEmail omits the password hash and is safe for general reads.
	FindByEmail(db *gorm.DB, email string) (*models.User, error)

	// FindByEmailWithPassword projects the password hash. Only call this
	// immediately before verifying a presented password.
	FindByEmailWithPassword(db *gorm.DB, email string) (*models.User, error)

	Create(db *gorm.DB, user *models.User) error
	Update(db *gorm.DB, user *models.User) error
	UpdatePassword(db *gorm.DB, userID, passwordHash string) error
	MarkEmailVerified(db *gorm.DB, userID string) error
	UpdateRole(db *gorm.DB, userID string, role models.UserRole) error
	UpdateBillingCustomerID(db *gorm.DB, userID, customerID string) error
	Delete(db *gorm.DB, userID string) error

	FindAll(db *gorm.DB, limit, offset int) ([]models.User, error)
	CountAll(db *gorm.DB) (int64, error)
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

// Columns projected on reads that must not see the password hash.
var userSafeColumns = []string{
	"id", "created_at", "updated_at", "email", "username", "role",
	"email_verified", "recovery_code", "billing_customer_id",
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.Select(userSafeColumns).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Select(userSafeColumns).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmailWithPassword(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	return db.Save(user).Error
}

func (r *userRepository) UpdatePassword(db *gorm.DB, userID, passwordHash string) error {
	return db.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

func (r *userRepository) MarkEmailVerified(db *gorm.DB, userID string) error {
	return db.Model(&models.User{}).Where("id = ?", userID).
		Update("email_verified", true).Error
}

func (r *userRepository) UpdateRole(db *gorm.DB, userID string, role models.UserRole) error {
	return db.Model(&models.User{}).Where("id = ?", userID).
		Update("role", role).Error
}

func (r *userRepository) UpdateBillingCustomerID(db *gorm.DB, userID, customerID string) error {
	return db.Model(&models.User{}).Where("id = ?", userID).
		Update("billing_customer_id", customerID).Error
}

func (r *userRepository) Delete(db *gorm.DB, userID string) error {
	return db.Where("id = ?", userID).Delete(&models.User{}).Error
}

func (r *userRepository) FindAll(db *gorm.DB, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := db.Select(userSafeColumns).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *userRepository) CountAll(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).Count(&count).Error
	return count, err
}
