package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"saaskit_backend/internal/models"
)

type BillingRepository interface {
	ListPlans(db *gorm.DB) ([]models.Plan, error)
	FindPlanByID(db *gorm.DB, id string) (*models.Plan, error)
	FindPlanByCode(db *gorm.DB, code string) (*models.Plan, error)
	CreatePlan(db *gorm.DB, plan *models.Plan) error

	CreatePayment(db *gorm.DB, payment *models.Payment) error
	FindPaymentByOrderID(db *gorm.DB, orderID string) (*models.Payment, error)
	UpdatePayment(db *gorm.DB, payment *models.Payment) error

	CreateSubscription(db *gorm.DB, sub *models.Subscription) error
	FindActiveSubscription(db *gorm.DB, organizationID string) (*models.Subscription, error)
	ExpireOverdue(db *gorm.DB) (int64, error)
}

type billingRepository struct{}

func NewBillingRepository() BillingRepository {
	return &billingRepository{}
}

func (r *billingRepository) ListPlans(db *gorm.DB) ([]models.Plan, error) {
	var plans []models.Plan
	err := db.Where("is_active = ?", true).Order("price").Find(&plans).Error
	return plans, err
}

func (r *billingRepository) FindPlanByID(db *gorm.DB, id string) (*models.Plan, error) {
	var plan models.Plan
	err := db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *billingRepository) FindPlanByCode(db *gorm.DB, code string) (*models.Plan, error) {
	var plan models.Plan
	err := db.Where("code = ?", code).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *billingRepository) CreatePlan(db *gorm.DB, plan *models.Plan) error {
	return db.Create(plan).Error
}

func (r *billingRepository) CreatePayment(db *gorm.DB, payment *models.Payment) error {
	return db.Create(payment).Error
}

func (r *billingRepository) FindPaymentByOrderID(db *gorm.DB, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := db.Where("order_id = ?", orderID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *billingRepository) UpdatePayment(db *gorm.DB, payment *models.Payment) error {
	return db.Save(payment).Error
}

func (r *billingRepository) CreateSubscription(db *gorm.DB, sub *models.Subscription) error {
	return db.Create(sub).Error
}

func (r *billingRepository) FindActiveSubscription(db *gorm.DB, organizationID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.Where("organization_id = ? AND status = ? AND end_date > ?",
		organizationID, models.SubscriptionStatusActive, time.Now()).
		Order("end_date DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *billingRepository) ExpireOverdue(db *gorm.DB) (int64, error) {
	result := db.Model(&models.Subscription{}).
		Where("status = ? AND end_date < ?", models.SubscriptionStatusActive, time.Now()).
		Update("status", models.SubscriptionStatusExpired)
	return result.RowsAffected, result.Error
}
