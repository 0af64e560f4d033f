package repositories

import (
	"errors"

	"gorm.io/gorm"

	"saaskit_backend/internal/models"
)

type TodoRepository interface {
	Create(db *gorm.DB, todo *models.Todo) error
	FindByID(db *gorm.DB, id string) (*models.Todo, error)
	ListForOrganization(db *gorm.DB, organizationID string, limit, offset int) ([]models.Todo, int64, error)
	Update(db *gorm.DB, todo *models.Todo) error
	Delete(db *gorm.DB, id string) error
}

type todoRepository struct{}

func NewTodoRepository() TodoRepository {
	return &todoRepository{}
}

func (r *todoRepository) Create(db *gorm.DB, todo *models.Todo) error {
	return db.Create(todo).Error
}

func (r *todoRepository) FindByID(db *gorm.DB, id string) (*models.Todo, error) {
	var todo models.Todo
	err := db.Where("id = ?", id).First(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) ListForOrganization(db *gorm.DB, organizationID string, limit, offset int) ([]models.Todo, int64, error) {
	var todos []models.Todo
	var total int64

	query := db.Model(&models.Todo{}).Where("organization_id = ?", organizationID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&todos).Error
	return todos, total, err
}

func (r *todoRepository) Update(db *gorm.DB, todo *models.Todo) error {
	return db.Save(todo).Error
}

func (r *todoRepository) Delete(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&models.Todo{}).Error
}
