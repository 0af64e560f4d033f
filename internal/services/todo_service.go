package services

import (
	"gorm.io/gorm"

	"saaskit_backend/internal/models"
	"saaskit_backend/internal/repositories"
	"saaskit_backend/internal/services/dto"
	"saaskit_backend/pkg/apperrors"
)

type TodoService interface {
	Create(db *gorm.DB, organizationID, userID string, req *dto.CreateTodoRequest) (*dto.TodoResponse, error)
	List(db *gorm.DB, organizationID, userID string, limit, offset int) (*dto.TodoListResponse, error)
	Update(db *gorm.DB, organizationID, userID, todoID string, req *dto.UpdateTodoRequest) (*dto.TodoResponse, error)
	Delete(db *gorm.DB, organizationID, userID, todoID string) error
}

type TodoServiceImpl struct {
	todoRepo repositories.TodoRepository
	orgRepo  repositories.OrganizationRepository
}

func NewTodoService(todoRepo repositories.TodoRepository, orgRepo repositories.OrganizationRepository) TodoService {
	return &TodoServiceImpl{
		todoRepo: todoRepo,
		orgRepo:  orgRepo,
	}
}

func (s *TodoServiceImpl) requireMembership(db *gorm.DB, organizationID, userID string) error {
	membership, err := s.orgRepo.FindMembership(db, organizationID, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if membership == nil {
		return apperrors.ErrNotAMember
	}
	return nil
}

func (s *TodoServiceImpl) Create(db *gorm.DB, organizationID, userID string, req *dto.CreateTodoRequest) (*dto.TodoResponse, error) {
	if err := s.requireMembership(db, organizationID, userID); err != nil {
		return nil, err
	}

	todo := &models.Todo{
		OrganizationID: organizationID,
		CreatedByID:    userID,
		Title:          req.Title,
		Description:    req.Description,
		Tags:           req.Tags,
	}
	if err := s.todoRepo.Create(db, todo); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewTodoResponse(todo), nil
}

func (s *TodoServiceImpl) List(db *gorm.DB, organizationID, userID string, limit, offset int) (*dto.TodoListResponse, error) {
	if err := s.requireMembership(db, organizationID, userID); err != nil {
		return nil, err
	}

	todos, total, err := s.todoRepo.ListForOrganization(db, organizationID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, *dto.NewTodoResponse(&todos[i]))
	}
	return &dto.TodoListResponse{Todos: responses, Total: total}, nil
}

func (s *TodoServiceImpl) Update(db *gorm.DB, organizationID, userID, todoID string, req *dto.UpdateTodoRequest) (*dto.TodoResponse, error) {
	if err := s.requireMembership(db, organizationID, userID); err != nil {
		return nil, err
	}

	todo, err := s.todoRepo.FindByID(db, todoID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if todo == nil || todo.OrganizationID != organizationID {
		return nil, apperrors.ErrNotFound(nil)
	}

	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Done != nil {
		todo.Done = *req.Done
	}
	if req.Tags != nil {
		todo.Tags = req.Tags
	}

	if err := s.todoRepo.Update(db, todo); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewTodoResponse(todo), nil
}

func (s *TodoServiceImpl) Delete(db *gorm.DB, organizationID, userID, todoID string) error {
	if err := s.requireMembership(db, organizationID, userID); err != nil {
		return err
	}

	todo, err := s.todoRepo.FindByID(db, todoID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if todo == nil || todo.OrganizationID != organizationID {
		return apperrors.ErrNotFound(nil)
	}

	if err := s.todoRepo.Delete(db, todoID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}
