package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saaskit_backend/internal/services"
	"saaskit_backend/internal/services/dto"
)

// TodoHandler serves the per-organization todo CRUD, nested under
// /organizations/:id so the scoping is visible in the URL.
type TodoHandler struct {
	*BaseHandler
	todoService services.TodoService
}

func NewTodoHandler(base *BaseHandler, todoService services.TodoService) *TodoHandler {
	return &TodoHandler{
		BaseHandler: base,
		todoService: todoService,
	}
}

func (h *TodoHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	todos := rg.Group("/organizations/:id/todos")
	todos.Use(authMW)
	{
		todos.POST("", h.Create)
		todos.GET("", h.List)
		todos.PATCH("/:todoID", h.Update)
		todos.DELETE("/:todoID", h.Delete)
	}
}

func (h *TodoHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTodoRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.todoService.Create(db, c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *TodoHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)

	db := h.GetDB(c)

	resp, err := h.todoService.List(db, c.Param("id"), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TodoHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTodoRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.todoService.Update(db, c.Param("id"), userID, c.Param("todoID"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.todoService.Delete(db, c.Param("id"), userID, c.Param("todoID")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted"})
}
