package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saaskit_backend/internal/middleware"
	"saaskit_backend/internal/services"
	"saaskit_backend/internal/services/dto"
)

type AdminHandler struct {
	*BaseHandler
	userService          services.UserService
	impersonationService services.ImpersonationService
}

func NewAdminHandler(
	base *BaseHandler,
	userService services.UserService,
	impersonationService services.ImpersonationService,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:          base,
		userService:          userService,
		impersonationService: impersonationService,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	admin := rg.Group("/admin")
	admin.Use(authMW)
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", h.ListUsers)
		admin.PATCH("/users/:id/role", h.UpdateRole)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.POST("/impersonate", h.StartImpersonation)
	}

	// Stopping must stay reachable while the effective user is NOT an
	// admin, so it sits outside the RequireAdmin group. The service
	// only matches sessions this admin started impersonation on.
	stop := rg.Group("/admin")
	stop.Use(authMW)
	{
		stop.DELETE("/impersonate", h.StopImpersonation)
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	db := h.GetDB(c)

	users, total, err := h.userService.ListUsers(db, pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":     users,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *AdminHandler) UpdateRole(c *gin.Context) {
	targetID := c.Param("id")

	var req dto.AdminUpdateRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.userService.UpdateRole(db, targetID, req.Role); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	targetID := c.Param("id")

	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if targetID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	db := h.GetDB(c)

	if err := h.userService.DeleteUser(db, targetID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *AdminHandler) StartImpersonation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req dto.ImpersonateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if req.TargetUserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot impersonate yourself"})
		return
	}

	db := h.GetDB(c)

	if err := h.impersonationService.Start(db, session.ID, userID, req.TargetUserID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Impersonation started"})
}

func (h *AdminHandler) StopImpersonation(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	if session.ImpersonatorUserID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session is not impersonating"})
		return
	}

	db := h.GetDB(c)

	if err := h.impersonationService.Stop(db, session.ID, *session.ImpersonatorUserID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Impersonation stopped"})
}
