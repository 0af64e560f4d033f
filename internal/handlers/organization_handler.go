package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saaskit_backend/internal/middleware"
	"saaskit_backend/internal/services"
	"saaskit_backend/internal/services/dto"
)

type OrganizationHandler struct {
	*BaseHandler
	orgService services.OrganizationService
}

func NewOrganizationHandler(base *BaseHandler, orgService services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		BaseHandler: base,
		orgService:  orgService,
	}
}

func (h *OrganizationHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	orgs := rg.Group("/organizations")
	orgs.Use(authMW)
	{
		orgs.POST("", h.Create)
		orgs.GET("", h.ListMine)
		orgs.GET("/:id", h.Get)
		orgs.PATCH("/:id", h.Update)
		orgs.DELETE("/:id", h.Delete)

		orgs.GET("/:id/members", h.ListMembers)
		orgs.DELETE("/:id/members/:userID", h.RemoveMember)

		orgs.POST("/:id/invitations", h.Invite)
		orgs.GET("/:id/invitations", h.ListInvitations)
		orgs.DELETE("/:id/invitations/:invitationID", h.RevokeInvitation)

		orgs.POST("/accept-invitation", h.AcceptInvitation)
		orgs.POST("/switch", h.Switch)
	}
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateOrganizationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.orgService.Create(db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *OrganizationHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	resp, err := h.orgService.ListForUser(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizations": resp})
}

func (h *OrganizationHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	resp, err := h.orgService.Get(db, c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *OrganizationHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateOrganizationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.orgService.Update(db, c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *OrganizationHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.orgService.Delete(db, c.Param("id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}

func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	resp, err := h.orgService.ListMembers(db, c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": resp})
}

func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.orgService.RemoveMember(db, c.Param("id"), userID, c.Param("userID")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

func (h *OrganizationHandler) Invite(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.InviteMemberRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.orgService.Invite(db, c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *OrganizationHandler) ListInvitations(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	resp, err := h.orgService.ListInvitations(db, c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": resp})
}

func (h *OrganizationHandler) RevokeInvitation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.orgService.RevokeInvitation(db, c.Param("id"), userID, c.Param("invitationID")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation revoked"})
}

func (h *OrganizationHandler) AcceptInvitation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.AcceptInvitationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.orgService.AcceptInvitation(db, userID, req.Token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *OrganizationHandler) Switch(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req dto.SwitchOrganizationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.orgService.SwitchActiveOrganization(db, session.ID, userID, req.OrganizationID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Active organization updated"})
}
