package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saaskit_backend/internal/services"
	"saaskit_backend/internal/services/dto"
)

type BillingHandler struct {
	*BaseHandler
	billingService services.BillingService
}

func NewBillingHandler(base *BaseHandler, billingService services.BillingService) *BillingHandler {
	return &BillingHandler{
		BaseHandler:    base,
		billingService: billingService,
	}
}

func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	billing := rg.Group("/billing")
	{
		billing.GET("/plans", h.ListPlans)
		// Provider-to-server webhook, authenticated by signature only.
		billing.POST("/callback", h.PaymentCallback)
	}

	scoped := rg.Group("/organizations/:id/billing")
	scoped.Use(authMW)
	{
		scoped.POST("/checkout", h.Checkout)
		scoped.GET("/subscription", h.GetSubscription)
	}
}

func (h *BillingHandler) ListPlans(c *gin.Context) {
	db := h.GetDB(c)

	resp, err := h.billingService.ListPlans(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": resp})
}

func (h *BillingHandler) Checkout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.billingService.Checkout(db, c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *BillingHandler) PaymentCallback(c *gin.Context) {
	var req dto.PaymentCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	db := h.GetDB(c)

	ack, err := h.billingService.HandleResultCallback(db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	// The provider retries unless it reads back OK<InvId> verbatim.
	c.String(http.StatusOK, ack)
}

func (h *BillingHandler) GetSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	resp, err := h.billingService.GetSubscription(db, c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
