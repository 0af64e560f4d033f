package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saaskit_backend/internal/handlers"
)

// RegisterRoutes mounts all HTTP routes. authMW resolves bearer
// sessions, rateLimitMW throttles credential endpoints.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	authMW gin.HandlerFunc,
	rateLimitMW gin.HandlerFunc,
) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, authMW, rateLimitMW)
		appHandlers.UserHandler.RegisterRoutes(api, authMW)
		appHandlers.AdminHandler.RegisterRoutes(api, authMW)
		appHandlers.OrganizationHandler.RegisterRoutes(api, authMW)
		appHandlers.TodoHandler.RegisterRoutes(api, authMW)
		appHandlers.BillingHandler.RegisterRoutes(api, authMW)
	}
}
