package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"saaskit_backend/internal/middleware"
	"saaskit_backend/internal/services"
	"saaskit_backend/internal/services/dto"
)

type AuthHandler struct {
	*BaseHandler
	sessionService    services.SessionService
	onboardingService services.OnboardingService
}

func NewAuthHandler(
	base *BaseHandler,
	sessionService services.SessionService,
	onboardingService services.OnboardingService,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:       base,
		sessionService:    sessionService,
		onboardingService: onboardingService,
	}
}

// RegisterRoutes mounts the credential lifecycle. rateLimitMW throttles
// the unauthenticated endpoints; authMW guards the rest.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMW, rateLimitMW gin.HandlerFunc) {
	auth := rg.Group("/auth")
	auth.Use(rateLimitMW)
	{
		auth.POST("/sign-up", h.SignUp)
		auth.POST("/sign-in", h.SignIn)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.POST("/request-password-reset", h.RequestPasswordReset)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/request-otp", h.RequestOtp)
		auth.POST("/verify-otp", h.VerifyOtp)
		auth.POST("/oauth/callback", h.OAuthCallback)
	}

	session := rg.Group("/auth")
	session.Use(authMW)
	{
		session.POST("/sign-out", h.SignOut)
		session.POST("/change-password", h.ChangePassword)
		session.GET("/session", h.CurrentSession)
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.onboardingService.SignUp(db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Registration successful. Please check your email to verify your account.",
		"user":            resp.User,
		"organization_id": resp.OrganizationID,
	})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.sessionService.SignInWithEmail(db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
		return
	}

	db := h.GetDB(c)

	if err := h.sessionService.SignOut(db, token); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.sessionService.VerifyEmail(db, req.Token); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.RequestPasswordResetRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.sessionService.RequestPasswordReset(db, req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	// Same body for known and unknown addresses.
	c.JSON(http.StatusOK, gin.H{
		"message": "If that email address is registered, a reset link has been sent.",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.sessionService.ResetPassword(db, req.Token, req.NewPassword); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated. Please sign in again."})
}

func (h *AuthHandler) RequestOtp(c *gin.Context) {
	var req dto.RequestOtpRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.sessionService.RequestOtp(db, req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If that email address is registered, a sign-in code has been sent.",
	})
}

func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req dto.VerifyOtpRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.sessionService.VerifyOtpAndSignIn(db, req.Email, req.Code)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	var req dto.OAuthCallbackRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.sessionService.HandleOAuthCallback(db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	db := h.GetDB(c)

	if err := h.sessionService.ChangePassword(db, userID, session.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed. Other sessions have been revoked."})
}

// CurrentSession reports who the caller is, including impersonation
// state, so clients can render an "acting as" banner.
func (h *AuthHandler) CurrentSession(c *gin.Context) {
	session := middleware.GetSession(c)
	user := middleware.GetUser(c)
	if session == nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":                   dto.NewUserResponse(user),
		"expires_at":             session.ExpiresAt,
		"active_organization_id": session.ActiveOrganizationID,
		"impersonated":           session.ImpersonatorUserID != nil,
	})
}
