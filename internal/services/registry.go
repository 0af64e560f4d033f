package services

import (
	"saaskit_backend/internal/auth"
	"saaskit_backend/internal/config"
	"saaskit_backend/internal/email"
	"saaskit_backend/internal/repositories"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	SessionService       SessionService
	OnboardingService    OnboardingService
	ImpersonationService ImpersonationService
	UserService          UserService
	OrganizationService  OrganizationService
	TodoService          TodoService
	BillingService       BillingService
	EmailService         email.Provider
}

func NewServiceContainer(emailProv email.Provider, cfg *config.Config) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	sessionRepo := repositories.NewSessionRepository()
	tokenRepo := repositories.NewTokenRepository()
	oauthRepo := repositories.NewOAuthRepository()
	orgRepo := repositories.NewOrganizationRepository()
	todoRepo := repositories.NewTodoRepository()
	billingRepo := repositories.NewBillingRepository()

	pwned := auth.NewPwnedChecker(cfg.Auth.PwnedCheckEnabled)

	sessionService := NewSessionService(userRepo, sessionRepo, tokenRepo, oauthRepo, orgRepo, emailProv, pwned, cfg)

	return &ServiceContainer{
		SessionService:       sessionService,
		OnboardingService:    NewOnboardingService(userRepo, orgRepo, sessionService, emailProv, pwned, cfg),
		ImpersonationService: NewImpersonationService(userRepo, sessionRepo),
		UserService:          NewUserService(userRepo, sessionRepo),
		OrganizationService:  NewOrganizationService(orgRepo, userRepo, sessionRepo, emailProv, cfg),
		TodoService:          NewTodoService(todoRepo, orgRepo),
		BillingService:       NewBillingService(billingRepo, orgRepo, userRepo, NewPaymentProvider(cfg)),
		EmailService:         emailProv,
	}
}
