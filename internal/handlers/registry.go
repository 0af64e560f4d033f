package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	AdminHandler        *AdminHandler
	OrganizationHandler *OrganizationHandler
	TodoHandler         *TodoHandler
	BillingHandler      *BillingHandler
}
