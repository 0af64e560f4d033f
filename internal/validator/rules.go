package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"saaskit_backend/internal/models"
)

// registerCustomRules registers all custom validation tags. A failed
// registration is a startup error.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'password': length bounds of the password policy. The breach check
	// is a network call and stays in the service layer.
	mustRegister("password", validatePasswordLength)

	// 'is-membership-role': owner/admin/member
	mustRegister("is-membership-role", validateMembershipRole)

	// 'otp': exactly 6 ASCII digits
	mustRegister("otp", validateOtpFormat)
}

func validatePasswordLength(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' owns the empty case
	}
	return len(value) >= 8 && len(value) <= 72
}

func validateMembershipRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.MembershipRole(value) {
	case models.MembershipRoleOwner, models.MembershipRoleAdmin, models.MembershipRoleMember:
		return true
	}
	return false
}

func validateOtpFormat(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if len(value) != 6 {
		return false
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
