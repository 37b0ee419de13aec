package utils

import (
	"regexp"

	"carealert-service/internal/pkg/constvars"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("password", validatePassword)
	validate.RegisterValidation("role", validateRole)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	hasMinLen := len(password) >= 8
	hasSpecialChar := regexp.MustCompile(constvars.RegexContainAtLeastOneSpecialChar).MatchString(password)
	hasUppercase := regexp.MustCompile(constvars.RegexContainAtLeastOneUppercase).MatchString(password)
	return hasMinLen && hasSpecialChar && hasUppercase
}

func validateRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == constvars.RoleTypePatient ||
		value == constvars.RoleTypeCaretaker ||
		value == constvars.RoleTypeMedical
}

// IsKnownRole reports whether role belongs to the fixed application role set.
func IsKnownRole(role string) bool {
	switch role {
	case constvars.RoleTypePatient, constvars.RoleTypeCaretaker, constvars.RoleTypeMedical:
		return true
	}
	return false
}
