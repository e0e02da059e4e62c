package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/kymawa/ratiba/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"
)

// RegisterValidators registers this package's custom validators.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(validate, translator, allRolesTag, allRolesText)
}

// allRolesValidation checks that all provided roles are known.
func allRolesValidation(fl validator.FieldLevel) bool {
	if roles, ok := fl.Field().Interface().([]string); ok {
		for _, role := range roles {
			if !isKnownRole(role) {
				return false
			}
		}
		return true
	}
	return false
}

func isKnownRole(role string) bool {
	for _, known := range AllRoles {
		if role == known {
			return true
		}
	}
	return false
}
