package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tutorlink/backend/core"
)

var (
	validRoleTag  = "validrole"
	validRoleText = "invalid role"
)

// RegisterValidators registers the user package's custom validators.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(validRoleTag, validRoleValidation)
	core.RegisterCustomTranslation(validate, translator, validRoleTag, validRoleText)
}

func validRoleValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	return role == "" || IsValidRole(role)
}

// Validate cleans and validates registration data. An unset Role defaults
// to student, mirroring self-service sign up.
func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Username = core.CleanString(na.Username, true /* lower */)
	if na.Role == "" {
		na.Role = RoleStudent
	}
	if !IsValidRole(na.Role) {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: validRoleText})
	}
	return validate.Struct(na)
}
