package validation

// Error codes returned by the auth endpoints.
const (
	CodeInvalidEmail              = "INVALID_EMAIL"
	CodeInvalidPassword           = "INVALID_PASSWORD"
	CodeInvalidName               = "INVALID_NAME"
	CodeInvalidUsername           = "INVALID_USERNAME"
	CodeInvalidDisplayUsername    = "INVALID_DISPLAY_USERNAME"
	CodeInvalidUsernameOrPassword = "INVALID_USERNAME_OR_PASSWORD"
	CodeInvalidEmailOrPassword    = "INVALID_EMAIL_OR_PASSWORD"
	CodeUsernameTaken             = "USERNAME_IS_ALREADY_TAKEN_PLEASE_TRY_ANOTHER"
	CodeValidationError           = "VALIDATION_ERROR"
	CodeProjectSlugAlreadyExists  = "PROJECT_SLUG_ALREADY_EXISTS"
	CodeProjectNotFound           = "PROJECT_NOT_FOUND"
)

// AuthCodeForField maps a credential field to its error code.
func AuthCodeForField(field string) (string, bool) {
	switch field {
	case "email":
		return CodeInvalidEmail, true
	case "password":
		return CodeInvalidPassword, true
	case "name":
		return CodeInvalidName, true
	case "username":
		return CodeInvalidUsername, true
	case "displayUsername":
		return CodeInvalidDisplayUsername, true
	}
	return "", false
}

// FirstAuthCode returns the code of the first failing credential field.
func (e *FieldErrors) FirstAuthCode() (string, bool) {
	if e.empty() {
		return "", false
	}
	for _, f := range e.order {
		if code, ok := AuthCodeForField(f); ok {
			return code, true
		}
	}
	return "", false
}
