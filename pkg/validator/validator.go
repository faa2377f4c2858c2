package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// FieldError is a single failed rule reported back to API clients.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"phone":    "must be a valid phone number",
	"min":      "is too short",
	"max":      "is too long",
	"oneof":    "has an unsupported value",
	"gte":      "must not be negative",
	"gt":       "must be positive",
}

// IsValidPhone accepts 10 to 15 digits with optional spaces, dashes,
// parentheses and a leading plus.
func IsValidPhone(s string) bool {
	digits := 0
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}

func phone(fl validator.FieldLevel) bool {
	return IsValidPhone(fl.Field().String())
}

// Register installs the custom rules and reports json field names in errors.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v.RegisterValidation("phone", phone)
}

// Fields flattens validation errors into client-facing messages. ok is false
// when err is not a validation failure.
func Fields(err error) ([]FieldError, bool) {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, false
	}
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		msg, found := messages[e.Tag()]
		if !found {
			msg = fmt.Sprintf("failed %s validation", e.Tag())
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out, true
}
