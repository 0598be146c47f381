package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "userhub/internal/errors"
)

// MinPasswordLength is the shortest password accepted at signup or update.
const MinPasswordLength = 8

// UserValidator validates and normalizes user fields. Each rule is an
// explicit function returning a typed error instead of failing mid-write.
type UserValidator struct {
	validate *validator.Validate
}

// NewUserValidator creates a new user validator.
func NewUserValidator() *UserValidator {
	return &UserValidator{validate: validator.New()}
}

// NormalizeName trims the name and rejects empty values.
func (v *UserValidator) NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError("name", "must not be empty")
	}
	return name, nil
}

// NormalizeEmail trims, lower-cases, and syntax-checks the email.
func (v *UserValidator) NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := v.validate.Var(email, "required,email"); err != nil {
		return "", apperrors.NewValidationError("email", "is not a valid email address")
	}
	return email, nil
}

// ValidatePassword trims the plaintext and enforces the password policy:
// minimum length and no literal "password" in any case.
func (v *UserValidator) ValidatePassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if len(password) < MinPasswordLength {
		return "", apperrors.NewValidationError("password", "must be at least 8 characters")
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return "", apperrors.NewValidationError("password", `cannot contain "password"`)
	}
	return password, nil
}

// ValidateAge rejects ages below 1.
func (v *UserValidator) ValidateAge(age int) error {
	if age < 1 {
		return apperrors.NewValidationError("age", "must be at least 1")
	}
	return nil
}
