package session

import (
	"fmt"
	"strings"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

// ValidationError is a client-side form error raised before any request is sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RegisterForm holds the registration fields including the confirmation
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks required fields, then the confirmation, then the length
func (f RegisterForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if err := validateEmail(f.Email); err != nil {
		return err
	}
	if f.Password != f.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	}
	if len(f.Password) < MinPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		}
	}
	return nil
}

// ValidateLogin checks that both login fields were filled in
func ValidateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Message: "email is not valid"}
	}
	return nil
}
