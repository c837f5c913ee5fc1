package auth

import (
	"chat-hub/errors"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/leebenson/conform"
)

var validate = validator.New()

type SignupRequest struct {
	Email    string `conform:"email,lower" validate:"required,email,max=190"`
	Username string `conform:"trim" validate:"required,alphanum,min=3,max=32"`
	Password string `validate:"required,min=8,max=72"`
}

// NormalizeSignup trims the identity fields and lowercases the email.
// The password is kept byte for byte.
func NormalizeSignup(req *SignupRequest) error {
	return conform.Strings(req)
}

// ValidateSignup checks the field rules then password complexity.
func ValidateSignup(req SignupRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.Wrap(errors.KindBadRequest, "invalid signup request", err)
	}

	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
