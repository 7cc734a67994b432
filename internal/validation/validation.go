// Package validation checks request payloads and reports field-level errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"agora/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 12
	maxPasswordLength = 128
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_-]{1,28})[A-Za-z0-9]$`)
	validate        = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
	return v
}

// Struct validates s against its `validate` tags. Failures come back as a
// Validation AppError listing every offending field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewValidationError(err.Error())
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return models.NewFieldValidationError("Validation failed", fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "username":
		return ValidateUsername(fieldString(fe)).Error()
	case "password":
		return ValidatePassword(fieldString(fe)).Error()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func fieldString(fe validator.FieldError) string {
	switch v := fe.Value().(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	}
	return ""
}

// ValidateUsername accepts 3-30 letters, digits, '_' and '-', starting and
// ending with a letter or digit.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 30 {
		return errors.New("username must be between 3 and 30 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may only contain letters, digits, '_' and '-', and must start and end with a letter or digit")
	}
	return nil
}

// ValidatePassword requires upper and lower case letters, a digit and a
// symbol, within the length bounds.
func ValidatePassword(password string) error {
	n := len([]rune(password))
	if n < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if n > maxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLength)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return errors.New("password must contain upper and lower case letters, a digit and a symbol")
	}
	return nil
}
