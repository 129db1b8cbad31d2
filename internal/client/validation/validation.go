// Package validation checks request payloads before they are sent, using
// go-playground/validator struct tags plus three custom tags:
//
//	username   3-32 characters from [a-zA-Z0-9._-]
//	password   8-64 characters with at least one letter and one digit
//	recipetag  a member of models.AllRecipeTags
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
)

const (
	UsernameMin = 3
	UsernameMax = 32
	PasswordMin = 8
	PasswordMax = 64
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// FieldError describes one invalid field. Field is the JSON name.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors is returned when a payload fails validation.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// AsErrors unwraps err into Errors.
func AsErrors(err error) (Errors, bool) {
	var ve Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	must(v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	}))
	must(v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	}))
	must(v.RegisterValidation("recipetag", func(fl validator.FieldLevel) bool {
		return models.RecipeTag(fl.Field().String()).Valid()
	}))

	return &Validator{v: v}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ValidUsername reports whether s satisfies the username rule.
func ValidUsername(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= UsernameMin && n <= UsernameMax && usernameRe.MatchString(s)
}

// ValidPassword reports whether s satisfies the password rule.
func ValidPassword(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < PasswordMin || n > PasswordMax {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// Struct validates s and returns Errors listing every invalid field.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %T: %w", s, err)
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "username":
		return fmt.Sprintf("must be %d-%d characters: letters, digits, '.', '_' or '-'", UsernameMin, UsernameMax)
	case "password":
		return fmt.Sprintf("must be %d-%d characters with at least one letter and one digit", PasswordMin, PasswordMax)
	case "nefield":
		return "must differ from the current password"
	case "eqfield":
		return "does not match the new password"
	case "email":
		return "must be a valid email address"
	case "recipetag":
		return fmt.Sprintf("unknown tag %v", fe.Value())
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	}
	return "is invalid (" + fe.Tag() + ")"
}
