// Package validator wraps go-playground/validator with domain-specific rules.
package validator

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	cnieRegex  = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{6,7}$`)
	plateRegex = regexp.MustCompile(`^[0-9]{1,5}-[A-Z]-[0-9]{1,2}$`)
	iceRegex   = regexp.MustCompile(`^[0-9]{15}$`)
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	v.registerCustomValidations()
	return v
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		// Format validation errors
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMessages []string
			for _, e := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"Field '%s' failed validation '%s'",
					e.Field(),
					e.Tag(),
				))
			}
			return fmt.Errorf("validation failed: %v", errMessages)
		}
		return err
	}
	return nil
}

// ValidateStructured returns a map of field -> error message for frontend usage
func (v *Validator) ValidateStructured(i interface{}) map[string]string {
	errs := make(map[string]string)
	if err := v.validate.Struct(i); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				msg := fmt.Sprintf("failed validation on '%s'", e.Tag())
				switch e.Tag() {
				case "required":
					msg = "This field is required"
				case "min":
					msg = fmt.Sprintf("Must be at least %s characters", e.Param())
				case "max":
					msg = fmt.Sprintf("Must be at most %s characters", e.Param())
				case "cnie":
					msg = "Invalid CNIE format (1-2 letters followed by 6-7 digits)"
				case "morocco_plate":
					msg = "Invalid plate format (e.g. 12345-A-6)"
				case "ice":
					msg = "Invalid ICE (15 digits required)"
				}
				errs[e.Field()] = msg
			}
		} else {
			errs["_global"] = err.Error()
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *Validator) registerCustomValidations() {
	_ = v.validate.RegisterValidation("cnie", func(fl validator.FieldLevel) bool {
		return cnieRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	_ = v.validate.RegisterValidation("morocco_plate", func(fl validator.FieldLevel) bool {
		return plateRegex.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})

	_ = v.validate.RegisterValidation("ice", func(fl validator.FieldLevel) bool {
		return iceRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})
}

// Sanitize cleans string input to prevent XSS attacks
func Sanitize(input string) string {
	return html.EscapeString(strings.TrimSpace(input))
}
