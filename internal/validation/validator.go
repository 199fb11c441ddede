// Package validation wraps go-playground/validator with a shared instance and
// messages that can be shown to end users as-is.
//
// Struct fields name themselves through a `label` tag:
//
//	type MovieInput struct {
//	    Title string `validate:"required" label:"Title"`
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single field that failed validation.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// Errors is every field that failed validation, in struct order.
type Errors []FieldError

func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(ve))
	for _, err := range ve {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, " ")
}

// First returns the message of the first failing field.
func (ve Errors) First() string {
	if len(ve) == 0 {
		return "Validation failed."
	}
	return ve[0].Message
}

// Field returns the failure for the named struct field, if any.
func (ve Errors) Field(name string) (FieldError, bool) {
	for _, fe := range ve {
		if fe.Field == name {
			return fe, true
		}
	}
	return FieldError{}, false
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			if label := field.Tag.Get("label"); label != "" {
				return label
			}
			return field.Name
		})
	})
	return validate
}

// ValidateStruct returns nil or Errors.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	out := make(Errors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, FieldError{
			Field:   fe.StructField(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		})
	}
	return out
}

func translate(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", label)
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}
