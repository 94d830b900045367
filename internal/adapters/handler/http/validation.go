package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	return &requestValidator{validate: v}
}

// Validate returns a domain InvalidInput error listing every failed rule.
func (v *requestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domain.NewError(domain.ErrInvalidInput, err.Error())
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, validationMessage(fe))
	}
	return domain.NewError(domain.ErrInvalidInput, strings.Join(messages, "; "))
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be an email", field)
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s failed validation for %s", field, fe.Tag())
}
