package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected field, named as it appears in JSON
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator provides validation functionality
type Validator interface {
	Validate(obj interface{}) []FieldError
}

var defaultMessages = map[string]string{
	"required": "Field is required",
	"email":    "Invalid email format",
	"min":      "Value is too short",
	"max":      "Value is too long",
	"notblank": "Field must not be blank",
}

type structValidator struct {
	validate *validator.Validate
}

// New returns a validator that reads `validate` tags and reports fields by
// their json names
func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "notblank", notBlank)
	return &structValidator{validate: v}
}

// mustRegister panics when a custom rule cannot be registered; every tag
// using it would otherwise fail at validation time
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validator: register %q: %v", tag, err))
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func (v *structValidator) Validate(obj interface{}) []FieldError {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		msg, ok := defaultMessages[e.Tag()]
		if !ok {
			msg = fmt.Sprintf("Failed on the '%s' rule", e.Tag())
		}
		out = append(out, FieldError{
			Field:   fieldPath(e.Namespace()),
			Message: msg,
		})
	}
	return out
}

// fieldPath drops the root struct name: "CreateUserDto.userPermissions[0].permissionId"
// becomes "userPermissions[0].permissionId"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
