package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grant struct {
	PermissionID string `json:"permissionId" validate:"notblank"`
}

type request struct {
	Name   string  `json:"name" validate:"notblank"`
	Email  string  `json:"email" validate:"required,email"`
	Grants []grant `json:"grants" validate:"required,dive"`
}

func TestValidateOK(t *testing.T) {
	v := New()
	errs := v.Validate(&request{Name: "Ann", Email: "ann@example.com", Grants: []grant{}})
	assert.Empty(t, errs)
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := New()
	errs := v.Validate(&request{
		Name:   "   ",
		Email:  "not-an-email",
		Grants: []grant{{PermissionID: ""}},
	})

	assert.ElementsMatch(t, []FieldError{
		{Field: "name", Message: "Field must not be blank"},
		{Field: "email", Message: "Invalid email format"},
		{Field: "grants[0].permissionId", Message: "Field must not be blank"},
	}, errs)
}

func TestValidateNilSliceIsRequired(t *testing.T) {
	v := New()
	errs := v.Validate(&request{Name: "Ann", Email: "ann@example.com"})

	assert.Equal(t, []FieldError{{Field: "grants", Message: "Field is required"}}, errs)
}

func TestNewRegistersNotBlank(t *testing.T) {
	var v Validator
	require.NotPanics(t, func() { v = New() })

	type named struct {
		Name string `json:"name" validate:"notblank,max=3"`
	}
	assert.Equal(t, []FieldError{{Field: "name", Message: "Field must not be blank"}}, v.Validate(&named{Name: " "}))
	assert.Equal(t, []FieldError{{Field: "name", Message: "Value is too long"}}, v.Validate(&named{Name: "abcd"}))
}

func TestMustRegisterPanicsOnFailure(t *testing.T) {
	assert.Panics(t, func() {
		mustRegister(validator.New(), "", notBlank)
	})
}
