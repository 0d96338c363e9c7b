// Package validate runs struct-tag validation on decoded request bodies.
// Rules are go-playground/validator tags; failures come back as one
// readable message per json field name.
//
//	type SubmitBody struct {
//	    Name     string `json:"name"     validate:"required,notblank,max=255"`
//	    Status   string `json:"status"   validate:"omitempty,oneof=Pending Approved Rejected"`
//	    Quantity int    `json:"quantity" validate:"required,min=1"`
//	}
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return strings.ToLower(f.Name)
		}
		return name
	})
	if err := val.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return val
}

// Struct validates all exported fields of s that carry a `validate` tag.
// Returns a map of json field name → message; empty means valid.
func Struct(s interface{}) map[string]string {
	errs := make(map[string]string)

	err := v.Struct(s)
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return errs
	}
	for _, fe := range failures {
		if _, seen := errs[fe.Field()]; !seen {
			errs[fe.Field()] = message(fe)
		}
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func message(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min", "gte":
		if numeric(fe.Kind()) {
			return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "max", "lte":
		if numeric(fe.Kind()) {
			return fmt.Sprintf("The %s must not be greater than %s.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must not exceed %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return fmt.Sprintf("The %s field failed the %s rule.", field, fe.Tag())
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
