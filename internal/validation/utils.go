package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names ("circuitPath", not
// "CircuitPath") so messages match what the client sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Struct runs the tag rules of v.
func Struct(v any) error {
	return validate.Struct(v)
}

// ToRPCError reports the first failing rule. A missing attribute uses the
// wording of the material endpoint, other rules describe the constraint.
func ToRPCError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr *errs.RPCError
	if errors.As(err, &rpcErr) {
		return err
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errs.BadInput("%s", err.Error()).WithCause(err)
	}

	fieldErr := validationErrors[0]
	name := fieldPath(fieldErr)
	if fieldErr.Tag() == "required" {
		return errs.MissingAttribute(name).WithCause(err)
	}
	return errs.BadInput("Invalid input attribute %q: %s!", name, ruleMessage(fieldErr)).WithCause(err)
}

// fieldPath drops the root struct name from the namespace:
// "setMaterialRequest.diffuseColor[1]" -> "diffuseColor[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func ruleMessage(fe validator.FieldError) string {
	kind := fe.Kind()

	switch fe.Tag() {
	case "min":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "max":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must not contain more than %s items", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())

	case "len":
		if kind == reflect.Slice || kind == reflect.Array {
			return fmt.Sprintf("must contain exactly %s items", fe.Param())
		}
		return fmt.Sprintf("must have length %s", fe.Param())

	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())

	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())

	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())

	default:
		if fe.Param() != "" {
			return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("must satisfy %s", fe.Tag())
	}
}
