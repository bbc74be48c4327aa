// Package httpx decodes and validates JSON request bodies.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/common"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 2 {
			return false
		}
		for _, r := range s {
			if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
				return false
			}
		}
		return true
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// DecodeError describes a malformed or invalid request body.
type DecodeError struct {
	Message string
	Fields  map[string]string
}

func (e *DecodeError) Error() string { return e.Message }

// Decode reads a JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &DecodeError{Message: "request body is required"}
		}
		return &DecodeError{Message: "invalid payload"}
	}
	return Validate(dst)
}

// Validate runs struct validation on v.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fieldPath(fe)] = describe(fe)
			}
			return &DecodeError{Message: "validation failed", Fields: fields}
		}
		return &DecodeError{Message: err.Error()}
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "country":
		return "must be a two-letter country code"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// WriteError renders a decode failure with the canonical 400 error envelope.
func WriteError(w http.ResponseWriter, err error) {
	var derr *DecodeError
	if errors.As(err, &derr) {
		var details any
		if len(derr.Fields) > 0 {
			details = derr.Fields
		}
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", derr.Message, details)
		return
	}
	common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
}
