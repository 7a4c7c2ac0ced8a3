// Package validation checks request bodies with go-playground/validator and
// reports failures keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hugh/dealflow/internal/database/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "deal_status", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDealStatus(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "deal_stage", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDealStage(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		_, err := models.ParseRole(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "currency", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 3 {
			return false
		}
		for _, c := range s {
			if c < 'A' || c > 'Z' {
				return false
			}
		}
		return true
	})
	mustRegister(v, "date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Struct validates s and returns one message per failing field, or nil.
func Struct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"body": err.Error()}
	}

	details := make(map[string]string, len(ve))
	for _, fe := range ve {
		details[fieldName(fe)] = message(fe)
	}
	return details
}

// fieldName drops the struct prefix from the namespace: "CreateDealRequest.title" -> "title".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "uuid":
		return field + " must be a valid UUID"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "deal_status":
		return field + " must be one of: new in_progress won lost"
	case "deal_stage":
		return field + " must be one of: qualification proposal negotiation closed"
	case "role":
		return field + " must be one of: member manager admin owner"
	case "currency":
		return field + " must be a three-letter ISO currency code"
	case "date":
		return field + " must be a date (YYYY-MM-DD) or an RFC 3339 timestamp"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// ParseDate accepts a calendar date or a full RFC 3339 timestamp. Dates are
// taken as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
