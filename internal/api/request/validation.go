package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edvin/routemanager/internal/validate"
)

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("rdrt", func(fl validator.FieldLevel) bool {
		return validate.IsRDRT(fl.Field().String())
	})
	v.RegisterValidation("cidrnet", func(fl validator.FieldLevel) bool {
		return validate.IsCIDR(fl.Field().String())
	})
	return v
}

// Decode reads a JSON body into v and validates it. Every failure is a
// *validate.Error; a body that is not valid JSON is reported on "body".
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &validate.Error{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := structValidator.Struct(v); err != nil {
		return fieldError(err)
	}
	return nil
}

// fieldError reports the first failed field with the same wording the
// core service uses for the same rule.
func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &validate.Error{Field: "body", Message: fmt.Sprintf("validation error: %v", err)}
	}

	fe := verrs[0]
	value := fmt.Sprint(fe.Value())
	switch fe.Tag() {
	case "required":
		return validate.Required(fe.Field(), "")
	case "rdrt":
		if fe.Field() == "rd" {
			return validate.RouteDistinguisher(value)
		}
		return validate.RouteTarget(value)
	case "cidrnet":
		return validate.CIDR(value)
	}
	return &validate.Error{
		Field:   fe.Field(),
		Value:   value,
		Message: fmt.Sprintf("validation error: failed on %q", fe.Tag()),
	}
}
