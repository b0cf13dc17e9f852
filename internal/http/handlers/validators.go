package handlers

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/services"
)

var registerOnce sync.Once

// RegisterValidators adds the username and password rules to gin's validator and makes
// errors report JSON field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return services.ValidUsername(fl.Field().String())
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return services.ValidPassword(fl.Field().String())
		})
	})
}

var ruleMessages = map[string]string{
	"required": "is required.",
	"username": "must start with a lowercase letter and contain 7 to 25 lowercase letters, digits, '_' or '.'.",
	"password": "must be 6 to 24 letters, digits or one of _ . @ $.",
	"oneof":    "has an unsupported value.",
}

// bindingError turns binder failures into a ValidationError tagged with the first bad field.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg, ok := ruleMessages[fe.Tag()]
		if !ok {
			msg = "is not valid."
		}
		return domain.ValidationError{Field: fe.Field(), Msg: fe.Field() + " " + msg, Err: err}
	}
	return domain.ValidationError{Field: "body", Msg: "Request body is not valid JSON.", Err: err}
}
