package http

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

var setupOnce sync.Once

// SetupValidator registers JSON field names and the promotion enum tags on
// gin's validator. It is safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})

		_ = v.RegisterValidation("discountkind", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseDiscountKind(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("scopekind", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseScopeKind(fl.Field().String())
			return err == nil
		})
	})
}

// bindingMessage turns a binding error into a short client-facing message.
func bindingMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid request body: " + err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Field()+": "+fieldMessage(e))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "discountkind":
		return "must be percentage or fixed_amount"
	case "scopekind":
		return "must be global, category, brand, skus or mixed"
	default:
		return "is invalid"
	}
}
