package middleware

import (
	"reflect"
	"strings"

	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator configures the validator with custom tags.
// Call once during startup before the engine serves requests.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
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

	// categorycode validates editorial category letters (L, R, C, A)
	_ = v.RegisterValidation("categorycode", func(fl validator.FieldLevel) bool {
		return project.Category(fl.Field().String()).IsValid()
	})
}
