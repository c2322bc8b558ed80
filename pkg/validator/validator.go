// Package validator registers custom binding rules on gin's validator
// engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DINs are eight-digit Health Canada drug identification numbers.
var dinPattern = regexp.MustCompile(`^\d{8}$`)

// Register installs the custom rules. Call once at startup.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("din", func(fl validator.FieldLevel) bool {
		return dinPattern.MatchString(fl.Field().String())
	})
}
