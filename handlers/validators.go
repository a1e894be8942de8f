package handlers

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const pinTag = "pin"

var (
	pinPattern   = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	registerOnce sync.Once
)

func pinValidation(fl validator.FieldLevel) bool {
	return pinPattern.MatchString(fl.Field().String())
}

// RegisterValidators installs the custom binding tags on gin's validator and
// makes field errors use json names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation(pinTag, pinValidation)
	})
}
