package imaging

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultSize    = "1024x1024"
	DefaultQuality = "high"
)

// Accepted option values, in the order they are reported to callers.
var (
	Qualities   = []string{"low", "medium", "high", "auto"}
	Sizes       = []string{"1024x1024", "1536x1024", "1024x1536", "auto"}
	Backgrounds = []string{"transparent", "opaque", "auto"}
)

// MaxReferenceImages is the most input images one edit may use.
const MaxReferenceImages = 16

var (
	validate    = newValidate()
	maskPattern = regexp.MustCompile(`(?i)\.png$`)
)

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("pngfile", func(fl validator.FieldLevel) bool {
		return maskPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// checkStruct runs the struct tags and turns the first failure into a
// caller-facing ValidationError.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return invalid("%s", err.Error())
	}

	fe := fields[0]
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid("%s is required", fe.Field())
	case "oneof":
		return invalid("Invalid %s value. Supported values are: %s", name, strings.Join(strings.Fields(fe.Param()), ", "))
	case "min":
		return invalid("At least %s %s required", fe.Param(), pluralize(name, fe.Param()))
	case "max":
		return invalid("At most %s %s allowed", fe.Param(), pluralize(name, fe.Param()))
	case "pngfile":
		return invalid("%s must be a .png file", fe.Field())
	default:
		return invalid("Invalid %s value", name)
	}
}

func pluralize(name, n string) string {
	if n == "1" {
		return strings.TrimSuffix(name, "s") + " is"
	}
	return name + " are"
}
