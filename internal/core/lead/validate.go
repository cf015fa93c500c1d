package lead

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hay-kot/criterio"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func fieldsValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names so errors line up with the wire format and form labels.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
			return Level(fl.Field().String()).Valid()
		})

		validate = v
	})
	return validate
}

// Validate checks that every field is present and well formed. The returned
// error matches ErrValidation and wraps criterio.FieldErrors keyed by JSON name.
func (f Fields) Validate() error {
	err := fieldsValidator().Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var errs criterio.FieldErrorsBuilder
	for _, fe := range verrs {
		errs = errs.Append(fe.Field(), errors.New(describe(fe)))
	}

	return fmt.Errorf("%w: %w", ErrValidation, errs.ToError())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "level":
		return "must be one of Very Hot, Hot, Cold"
	default:
		return "is invalid"
	}
}
