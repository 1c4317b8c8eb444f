// Package validation wraps go-playground/validator with a shared instance
// and flattens field errors into a single readable message.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// get returns the process-wide validator. Struct metadata is cached by the
// validator, so a single instance is reused.
func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(fieldName)
	})
	return instance
}

// fieldName reports fields by their toml key when one is declared, so
// messages match what users write in config files.
func fieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Struct validates s against its `validate` tags. All failing fields are
// reported in one error, joined with "; ".
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "datetime":
		return fmt.Sprintf("%s must match layout %s, got %q", field, fe.Param(), fe.Value())
	case "timezone":
		return fmt.Sprintf("%s must be a known timezone, got %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
