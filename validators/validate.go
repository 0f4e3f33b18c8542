package validators

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Struct validates v and returns one message per failing field, keyed by its
// JSON name. A nil map means v is valid.
func Struct(v any) map[string]string {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"request": "Invalid request!"}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

// Var validates a single value against tag.
func Var(value any, tag string) bool {
	return instance().Var(value, tag) == nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required!"
	case "email":
		return "Invalid email address!"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + "!"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + "!"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param() + "!"
	default:
		return "Invalid " + fe.Field() + "!"
	}
}
