package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/colonyops/taskcal/internal/core/datekey"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
		return datekey.Key(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks t against the model constraints. The returned error wraps
// ErrInvalid and names every failing field.
func Validate(t Task) error {
	err := validate.Struct(t)
	if err == nil {
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("%w: title is blank", ErrInvalid)
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}

	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
}
