package validator

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator implements echo.Validator for the pipeline API's
// request bodies.
type RequestValidator struct {
	validate *validator.Validate
}

// New creates a RequestValidator.
func New() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate checks a bound request and flattens field errors into a single
// message suitable for an API error response.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid request: %s", strings.Join(parts, "; "))
}
