package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and flattens field errors into
// one message suitable for the error envelope.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var parts []string
		for _, fe := range validationErrors {
			parts = append(parts, fmt.Sprintf("field '%s' failed on '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
	}
	return nil
}
