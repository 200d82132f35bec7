package bigcommerce

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validatePayload rejects malformed request bodies before they reach the network.
func validatePayload(op string, v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", op, err)
	}
	return nil
}
