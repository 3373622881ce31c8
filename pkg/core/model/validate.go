package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateInput checks the structural requirements of an EngineInput before it
// enters the pipeline. The engine itself is total over structurally valid
// inputs, so this is the only place shape errors are raised.
func ValidateInput(input *EngineInput) error {
	if input == nil {
		return fmt.Errorf("engine input is nil")
	}
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("engine input validation failed: %w", err)
	}
	return nil
}
