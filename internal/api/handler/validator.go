package handler

import (
	"github.com/go-playground/validator/v10"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validator.New()}
}

// Validate satisfies the echo.Validator interface. Validation errors are
// returned raw; the error normalization layer turns them into the
// "Invalid input data." response.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}
