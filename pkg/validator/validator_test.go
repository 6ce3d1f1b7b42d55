package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Color    string `validate:"omitempty,hexcolor"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()

	err := v.Struct(registerPayload{Username: "ab", Email: "nope", Color: "red"})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "Username must be at least 3 characters")
	assert.Contains(t, msg, "Email must be a valid email")
	assert.Contains(t, msg, "Color must be a hex color")
}

func TestFormatValidationErrorPassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, "unexpected EOF", FormatValidationError(errors.New("unexpected EOF")))
}
