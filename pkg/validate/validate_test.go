package validate_test

import (
	"testing"

	"github.com/Astemirdum/equipment-reservation/pkg/validate"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestCustomValidator(t *testing.T) {
	type req struct {
		Name string `validate:"required"`
		Kind string `validate:"required,kind"`
	}
	cv := validate.NewCustomValidator()
	require.NoError(t, cv.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "ipad"
	}))

	require.NoError(t, cv.Validate(req{Name: "a", Kind: "ipad"}))
	require.Error(t, cv.Validate(req{Name: "", Kind: "ipad"}))
	require.Error(t, cv.Validate(req{Name: "a", Kind: "toaster"}))
}
