package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestNotBlank(t *testing.T) {
	v := validator.New()
	assert.NoError(t, v.RegisterValidation("notblank", NotBlank))

	type req struct {
		Name string `validate:"notblank"`
	}
	assert.NoError(t, v.Struct(req{Name: "小说"}))
	assert.Error(t, v.Struct(req{Name: "   "}))
	assert.Error(t, v.Struct(req{Name: ""}))
}
