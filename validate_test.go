package confstack

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedConfig struct {
	Host string `validate:"required,hostname"`
	Port int    `validate:"min=1,max=65535"`
}

func TestValidate_Passes(t *testing.T) {
	cfg := validatedConfig{Host: "localhost", Port: 8080}
	assert.NoError(t, Validate(cfg))
}

func TestValidate_FailsOnMissingRequired(t *testing.T) {
	cfg := validatedConfig{Port: 8080}

	err := Validate(cfg)

	require.Error(t, err)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestValidate_FailsOnRangeViolation(t *testing.T) {
	cfg := validatedConfig{Host: "localhost", Port: 0}
	assert.Error(t, Validate(cfg))
}

// TestValidateWith_NilValidatorFallsBack verifies ValidateWith tolerates a
// nil validator.
func TestValidateWith_NilValidatorFallsBack(t *testing.T) {
	cfg := validatedConfig{Host: "localhost", Port: 80}
	assert.NoError(t, ValidateWith(nil, cfg))
}

// TestBindThenValidate exercises the intended startup flow: bind a struct
// from the merged view, then validate it.
func TestBindThenValidate(t *testing.T) {
	view := viewOf(t, map[string]string{
		"server:host": "example.com",
		"server:port": "70000", // coerces fine, fails validation
	})

	var cfg validatedConfig
	s := NewSchema()
	s.String(&cfg.Host, "host", "localhost")
	s.Int(&cfg.Port, "port", 8080)

	_, err := Bind(view, "server", s)
	require.NoError(t, err)

	assert.Error(t, Validate(cfg), "out-of-range port must fail validation")
}
