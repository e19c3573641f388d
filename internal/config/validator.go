package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers mcpcore-specific validation rules.
// Must be called before validating Config. The only custom rule this
// config needs is the transport/bind-addr cross-field check, which runs
// after struct validation in Validate rather than as a field tag.
func RegisterCustomValidators(v *validator.Validate) error {
	return nil
}

// Validate validates the Config using struct tags and cross-field rules.
// Returns an error if validation fails, with actionable error messages.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateHTTPRequiresBindAddr(); err != nil {
		return err
	}

	return nil
}

// validateHTTPRequiresBindAddr enforces the cross-field rule that the http
// transport cannot run without a bind host and port. SetDefaults normally
// fills this in, so this only fires against a Config built by hand with
// the zero value.
func (c *Config) validateHTTPRequiresBindAddr() error {
	if c.Transport == "http" && (c.HTTP.Bind == "" || c.HTTP.Port == 0) {
		return errors.New("http.bind and http.port are required when transport is \"http\"")
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly
// messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single
// validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
