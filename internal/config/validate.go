package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a manifest validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the manifest for invalid values. Archive extensions are
// not checked here; Plan reports those as configuration errors.
func Validate(m *Manifest) error {
	var errors []string

	for i, a := range m.Archives {
		if strings.TrimSpace(a) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("archives[%d]", i),
				Message: "path cannot be empty",
			}.Error())
		}
	}

	if m.PID < 0 {
		errors = append(errors, ValidationError{
			Field:   "pid",
			Message: fmt.Sprintf("must be 0 (no wait) or a positive process id, got %d", m.PID),
		}.Error())
	}

	if m.WaitTimeout != "" {
		d, err := time.ParseDuration(m.WaitTimeout)
		switch {
		case err != nil:
			errors = append(errors, ValidationError{
				Field:   "wait_timeout",
				Message: fmt.Sprintf("invalid duration %q", m.WaitTimeout),
			}.Error())
		case d < 0:
			errors = append(errors, ValidationError{
				Field:   "wait_timeout",
				Message: "cannot be negative",
			}.Error())
		}
	}

	if len(m.Args) > 0 && m.Executable == "" {
		errors = append(errors, ValidationError{
			Field:   "args",
			Message: "given without an executable",
		}.Error())
	}

	switch m.Log.Format {
	case "", "console", "json":
	default:
		errors = append(errors, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s' (must be console or json)", m.Log.Format),
		}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
