package update

import (
	"errors"
	"fmt"

	"github.com/adamancini/autoupdater/internal/types"
)

var (
	// ErrUnsupportedArchive is returned for archive extensions the updater cannot interpret.
	ErrUnsupportedArchive = errors.New("unsupported archive extension")
	// ErrMissingExtension is returned for archive paths without an extension.
	ErrMissingExtension = errors.New("archive has no extension")
	// ErrInvalidPID is returned for negative process ids.
	ErrInvalidPID = errors.New("invalid pid")
	// ErrWaitTimeout is returned when the watched process outlives the wait deadline.
	ErrWaitTimeout = errors.New("timed out waiting for process to exit")
)

// ConfigError means the updater was invoked with input it cannot act on.
// Nothing on disk has been touched when one is returned.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// StepError is a fatal failure inside one step of the update protocol.
type StepError struct {
	Step types.Step
	Path string
	Err  error
}

func (e *StepError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Step, e.Path, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func stepErr(step types.Step, path string, err error) error {
	return &StepError{Step: step, Path: path, Err: err}
}

// FailedStep returns the protocol step err came from, or "" if err is not a StepError.
func FailedStep(err error) types.Step {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
