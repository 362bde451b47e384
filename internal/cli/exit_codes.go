package cli

import (
	"errors"
	"fmt"

	clierrors "github.com/ariel-frischer/stepnotes/internal/errors"
)

// Exit codes for the stepnotes CLI
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure (git error, failed archival step)
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitInvalidConfig indicates invalid configuration or a missing
	// prerequisite such as running outside a git repository
	ExitInvalidConfig = 4
)

// ExitError carries an exit code for a failure that was already reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError creates an error that exits with code without printing anything.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

func isSilentExit(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument:
			return ExitInvalidArguments
		case clierrors.Configuration, clierrors.Prerequisite:
			return ExitInvalidConfig
		}
	}
	return ExitFailure
}
