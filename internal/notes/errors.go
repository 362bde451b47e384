package notes

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingEndpoint is returned when a range has no end reference.
var ErrMissingEndpoint = errors.New("range end reference is required")

// InvalidConfigError reports a name that does not match configuration: an
// unknown notes section or an unregistered archival strategy.
type InvalidConfigError struct {
	// Kind is "section" or "strategy".
	Kind string
	Name string
	// Known lists the valid names at the time of the failure.
	Known []string
}

func (e *InvalidConfigError) Error() string {
	switch e.Kind {
	case "strategy":
		return fmt.Sprintf("unknown strategy: %q (registered: %s)", e.Name, strings.Join(e.Known, ", "))
	default:
		return fmt.Sprintf("unknown notes section %q (configured: %s)", e.Name, strings.Join(e.Known, ", "))
	}
}

// IsInvalidConfig returns true if err is or wraps an InvalidConfigError.
func IsInvalidConfig(err error) bool {
	var ice *InvalidConfigError
	return errors.As(err, &ice)
}
