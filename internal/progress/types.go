// Package progress renders per-step progress for archival runs: a spinner
// while a command executes on a terminal, and a one-line ✓/✗ result per step.
package progress

import (
	"errors"
	"fmt"
)

// TerminalCapabilities describes what the output terminal can show.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int // 0 when unknown
}

// ProgressSymbols holds the markers used for finished steps and the spinner
// character set index (see github.com/briandowns/spinner CharSets).
type ProgressSymbols struct {
	Checkmark  string
	Failure    string
	SpinnerSet int
}

// StepInfo identifies one step in a run.
type StepInfo struct {
	Index   int // 0-based
	Total   int
	Command string
}

// Validate checks the step position is within the run.
func (s StepInfo) Validate() error {
	if s.Total <= 0 {
		return errors.New("total steps must be positive")
	}
	if s.Index < 0 || s.Index >= s.Total {
		return fmt.Errorf("step index %d out of range [0, %d)", s.Index, s.Total)
	}
	return nil
}

// Counter returns the "[n/total]" prefix of the step.
func (s StepInfo) Counter() string {
	return fmt.Sprintf("[%d/%d]", s.Index+1, s.Total)
}
