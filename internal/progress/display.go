package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

const spinnerDelay = 100 * time.Millisecond

// ProgressDisplay prints step progress. The spinner only runs on a TTY; other
// outputs get one plain line per finished step.
type ProgressDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spinner *spinner.Spinner
	ok      func(a ...interface{}) string
	fail    func(a ...interface{}) string
}

// NewProgressDisplay creates a display writing to out.
func NewProgressDisplay(out io.Writer, caps TerminalCapabilities) *ProgressDisplay {
	d := &ProgressDisplay{
		out:     out,
		caps:    caps,
		symbols: SelectSymbols(caps),
		ok:      fmt.Sprint,
		fail:    fmt.Sprint,
	}
	if caps.SupportsColor {
		d.ok = color.New(color.FgGreen).SprintFunc()
		d.fail = color.New(color.FgRed).SprintFunc()
	}
	return d
}

// StartStep announces a step and starts the spinner on terminals.
func (d *ProgressDisplay) StartStep(info StepInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	if !d.caps.IsTTY {
		return nil
	}

	s := spinner.New(spinner.CharSets[d.symbols.SpinnerSet], spinnerDelay, spinner.WithWriter(d.out))
	s.Suffix = " " + d.label(info)
	s.Start()
	d.spinner = s
	return nil
}

// CompleteStep stops the spinner and prints the step as done.
func (d *ProgressDisplay) CompleteStep(info StepInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	_, err := fmt.Fprintf(d.out, "%s %s\n", d.ok(d.symbols.Checkmark), d.label(info))
	return err
}

// FailStep stops the spinner and prints the step as failed.
func (d *ProgressDisplay) FailStep(info StepInfo, cause error) error {
	if err := info.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	line := fmt.Sprintf("%s %s", d.fail(d.symbols.Failure), d.label(info))
	if cause != nil {
		line += ": " + cause.Error()
	}
	_, err := fmt.Fprintln(d.out, line)
	return err
}

// StopSpinner stops the spinner without printing a result.
func (d *ProgressDisplay) StopSpinner() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *ProgressDisplay) stopLocked() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}

// label is the counter and command, cut to the terminal width when known.
func (d *ProgressDisplay) label(info StepInfo) string {
	text := info.Counter() + " " + info.Command
	// Leave room for the spinner or symbol in front.
	limit := d.caps.Width - 8
	if d.caps.Width > 0 && limit > 3 && len([]rune(text)) > limit {
		runes := []rune(text)
		text = string(runes[:limit-3]) + "..."
	}
	return text
}
