package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
)

// StepRunner executes one archival step command line.
type StepRunner interface {
	Run(ctx context.Context, command string) ([]byte, error)
}

// Runner runs step commands as child processes. Commands are split with shell
// quoting rules but never passed through a shell.
type Runner struct {
	Dir     string        // working directory, usually the repository root
	Timeout time.Duration // per-step limit; zero means none
	Stdout  io.Writer     // optional mirror of the combined output
}

// Run executes command and returns its combined output.
func (r *Runner) Run(ctx context.Context, command string) ([]byte, error) {
	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parsing command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	logDebug("[git] running %q", args)

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.Dir
	if r.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&out, r.Stdout)
	} else {
		cmd.Stdout = &out
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return out.Bytes(), fmt.Errorf("timed out after %v: %w", r.Timeout, ctx.Err())
		}
		return out.Bytes(), err
	}
	return out.Bytes(), nil
}

// StepError reports the step that stopped RunSteps.
type StepError struct {
	Index   int // 0-based
	Command string
	Output  string
	Err     error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("step %d (%s) failed: %v", e.Index+1, e.Command, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepObserver is told about each step before and after it runs. Either
// field may be nil.
type StepObserver struct {
	Start  func(index, total int, command string)
	Finish func(index, total int, command string, err error)
}

// RunSteps executes steps in order and stops at the first failure, which is
// returned as a *StepError. It returns the number of steps that succeeded.
func RunSteps(ctx context.Context, runner StepRunner, steps []string, obs StepObserver) (int, error) {
	total := len(steps)
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return i, &StepError{Index: i, Command: step, Err: err}
		}
		if obs.Start != nil {
			obs.Start(i, total, step)
		}

		out, err := runner.Run(ctx, step)
		if obs.Finish != nil {
			obs.Finish(i, total, step, err)
		}
		if err != nil {
			return i, &StepError{Index: i, Command: step, Output: string(out), Err: err}
		}
	}
	return total, nil
}
