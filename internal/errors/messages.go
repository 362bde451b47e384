package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the stepnotes CLI.

// UnknownSection reports a --sections value that is not configured.
func UnknownSection(name string, known []string, err error) *CLIError {
	return &CLIError{
		Category: Configuration,
		Message:  fmt.Sprintf("unknown notes section %q", name),
		Remediation: []string{
			fmt.Sprintf("Configured sections: %s", listOrNone(known)),
			"Add the section under notes.sections in .stepnotes/config.yml",
			"Run 'stepnotes config show' to see the effective configuration",
		},
		Err: err,
	}
}

// UnknownStrategy reports an after_versioned.strategy with no registered implementation.
func UnknownStrategy(name string, known []string, err error) *CLIError {
	return &CLIError{
		Category: Configuration,
		Message:  fmt.Sprintf("unknown archival strategy %q", name),
		Remediation: []string{
			fmt.Sprintf("Available strategies: %s", listOrNone(known)),
			"Set notes.after_versioned.strategy in .stepnotes/config.yml",
		},
		Err: err,
	}
}

// NotGitRepository reports that the working directory is not inside a repository.
func NotGitRepository(path string, err error) *CLIError {
	msg := "not a git repository"
	if path != "" {
		msg = fmt.Sprintf("not a git repository: %s", path)
	}
	return &CLIError{
		Category: Prerequisite,
		Message:  msg,
		Remediation: []string{
			"Run stepnotes from inside a git working tree",
			"Or point at one with --repo <path>",
		},
		Err: err,
	}
}

// MissingTag reports an archive invocation without a version tag.
func MissingTag() *CLIError {
	return NewArgumentErrorWithUsage(
		"version tag is required",
		"stepnotes archive <tag> [--from <rev>] [--to <rev>]",
		"Pass the tag the notes are being released under",
		"Example: stepnotes archive v1.4.0 --from v1.3.0",
	)
}

// MissingRangeStart reports that --from and --since-last-tag were both omitted
// and no tag exists to fall back to.
func MissingRangeStart(err error) *CLIError {
	return &CLIError{
		Category: Argument,
		Message:  "no tag found to start the range from",
		Remediation: []string{
			"Pass --from <rev> explicitly",
			"Or omit --since-last-tag to collect the whole history",
		},
		Err: err,
	}
}

// ConflictingFlags reports two flags that cannot be combined.
func ConflictingFlags(a, b string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("--%s and --%s cannot be used together", a, b),
		fmt.Sprintf("Choose either --%s or --%s", a, b),
	)
}

// InvalidRevision reports a range endpoint that does not resolve to a commit.
func InvalidRevision(rev string, err error) *CLIError {
	return &CLIError{
		Category: Argument,
		Message:  fmt.Sprintf("cannot resolve revision %q", rev),
		Remediation: []string{
			"Check the tag, branch or commit id exists locally",
			"Fetch tags with: git fetch --tags",
		},
		Err: err,
	}
}

// StepFailed reports an archival step that exited with an error.
func StepFailed(done, total int, err error) *CLIError {
	return &CLIError{
		Category: Runtime,
		Message:  err.Error(),
		Remediation: []string{
			fmt.Sprintf("%d of %d steps completed before the failure", done, total),
			"Fix the cause, then re-run with --skip-archived so finished commits are not archived twice",
			"Use --dry-run to print the remaining commands without running them",
		},
		Err: err,
	}
}

// ConfigLoadFailed reports an unreadable or invalid configuration file.
func ConfigLoadFailed(err error) *CLIError {
	return &CLIError{
		Category: Configuration,
		Message:  fmt.Sprintf("failed to load configuration: %v", err),
		Remediation: []string{
			"Check the YAML syntax of .stepnotes/config.yml and ~/.config/stepnotes/config.yml",
			"Run 'stepnotes config show' once the file parses to inspect the merged result",
		},
		Err: err,
	}
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
