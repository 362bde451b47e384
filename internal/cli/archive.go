package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	clierrors "github.com/ariel-frischer/stepnotes/internal/errors"
	"github.com/ariel-frischer/stepnotes/internal/git"
	"github.com/ariel-frischer/stepnotes/internal/notes"
	"github.com/ariel-frischer/stepnotes/internal/progress"
	"github.com/spf13/cobra"
)

// newStepRunner builds the runner archival steps are executed with.
// Tests replace it.
var newStepRunner = func(dir string, timeout time.Duration) git.StepRunner {
	return &git.Runner{Dir: dir, Timeout: timeout}
}

var archiveCmd = &cobra.Command{
	Use:   "archive <tag>",
	Short: "Archive the notes of a released range",
	Long: `Archive the notes of a released commit range using the strategy set in
notes.after_versioned.strategy:

  keep    add a post-release note ("available on <tag>") to every commit
          that has notes, then push that notes ref
  remove  delete the collected notes section by section, pushing each
          section after its deletions

Steps run one at a time in the repository root and stop at the first
failure. Nothing is rolled back. Use --dry-run to print the commands instead.`,
	Example: `  # Preview the commands for v1.3.0
  stepnotes archive v1.3.0 --from v1.2.0 --dry-run

  # Run them
  stepnotes archive v1.3.0 --since-last-tag

  # Fetch notes first and skip commits archived by an earlier run
  stepnotes archive v1.3.0 --from v1.2.0 --fetch --skip-archived`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 || args[0] == "" {
			return clierrors.MissingTag()
		}
		return nil
	},
	SilenceUsage: true,
	RunE:         runArchive,
}

func init() {
	archiveCmd.GroupID = GroupNotes
	rootCmd.AddCommand(archiveCmd)

	addRangeFlags(archiveCmd)
	archiveCmd.Flags().Bool("dry-run", false, "Print the archival commands without running them")
}

func runArchive(cmd *cobra.Command, args []string) error {
	tag := args[0]

	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	archiver := notes.NewArchiver(s.cfg.Notes)
	if err := archiver.Validate(); err != nil {
		return mapRepositoryError(err)
	}

	objs, err := s.collect(cmd)
	if err != nil {
		return err
	}

	steps, err := archiver.StepsForArchiving(objs, tag)
	if err != nil {
		return mapRepositoryError(err)
	}

	out := cmd.OutOrStdout()
	if len(steps) == 0 {
		fmt.Fprintln(out, "Nothing to archive.")
		return nil
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		for _, step := range steps {
			fmt.Fprintln(out, step)
		}
		return nil
	}

	runner := newStepRunner(s.repo.Root(), time.Duration(s.cfg.Timeout)*time.Second)
	done, err := git.RunSteps(cmd.Context(), runner, steps, stepObserver(out))
	if err != nil {
		return clierrors.StepFailed(done, len(steps), err)
	}

	fmt.Fprintf(out, "Archived %d notes for %s with the %s strategy (%d steps).\n",
		objs.Len(), tag, archiver.Strategy(), done)
	return nil
}

// stepObserver reports step progress on out, with a spinner when out is a terminal.
func stepObserver(out io.Writer) git.StepObserver {
	caps := progress.TerminalCapabilities{}
	if out == os.Stdout {
		caps = progress.DetectTerminalCapabilities()
	}
	display := progress.NewProgressDisplay(out, caps)

	return git.StepObserver{
		Start: func(index, total int, command string) {
			_ = display.StartStep(progress.StepInfo{Index: index, Total: total, Command: command})
		},
		Finish: func(index, total int, command string, err error) {
			info := progress.StepInfo{Index: index, Total: total, Command: command}
			if err != nil {
				_ = display.FailStep(info, err)
				return
			}
			_ = display.CompleteStep(info)
		},
	}
}
