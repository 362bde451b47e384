// Package cli implements the stepnotes command line interface.
package cli

import (
	"fmt"

	clierrors "github.com/ariel-frischer/stepnotes/internal/errors"
	"github.com/ariel-frischer/stepnotes/internal/git"
	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	GroupNotes         = "notes"
	GroupConfiguration = "configuration"
)

var rootCmd = &cobra.Command{
	Use:   "stepnotes",
	Short: "Changelogs from git notes, archived at release time",
	Long: `stepnotes builds release changelogs from git notes.

Notes are written per commit into one namespace per section
(refs/notes/changes, refs/notes/bugfixes, ...). stepnotes collects the notes
in a commit range, merges duplicates, renders a changelog, and after a
release prints or runs the git commands that archive the released notes.

Source: https://github.com/ariel-frischer/stepnotes`,
	Example: `  # Changelog for everything since the last tag
  stepnotes changelog --since-last-tag

  # Include commit ids and a custom summary
  stepnotes changelog --from v1.2.0 --with-objects -m "Faster startup"

  # Raw notes as a table
  stepnotes notes --from v1.2.0

  # Show, then run, the archival steps for a release
  stepnotes archive v1.3.0 --from v1.2.0 --dry-run
  stepnotes archive v1.3.0 --from v1.2.0`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			errOut := cmd.ErrOrStderr()
			git.SetDebugLogger(func(format string, args ...any) {
				fmt.Fprintf(errOut, "[debug] "+format+"\n", args...)
			})
		} else {
			git.SetDebugLogger(nil)
		}
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupNotes, Title: "Notes Commands:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Project config file (default: .stepnotes/config.yml in the repository)")
	rootCmd.PersistentFlags().String("repo", "", "Path inside the git repository (default: current directory)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log git operations to stderr")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine(),
			fmt.Sprintf("Run '%s --help' for the available flags", cmd.CommandPath()))
	})
}

// Execute runs the root command. Errors are printed to stderr before being
// returned; use ExitCode to turn them into a process status.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !isSilentExit(err) {
		clierrors.FprintError(rootCmd.ErrOrStderr(), err)
	}
	return err
}
