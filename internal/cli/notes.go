package cli

import (
	"fmt"

	"github.com/ariel-frischer/stepnotes/internal/notes"
	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List the raw notes in a commit range",
	Long: `List every note collected from a commit range as a table, one row per
note, newest commit last. Unlike 'changelog', duplicates are not merged.`,
	Example: `  # All notes since the last tag
  stepnotes notes --since-last-tag

  # Notes not yet archived by a release
  stepnotes notes --skip-archived`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runNotes,
}

func init() {
	notesCmd.GroupID = GroupNotes
	rootCmd.AddCommand(notesCmd)

	addRangeFlags(notesCmd)
}

func runNotes(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	objs, err := s.collect(cmd)
	if err != nil {
		return err
	}

	if err := notes.FormatTable(objs, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("writing notes table: %w", err)
	}
	return nil
}
