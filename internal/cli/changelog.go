package cli

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/stepnotes/internal/notes"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Render a changelog from the notes in a commit range",
	Long: `Render a changelog from the git notes attached to the commits in a range.

The range is every commit reachable from --to and not from --from, like
'git log <from>..<to>'. Sections are printed in configured order. Identical
messages within a section are merged and listed once.`,
	Example: `  # Everything up to HEAD
  stepnotes changelog

  # Since the last release tag, with commit ids
  stepnotes changelog --since-last-tag --with-objects

  # Only two sections, with a custom summary on top
  stepnotes changelog --from v1.2.0 --sections changes,bugfixes -m "Faster startup"

  # Plain text for release notes tooling
  stepnotes changelog --from v1.2.0 --plain > CHANGES.txt`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runChangelog,
}

func init() {
	changelogCmd.GroupID = GroupNotes
	rootCmd.AddCommand(changelogCmd)

	addRangeFlags(changelogCmd)
	changelogCmd.Flags().Bool("with-objects", false, "Append the commit id to each entry")
	changelogCmd.Flags().StringP("message", "m", "", "Custom message rendered as its own section above the notes")
	changelogCmd.Flags().Bool("plain", false, "Plain text output (no colors)")
}

func runChangelog(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	objs, err := s.collect(cmd)
	if err != nil {
		return err
	}

	withObjects, _ := cmd.Flags().GetBool("with-objects")
	message, _ := cmd.Flags().GetString("message")
	plain, _ := cmd.Flags().GetBool("plain")

	aggregated := objs.Aggregate()
	if aggregated.IsEmpty() && strings.TrimSpace(message) == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "No notes found in range.")
		return nil
	}

	opts := notes.FormatOptions{
		Render: notes.RenderOptions{CustomMessage: message},
		Plain:  plain || color.NoColor,
	}
	if withObjects {
		opts.Render.Mode = notes.ModeWithObjects
	}

	if err := notes.FormatTerminal(aggregated, cmd.OutOrStdout(), opts); err != nil {
		return fmt.Errorf("writing changelog: %w", err)
	}
	return nil
}
