package cli

import (
	"fmt"

	"github.com/ariel-frischer/stepnotes/internal/config"
	clierrors "github.com/ariel-frischer/stepnotes/internal/errors"
	"github.com/ariel-frischer/stepnotes/internal/git"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create stepnotes configuration",
	Long: `Inspect and create stepnotes configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (STEPNOTES_*, nested keys joined with __)
  2. Project config (.stepnotes/config.yml, or .stepnotes/config.json)
  3. User config (~/.config/stepnotes/config.yml)
  4. Built-in defaults`,
	Example: `  # Show the effective configuration
  stepnotes config show

  # Write a commented project config
  stepnotes config init

  # Override the push remote for one run
  STEPNOTES_NOTES__REMOTE=upstream stepnotes archive v1.3.0 --dry-run`,
}

var configShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Print the effective configuration as YAML",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, projectDir(cmd))
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:          "init",
	Short:        "Write a commented .stepnotes/config.yml",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path, err := config.WriteProjectTemplate(projectDir(cmd), force)
		if err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Configuration, "writing config",
				"Pass --force to replace the existing file")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

var configMigrateCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Convert .stepnotes/config.json to config.yml",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		result, err := config.MigrateProjectConfig(projectDir(cmd), dryRun)
		if err != nil {
			return clierrors.Wrap(err, clierrors.Configuration)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)

		if result.Success {
			if err := config.BackupLegacyConfig(result.SourcePath, dryRun); err != nil {
				return clierrors.Wrap(err, clierrors.Runtime)
			}
		}
		return nil
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd, configMigrateCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	configMigrateCmd.Flags().Bool("dry-run", false, "Report the migration without writing files")
}

// projectDir is the repository root when --repo (or the working directory) is
// inside a repository, otherwise the working directory.
func projectDir(cmd *cobra.Command) string {
	repoPath, _ := cmd.Flags().GetString("repo")
	if repo, err := git.Open(repoPath); err == nil && repo.Root() != "" {
		return repo.Root()
	}
	return repoPath
}
