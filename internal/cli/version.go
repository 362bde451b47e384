package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information",
	Example: `  stepnotes version
  stepnotes version --plain`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		printVersion(cmd.OutOrStdout(), plain || color.NoColor)
	},
}

func init() {
	versionCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("plain", false, "Plain output without formatting")
}

func printVersion(w io.Writer, plain bool) {
	label := fmt.Sprint
	if !plain {
		label = color.New(color.FgCyan, color.Bold).SprintFunc()
	}

	fmt.Fprintf(w, "%s %s\n", label("stepnotes"), Version)
	fmt.Fprintf(w, "%s %s\n", label("commit:"), Commit)
	fmt.Fprintf(w, "%s %s\n", label("built:"), BuildDate)
	fmt.Fprintf(w, "%s %s\n", label("go:"), runtime.Version())
	fmt.Fprintf(w, "%s %s/%s\n", label("platform:"), runtime.GOOS, runtime.GOARCH)
}
