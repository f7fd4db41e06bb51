package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/checkvolume/internal/buildinfo"
	"github.com/cleared-dev/checkvolume/internal/ocr"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// engine is used by the run command to read check images.
func NewRootCommand(engine ocr.Engine) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "checkvolume",
		Short:   "Sort scanned checks into volume tiers by account",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newRunCommand(engine))
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}
