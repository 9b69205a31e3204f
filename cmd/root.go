package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "launcher-sync",
	Short: "Keeps launcher instance content in sync with its registries",
	Long: `launcher-sync manages the mods, resource packs and shader packs of a
launcher instance. It searches the configured registries, detects and applies
content updates, links manually added files to their registry projects and
exchanges instance content through share codes.`,
}

// Execute runs the command tree. A bare invocation runs the default command.
func Execute() {
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"default"})
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
