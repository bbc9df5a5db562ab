package main

import (
	"github.com/spf13/cobra"

	"apiscan/internal/version"
)

var (
	// repoFlag is the project root all paths are resolved against
	repoFlag string
	// verboseFlag lowers the console log threshold one level per -v
	verboseFlag int
	// quietFlag silences console logging
	quietFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "apiscan",
	Short: "apiscan - deterministic API snapshot aggregation",
	Long: `apiscan collects the public API snapshot files produced by each module's
scan step and concatenates them, in a stable order, into a single
<baseName>[-<version>].txt under the build output directory.

Modules and their scan steps are declared in MODULES.toml at the project
root, or per module in apiscan.toml.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", ".", "Project root directory")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress log output")
}
