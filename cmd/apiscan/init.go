package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apiscan/internal/config"
	apierrors "apiscan/internal/errors"
	"apiscan/internal/paths"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize apiscan configuration",
	Long: `Creates .apiscan/config.json with default settings in the project root.
Run history in .apiscan is left untouched, even with --force.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration with defaults")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := absRepoRoot()
	if err != nil {
		return err
	}
	configPath := paths.GetConfigPath(repoRoot)
	out := cmd.OutOrStdout()

	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Already initialized is success.
		fmt.Fprintln(out, "apiscan already initialized.")
		fmt.Fprintf(out, "Configuration at: %s\n", configPath)
		fmt.Fprintln(out, "\nRun 'apiscan init --force' to reset it to defaults.")
		return nil
	}

	if err := config.DefaultConfig().Save(repoRoot); err != nil {
		return apierrors.IO(apierrors.ConfigInvalid, "failed to write config file", configPath, err)
	}

	fmt.Fprintln(out, "apiscan initialized successfully!")
	fmt.Fprintf(out, "Configuration written to: %s\n", configPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Declare modules in MODULES.toml")
	fmt.Fprintln(out, "  2. Run 'apiscan sources' to check what will be aggregated")
	fmt.Fprintln(out, "  3. Run 'apiscan generate'")
	return nil
}
