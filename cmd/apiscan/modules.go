package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	modulesFormat      string
	modulesModulesFile string
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Show the declared module graph",
	Long: `Prints the module tree loaded from MODULES.toml and apiscan.toml files,
with each module's scan step and its declared outputs.

Examples:
  apiscan modules
  apiscan modules --format yaml`,
	Args: cobra.NoArgs,
	RunE: runModules,
}

func init() {
	modulesCmd.Flags().StringVar(&modulesFormat, "format", "human", "Output format (human, json, yaml)")
	modulesCmd.Flags().StringVar(&modulesModulesFile, "modules-file", "", "Module declaration file, relative to the project root")
	rootCmd.AddCommand(modulesCmd)
}

func runModules(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(modulesFormat)
	if err != nil {
		return err
	}

	env, err := setupEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	graph, err := env.loadGraph(modulesModulesFile)
	if err != nil {
		return err
	}

	out, err := FormatResponse(newModulesResponse(graph), format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
