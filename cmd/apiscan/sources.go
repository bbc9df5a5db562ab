package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"apiscan/internal/aggregate"
	"apiscan/internal/paths"
)

var (
	sourcesFormat      string
	sourcesModulesFile string
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the snapshot files in aggregation order",
	Long: `Resolves every enabled scan step's outputs and prints the files generate
would concatenate, in order, without writing anything.

Examples:
  apiscan sources
  apiscan sources --format json`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().StringVar(&sourcesFormat, "format", "human", "Output format (human, json, yaml)")
	sourcesCmd.Flags().StringVar(&sourcesModulesFile, "modules-file", "", "Module declaration file, relative to the project root")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(sourcesFormat)
	if err != nil {
		return err
	}

	env, err := setupEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	graph, err := env.loadGraph(sourcesModulesFile)
	if err != nil {
		return err
	}

	ordered, err := aggregate.NewGenerator(env.logger, nil).Plan(graph)
	if err != nil {
		return err
	}

	target, err := resolveTarget(graph.Project, env.cfg, targetOverrides{}, env.repoRoot)
	if err != nil {
		return err
	}

	out, err := FormatResponse(&SourcesResponseCLI{
		Target:  paths.DisplayPath(target.Path(), env.repoRoot),
		Sources: displayPaths(ordered, env.repoRoot),
	}, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
