package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"apiscan/internal/aggregate"
	"apiscan/internal/config"
	apierrors "apiscan/internal/errors"
	"apiscan/internal/modules"
	"apiscan/internal/paths"
	"apiscan/internal/storage"
)

var (
	generateBaseName    string
	generateVersion     string
	generateOutputDir   string
	generateModulesFile string
	generateNoHistory   bool
	generateFormat      string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the aggregated API snapshot",
	Long: `Concatenates the snapshot files of every module with an enabled scan step,
ordered by file name, into <outputDir>/<baseName>[-<version>].txt.

The target defaults to <buildDir>/api/api-<project>-<version>.txt. Flags
override the configuration, which overrides the module graph.

Examples:
  apiscan generate
  apiscan generate --version 4.1-SNAPSHOT
  apiscan generate --base-name api-corda --version "" --output-dir dist
  apiscan generate --format json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateBaseName, "base-name", "", "Target file base name (default api-<project>)")
	generateCmd.Flags().StringVar(&generateVersion, "version", "", "Target version suffix; an explicit empty value omits it")
	generateCmd.Flags().StringVar(&generateOutputDir, "output-dir", "", "Target directory (default <buildDir>/api)")
	generateCmd.Flags().StringVar(&generateModulesFile, "modules-file", "", "Module declaration file, relative to the project root")
	generateCmd.Flags().BoolVar(&generateNoHistory, "no-history", false, "Do not record this run in the history database")
	generateCmd.Flags().StringVar(&generateFormat, "format", "human", "Output format (human, json, yaml)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(generateFormat)
	if err != nil {
		return err
	}

	env, err := setupEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	graph, err := env.loadGraph(generateModulesFile)
	if err != nil {
		return err
	}

	target, err := resolveTarget(graph.Project, env.cfg, targetOverrides{
		BaseName:   generateBaseName,
		Version:    generateVersion,
		VersionSet: cmd.Flags().Changed("version"),
		OutputDir:  generateOutputDir,
	}, env.repoRoot)
	if err != nil {
		return err
	}

	var recorder aggregate.RunRecorder
	if env.cfg.History.Enabled && !generateNoHistory {
		db, err := storage.Open(env.repoRoot, env.logger)
		if err != nil {
			env.logger.Warn("Run history unavailable", "error", err)
		} else {
			defer func() { _ = db.Close() }()
			recorder = storage.NewRecorder(storage.NewStore(db), env.cfg.History.KeepArtifacts, env.logger)
		}
	}

	result, err := aggregate.NewGenerator(env.logger, recorder).Generate(newContext(), graph, target)
	if err != nil {
		return err
	}

	out, err := FormatResponse(newGenerateResponse(result, env.repoRoot), format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// targetOverrides carries the generate flags that shape the target.
type targetOverrides struct {
	BaseName string
	Version  string
	// VersionSet distinguishes --version "" from an absent flag.
	VersionSet bool
	OutputDir  string
}

// resolveTarget applies flag > config > graph precedence to the target.
// Relative output directories are resolved against repoRoot.
func resolveTarget(project modules.ProjectInfo, cfg *config.Config, flags targetOverrides, repoRoot string) (aggregate.Target, error) {
	target := aggregate.DefaultTarget(project)

	merged := *cfg
	if flags.BaseName != "" {
		merged.Generate.BaseName = flags.BaseName
	}
	if flags.VersionSet {
		merged.Generate.Version = flags.Version
	}
	if flags.OutputDir != "" {
		merged.Generate.OutputDir = flags.OutputDir
	}
	if err := merged.Validate(); err != nil {
		return aggregate.Target{}, apierrors.NewApiscanError(apierrors.ConfigInvalid, "invalid aggregation target", err)
	}

	if merged.Generate.BaseName != "" {
		target.BaseName = merged.Generate.BaseName
	}
	if flags.VersionSet || merged.Generate.Version != "" {
		target.Version = merged.Generate.Version
	}
	if merged.Generate.OutputDir != "" {
		target.OutputDir = paths.AbsClean(repoRoot, merged.Generate.OutputDir)
	}
	return target, nil
}
