package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"apiscan/internal/config"
	apierrors "apiscan/internal/errors"
	"apiscan/internal/modules"
	"apiscan/internal/paths"
	"apiscan/internal/slogutil"
)

// cliEnv is what every command needs: the project root, its configuration
// and a logger writing to stderr.
type cliEnv struct {
	repoRoot string
	cfg      *config.Config
	logger   *slog.Logger
	closer   io.Closer
}

// setupEnv resolves --repo, loads the configuration and builds the logger.
func setupEnv() (*cliEnv, error) {
	repoRoot, err := absRepoRoot()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return nil, configError(repoRoot, err)
	}

	opts := slogutil.Options{
		Format:    cfg.Logging.Format,
		Level:     cfg.Logging.Level,
		Verbosity: verboseFlag,
		Quiet:     quietFlag,
	}
	if cfg.Logging.File {
		opts.FilePath = paths.GetLogPath(repoRoot)
	}
	logger, closer, err := slogutil.Build(opts)
	if err != nil {
		return nil, apierrors.NewApiscanError(apierrors.ConfigInvalid, "cannot set up logging", err).WithPath(opts.FilePath)
	}

	return &cliEnv{
		repoRoot: repoRoot,
		cfg:      cfg,
		logger:   logger.With("repo", repoRoot),
		closer:   closer,
	}, nil
}

func absRepoRoot() (string, error) {
	repoRoot, err := filepath.Abs(repoFlag)
	if err != nil {
		return "", apierrors.NewApiscanError(apierrors.InternalError, "cannot resolve project root", err).WithPath(repoFlag)
	}
	return repoRoot, nil
}

func configError(repoRoot string, err error) error {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return apierrors.NewApiscanError(apierrors.ConfigInvalid, "invalid configuration", err).WithPath(paths.GetConfigPath(repoRoot))
	}
	return err
}

func (e *cliEnv) Close() {
	_ = e.closer.Close()
}

// loadGraph loads the module graph, with modulesFile overriding the
// configured declaration file.
func (e *cliEnv) loadGraph(modulesFile string) (*modules.Graph, error) {
	if modulesFile == "" {
		modulesFile = e.cfg.ModulesFile
	}
	graph, err := modules.LoadGraph(e.repoRoot, modulesFile)
	if err != nil {
		return nil, err
	}
	stats := graph.Stats()
	e.logger.Debug("Loaded module graph",
		"project", graph.Project.Name,
		"modules", stats.Modules,
		"enabled_steps", stats.EnabledSteps,
	)
	for _, m := range graph.ExternalModules() {
		e.logger.Warn("Module lies outside the project root", "module", m.Name, "dir", m.Dir)
	}
	return graph, nil
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}
