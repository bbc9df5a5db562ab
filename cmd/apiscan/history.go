package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apierrors "apiscan/internal/errors"
	"apiscan/internal/storage"
)

var (
	historyLimit  int
	historyFormat string
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded aggregation runs",
	Long: `Lists previous generate runs, newest first, from .apiscan/history.db.

Examples:
  apiscan history
  apiscan history --limit 50 --format json
  apiscan history show 7c9e6679
  apiscan history artifact 7c9e6679 -o api-old.txt`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its ordered sources",
	Long:  "Shows a recorded run. The ID may be abbreviated to any unique prefix.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyArtifactCmd = &cobra.Command{
	Use:   "artifact <run-id>",
	Short: "Restore the aggregate a run wrote",
	Long: `Writes the archived aggregate of a successful run to stdout, or to a file
with -o. Artifacts are only kept when history.keepArtifacts is enabled.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryArtifact,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyFormat, "format", "human", "Output format (human, json, yaml)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list (0 for all)")
	historyArtifactCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Write the artifact to this file instead of stdout")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyArtifactCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the run history store for the current project.
func openHistory(env *cliEnv) (*storage.Store, func(), error) {
	db, err := storage.Open(env.repoRoot, env.logger)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewStore(db), func() { _ = db.Close() }, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(historyFormat)
	if err != nil {
		return err
	}

	env, err := setupEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	store, closeStore, err := openHistory(env)
	if err != nil {
		return err
	}
	defer closeStore()

	runs, err := store.ListRuns(newContext(), historyLimit)
	if err != nil {
		return apierrors.NewApiscanError(apierrors.HistoryUnavailable, "cannot list runs", err)
	}

	out, err := FormatResponse(&HistoryResponseCLI{Runs: runs}, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(historyFormat)
	if err != nil {
		return err
	}

	env, err := setupEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	store, closeStore, err := openHistory(env)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := newContext()
	run, err := store.GetRun(ctx, args[0])
	if err != nil {
		return err
	}

	resp := &RunResponseCLI{Run: *run}
	if run.Digest != "" {
		if _, err := store.LoadArtifact(ctx, run.Digest); err == nil {
			resp.Archived = true
		} else if !errors.Is(err, storage.ErrArtifactNotFound) {
			env.logger.Warn("Archived artifact is unreadable", "digest", run.Digest, "error", err)
		}
	}

	out, err := FormatResponse(resp, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runHistoryArtifact(cmd *cobra.Command, args []string) error {
	env, err := setupEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	store, closeStore, err := openHistory(env)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := newContext()
	run, err := store.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	if run.Digest == "" {
		return fmt.Errorf("run %s failed and has no aggregate", run.ID)
	}

	content, err := store.LoadArtifact(ctx, run.Digest)
	if err != nil {
		return err
	}

	if historyOutput == "" {
		_, err = cmd.OutOrStdout().Write(content)
		return err
	}
	if err := os.WriteFile(historyOutput, content, 0644); err != nil {
		return apierrors.IO(apierrors.TargetOpenFailed, "cannot write artifact", historyOutput, err)
	}
	env.logger.Info("Restored artifact", "run", run.ID, "path", historyOutput, "bytes", len(content))
	return nil
}
