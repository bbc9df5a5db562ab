package aggregate

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"apiscan/internal/modules"
	"apiscan/internal/slogutil"
)

// Result describes a successful aggregation run.
type Result struct {
	RunID    string        `json:"runId" yaml:"runId"`
	Target   string        `json:"target" yaml:"target"`
	Sources  []string      `json:"sources" yaml:"sources"`
	Bytes    int64         `json:"bytes" yaml:"bytes"`
	Digest   string        `json:"digest" yaml:"digest"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// RunRecord is handed to a RunRecorder after every run, successful or not.
type RunRecord struct {
	RunID     string
	Target    Target
	Sources   []string
	Bytes     int64
	Digest    string
	StartedAt time.Time
	Duration  time.Duration
	// Err is the run's failure, nil on success.
	Err error
}

// RunRecorder persists run records.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec *RunRecord) error
}

// Generator runs the aggregation pipeline over a project graph.
type Generator struct {
	logger   *slog.Logger
	recorder RunRecorder
	now      func() time.Time
}

// NewGenerator creates a generator. recorder may be nil to skip run history.
func NewGenerator(logger *slog.Logger, recorder RunRecorder) *Generator {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Generator{
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// Plan resolves step outputs and returns the ordered input sequence without
// writing anything.
func (g *Generator) Plan(graph *modules.Graph) ([]string, error) {
	if err := graph.ResolveOutputs(); err != nil {
		return nil, err
	}
	sources, err := ResolveSources(graph.AllModules())
	if err != nil {
		return nil, err
	}
	return OrderSources(sources), nil
}

// Generate writes the aggregate for graph to target. The run is recorded
// whether or not it succeeds; a recording failure is logged and does not
// affect the returned result.
func (g *Generator) Generate(ctx context.Context, graph *modules.Graph, target Target) (*Result, error) {
	runID := uuid.New().String()
	start := g.now()
	targetPath := target.Path()

	logger := g.logger.With("run", runID)
	logger.Debug("Starting aggregation", "target", targetPath)

	rec := &RunRecord{RunID: runID, Target: target, StartedAt: start}

	ordered, err := g.Plan(graph)
	if err != nil {
		return nil, g.finish(ctx, logger, rec, err)
	}
	rec.Sources = ordered
	logger.Debug("Resolved snapshot files", "count", len(ordered))

	stats, err := WriteAggregate(targetPath, ordered)
	if err != nil {
		return nil, g.finish(ctx, logger, rec, err)
	}
	rec.Bytes = stats.Bytes
	rec.Digest = stats.Digest

	g.finish(ctx, logger, rec, nil)

	logger.Info("Wrote API snapshot",
		"target", targetPath,
		"sources", len(ordered),
		"bytes", stats.Bytes,
	)

	return &Result{
		RunID:    runID,
		Target:   targetPath,
		Sources:  ordered,
		Bytes:    stats.Bytes,
		Digest:   stats.Digest,
		Duration: rec.Duration,
	}, nil
}

// finish stamps the duration, records the run and returns runErr unchanged.
func (g *Generator) finish(ctx context.Context, logger *slog.Logger, rec *RunRecord, runErr error) error {
	rec.Duration = g.now().Sub(rec.StartedAt)
	rec.Err = runErr

	if runErr != nil {
		logger.Error("Aggregation failed", "error", runErr)
	}

	if g.recorder != nil {
		if err := g.recorder.RecordRun(ctx, rec); err != nil {
			logger.Warn("Failed to record run history", "error", err)
		}
	}
	return runErr
}
