package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"apiscan/internal/aggregate"
)

// Recorder adapts a Store to aggregate.RunRecorder.
type Recorder struct {
	store         *Store
	keepArtifacts bool
	logger        *slog.Logger
}

// NewRecorder creates a recorder. With keepArtifacts set, the aggregate of
// every successful run is archived alongside the run.
func NewRecorder(store *Store, keepArtifacts bool, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, keepArtifacts: keepArtifacts, logger: logger}
}

// RecordRun implements aggregate.RunRecorder.
func (r *Recorder) RecordRun(ctx context.Context, rec *aggregate.RunRecord) error {
	run := &Run{
		ID:         rec.RunID,
		Target:     rec.Target.Path(),
		BaseName:   rec.Target.BaseName,
		Version:    rec.Target.Version,
		Status:     StatusSucceeded,
		Bytes:      rec.Bytes,
		Digest:     rec.Digest,
		StartedAt:  rec.StartedAt,
		DurationMs: rec.Duration.Milliseconds(),
		Sources:    rec.Sources,
	}
	if rec.Err != nil {
		run.Status = StatusFailed
		run.Error = rec.Err.Error()
		run.Digest = ""
		run.Bytes = 0
	}

	if err := r.store.RecordRun(ctx, run); err != nil {
		return err
	}
	r.logger.Debug("Recorded run", "run", run.ID, "status", run.Status)

	if rec.Err != nil || !r.keepArtifacts {
		return nil
	}

	content, err := os.ReadFile(run.Target)
	if err != nil {
		return fmt.Errorf("failed to read aggregate for archiving: %w", err)
	}
	// The target may have been rewritten since; only archive what this run wrote.
	if digestOf(content) != run.Digest {
		return fmt.Errorf("aggregate %s changed before it could be archived", run.Target)
	}
	return r.store.SaveArtifact(ctx, run.Digest, content)
}
