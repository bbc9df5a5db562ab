package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"apiscan/internal/compression"
)

// Run statuses
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

var (
	// ErrRunNotFound is returned when no run matches an ID or ID prefix.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun is returned when an ID prefix matches several runs.
	ErrAmbiguousRun = errors.New("run ID prefix is ambiguous")
	// ErrArtifactNotFound is returned when no artifact is stored for a digest.
	ErrArtifactNotFound = errors.New("artifact not found")
)

// Run is one recorded aggregation.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	Target      string    `json:"target" yaml:"target"`
	BaseName    string    `json:"baseName" yaml:"baseName"`
	Version     string    `json:"version,omitempty" yaml:"version,omitempty"`
	Status      string    `json:"status" yaml:"status"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
	SourceCount int       `json:"sourceCount" yaml:"sourceCount"`
	Bytes       int64     `json:"bytes" yaml:"bytes"`
	Digest      string    `json:"digest,omitempty" yaml:"digest,omitempty"`
	StartedAt   time.Time `json:"startedAt" yaml:"startedAt"`
	DurationMs  int64     `json:"durationMs" yaml:"durationMs"`
	// Sources is only populated by GetRun.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Store reads and writes run history.
type Store struct {
	db *DB
}

// NewStore creates a store backed by db.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// RecordRun inserts run together with its ordered sources.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return fmt.Errorf("run has no ID")
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, target, base_name, version, status, error,
				source_count, bytes, digest, started_at, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			run.Target,
			run.BaseName,
			run.Version,
			run.Status,
			run.Error,
			len(run.Sources),
			run.Bytes,
			run.Digest,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			run.DurationMs,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for i, path := range run.Sources {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_sources (run_id, ordinal, path) VALUES (?, ?, ?)`,
				run.ID, i, path,
			); err != nil {
				return fmt.Errorf("failed to insert run source: %w", err)
			}
		}
		run.SourceCount = len(run.Sources)
		return nil
	})
}

const runColumns = `id, target, base_name, version, status, error,
	source_count, bytes, digest, started_at, duration_ms`

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run whose ID equals id or, failing that, the single run
// whose ID starts with it. Sources are included.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrRunNotFound
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		run, err = s.getRunByPrefix(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM run_sources WHERE run_id = ? ORDER BY ordinal`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		run.Sources = append(run.Sources, path)
	}
	return run, rows.Err()
}

func (s *Store) getRunByPrefix(ctx context.Context, prefix string) (*Run, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, prefix)
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var startedAt string
	if err := row.Scan(
		&run.ID,
		&run.Target,
		&run.BaseName,
		&run.Version,
		&run.Status,
		&run.Error,
		&run.SourceCount,
		&run.Bytes,
		&run.Digest,
		&startedAt,
		&run.DurationMs,
	); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	run.StartedAt = t
	return &run, nil
}

// SaveArtifact stores content under digest, its SHA-256 hex. Content already
// stored for the digest is left untouched.
func (s *Store) SaveArtifact(ctx context.Context, digest string, content []byte) error {
	if got := digestOf(content); got != digest {
		return fmt.Errorf("artifact digest mismatch: got %s, want %s", got, digest)
	}

	data, codec, err := compression.Compress(content)
	if err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO artifacts (digest, codec, size, data) VALUES (?, ?, ?, ?)`,
			digest, string(codec), len(content), data,
		)
		return err
	})
}

// LoadArtifact returns the content stored under digest, verified against it.
func (s *Store) LoadArtifact(ctx context.Context, digest string) ([]byte, error) {
	var codec string
	var size int64
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT codec, size, data FROM artifacts WHERE digest = ?`, digest,
	).Scan(&codec, &size, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, digest)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact: %w", err)
	}

	content, err := compression.Decompress(data, compression.Codec(codec))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) != size || digestOf(content) != digest {
		return nil, fmt.Errorf("artifact %s is corrupt", digest)
	}
	if content == nil {
		content = []byte{}
	}
	return content, nil
}

func digestOf(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
