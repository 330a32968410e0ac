// Package store persists aggregate run summaries in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/gilchrisn/immunization-sim/pkg/centrality"
	"github.com/gilchrisn/immunization-sim/pkg/montecarlo"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    measure TEXT NOT NULL,
    node_count INTEGER NOT NULL,
    edge_probability REAL NOT NULL,
    infection_rate REAL NOT NULL,
    days INTEGER NOT NULL,
    trials INTEGER NOT NULL,
    seed TEXT NOT NULL,
    mean REAL NOT NULL,
    median REAL NOT NULL,
    mode INTEGER NOT NULL,
    stddev REAL NOT NULL,
    min_count INTEGER NOT NULL,
    max_count INTEGER NOT NULL,
    histogram TEXT NOT NULL,
    runtime_ms INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_measure ON runs(measure, created_at);
`

// RunRecord is a stored aggregate run. Per-trial counts are not kept; the
// histogram carries the same distribution.
type RunRecord struct {
	ID        string             `json:"id" yaml:"id"`
	CreatedAt time.Time          `json:"created_at" yaml:"created_at"`
	Result    *montecarlo.Result `json:"result" yaml:"result"`
}

// createdAtLayout is fixed width so created_at sorts chronologically as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps run summaries in a SQLite database.
type SQLiteStore struct {
	mu  sync.RWMutex
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveResult stores a run summary and returns its id.
func (s *SQLiteStore) SaveResult(ctx context.Context, r *montecarlo.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	histogram, err := json.Marshal(r.Statistics.Histogram)
	if err != nil {
		return "", fmt.Errorf("failed to encode histogram: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, measure, node_count, edge_probability, infection_rate, days, trials, seed,
			mean, median, mode, stddev, min_count, max_count, histogram, runtime_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(r.Measure), r.NodeCount, r.EdgeProbability, r.InfectionRate, r.Days, r.Trials,
		strconv.FormatUint(r.Seed, 10),
		r.Statistics.Mean, r.Statistics.Median, r.Statistics.Mode, r.Statistics.StdDev,
		r.Statistics.Min, r.Statistics.Max, string(histogram), r.RuntimeMS,
		s.now().UTC().Format(createdAtLayout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// Get retrieves a run by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// List returns the most recent runs first, optionally filtered by measure.
// A limit of zero or less returns every run.
func (s *SQLiteStore) List(ctx context.Context, measure string, limit int) ([]*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRuns
	var args []interface{}
	if measure != "" {
		query += ` WHERE measure = ?`
		args = append(args, measure)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

const selectRuns = `
	SELECT id, measure, node_count, edge_probability, infection_rate, days, trials, seed,
		mean, median, mode, stddev, min_count, max_count, histogram, runtime_ms, created_at
	FROM runs`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var (
		rec       RunRecord
		r         montecarlo.Result
		measure   string
		seed      string
		histogram string
		createdAt string
	)
	err := row.Scan(&rec.ID, &measure, &r.NodeCount, &r.EdgeProbability, &r.InfectionRate, &r.Days, &r.Trials, &seed,
		&r.Statistics.Mean, &r.Statistics.Median, &r.Statistics.Mode, &r.Statistics.StdDev,
		&r.Statistics.Min, &r.Statistics.Max, &histogram, &r.RuntimeMS, &createdAt)
	if err != nil {
		return nil, err
	}

	r.Measure = centrality.MeasureName(measure)
	r.Statistics.Count = r.Trials
	if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("corrupt seed %q for run %s: %w", seed, rec.ID, err)
	}
	if err := json.Unmarshal([]byte(histogram), &r.Statistics.Histogram); err != nil {
		return nil, fmt.Errorf("corrupt histogram for run %s: %w", rec.ID, err)
	}
	if rec.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt timestamp for run %s: %w", rec.ID, err)
	}

	rec.Result = &r
	return &rec, nil
}
