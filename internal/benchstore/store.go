// Package benchstore keeps a SQLite history of benchmark harness runs.
package benchstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    workers INTEGER NOT NULL,
    scheduler TEXT NOT NULL,
    chunk_size INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS measurements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    workload TEXT NOT NULL,
    size INTEGER NOT NULL,
    sequential_ns INTEGER NOT NULL,
    parallel_ns INTEGER NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("benchstore: not found")

// Run describes one harness invocation.
type Run struct {
	ID        string
	StartedAt time.Time
	Workers   int
	Scheduler string
	ChunkSize int
}

// Measurement is the timing of one workload at one input size.
type Measurement struct {
	Workload   string
	Size       int
	Sequential time.Duration
	Parallel   time.Duration
}

// Speedup is sequential time over parallel time.
func (m Measurement) Speedup() float64 {
	if m.Parallel <= 0 {
		return 0
	}
	return float64(m.Sequential) / float64(m.Parallel)
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path. ":memory:"
// gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records a run and its measurements in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, ms []Measurement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, workers, scheduler, chunk_size) VALUES (?, ?, ?, ?, ?)",
		run.ID, run.StartedAt.UnixNano(), run.Workers, run.Scheduler, run.ChunkSize,
	)
	if err != nil {
		return err
	}

	for _, m := range ms {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO measurements (run_id, workload, size, sequential_ns, parallel_ns) VALUES (?, ?, ?, ?, ?)",
			run.ID, m.Workload, m.Size, int64(m.Sequential), int64(m.Parallel),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRun returns a run with its measurements in insertion order.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, []Measurement, error) {
	var (
		run     Run
		started int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, workers, scheduler, chunk_size FROM runs WHERE id = ?", id,
	).Scan(&run.ID, &started, &run.Workers, &run.Scheduler, &run.ChunkSize)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	run.StartedAt = time.Unix(0, started)

	rows, err := s.db.QueryContext(ctx,
		"SELECT workload, size, sequential_ns, parallel_ns FROM measurements WHERE run_id = ? ORDER BY id", id,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var ms []Measurement
	for rows.Next() {
		var (
			m        Measurement
			seq, par int64
		)
		if err := rows.Scan(&m.Workload, &m.Size, &seq, &par); err != nil {
			return nil, nil, err
		}
		m.Sequential, m.Parallel = time.Duration(seq), time.Duration(par)
		ms = append(ms, m)
	}
	return &run, ms, rows.Err()
}

// RecentRuns lists the latest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, workers, scheduler, chunk_size FROM runs ORDER BY started_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			started int64
		)
		if err := rows.Scan(&r.ID, &started, &r.Workers, &r.Scheduler, &r.ChunkSize); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(0, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// BestSpeedup returns the highest recorded speedup for a workload and size, or
// ErrNotFound when nothing was recorded.
func (s *Store) BestSpeedup(ctx context.Context, workload string, size int) (float64, error) {
	var best sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(CAST(sequential_ns AS REAL) / parallel_ns) FROM measurements WHERE workload = ? AND size = ? AND parallel_ns > 0",
		workload, size,
	).Scan(&best)
	if err != nil {
		return 0, err
	}
	if !best.Valid {
		return 0, ErrNotFound
	}
	return best.Float64, nil
}
