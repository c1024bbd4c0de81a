package hlog

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Registry is an optional per-run metadata store: run configuration,
// phase timings, and final HUI count keyed by run id. Purely
// observability bookkeeping — not a recovery mechanism, and does not
// contradict the no-durability stance the engine itself takes toward
// mining state.
type Registry struct {
	db *sql.DB
}

// OpenRegistry opens (creating if absent) a sqlite registry at path.
func OpenRegistry(path string) (*Registry, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  DATETIME NOT NULL,
	input_path  TEXT NOT NULL,
	min_util    INTEGER NOT NULL,
	thread_count INTEGER NOT NULL,
	hui_count   INTEGER,
	wall_clock_ns INTEGER
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Registry{db: db}, nil
}

// RecordRun inserts a completed run's summary and returns its row id.
func (r *Registry) RecordRun(inputPath string, minUtil uint64, threadCount int, huiCount int, wall time.Duration) (int64, error) {
	res, err := r.db.Exec(
		`INSERT INTO runs (started_at, input_path, min_util, thread_count, hui_count, wall_clock_ns) VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now(), inputPath, minUtil, threadCount, huiCount, wall.Nanoseconds(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Close closes the underlying database handle.
func (r *Registry) Close() error { return r.db.Close() }
