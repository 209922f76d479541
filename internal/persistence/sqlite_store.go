package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/mulelabs/mule/pkg/api"
)

// SQLiteStore is a Recorder backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
//
// Rows are append-only; Lookup serves the most recent record for a key
// through an in-memory read-through cache.
type SQLiteStore struct {
	db *sql.DB

	mu    sync.Mutex
	cache map[string]*api.ExecutionRecord
}

var (
	_ api.Recorder     = (*SQLiteStore)(nil)
	_ api.RecordLookup = (*SQLiteStore)(nil)
)

// NewSQLiteStore initializes the required schema in the given database
// and returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{
		db:    db,
		cache: make(map[string]*api.ExecutionRecord),
	}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS executions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			record_key TEXT NOT NULL,
			run_id TEXT NOT NULL,
			workflow_id TEXT NOT NULL,
			project_id TEXT,
			step_id TEXT NOT NULL,
			parent_step_id TEXT,
			execution_group TEXT,
			kind TEXT NOT NULL,
			depth INTEGER NOT NULL,
			attempt INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			output BLOB,
			duration_ns INTEGER NOT NULL,
			started_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_executions_key ON executions (record_key);`,
	)
	return err
}

// Record appends one execution row and caches it for Lookup.
func (s *SQLiteStore) Record(ctx context.Context, rec *api.ExecutionRecord) (string, error) {
	output, err := EncodeValue(rec.Output)
	if err != nil {
		return "", err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (
			record_key, run_id, workflow_id, project_id, step_id,
			parent_step_id, execution_group, kind, depth,
			attempt, status, error, output, duration_ns, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Key(),
		rec.RunID,
		rec.WorkflowID,
		rec.ProjectID,
		rec.StepID,
		rec.ParentStepID,
		rec.ExecutionGroup,
		string(rec.Kind),
		rec.Depth,
		rec.Attempt,
		string(rec.Status),
		rec.Error,
		output,
		rec.Duration.Nanoseconds(),
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", err
	}

	copied := *rec
	s.mu.Lock()
	s.cache[rec.Key()] = &copied
	s.mu.Unlock()

	return strconv.FormatInt(id, 10), nil
}

// Lookup returns the most recent record stored under key, consulting
// the in-memory cache before the database.
func (s *SQLiteStore) Lookup(ctx context.Context, key string) (*api.ExecutionRecord, error) {
	s.mu.Lock()
	if rec, ok := s.cache[key]; ok {
		copied := *rec
		s.mu.Unlock()
		return &copied, nil
	}
	s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, workflow_id, project_id, step_id,
			parent_step_id, execution_group, kind, depth,
			attempt, status, error, output, duration_ns, started_at
		FROM executions
		WHERE record_key = ?
		ORDER BY id DESC
		LIMIT 1`,
		key,
	)

	var (
		rec        api.ExecutionRecord
		kind       string
		status     string
		output     []byte
		durationNs int64
		startedAt  string
	)
	err := row.Scan(
		&rec.RunID, &rec.WorkflowID, &rec.ProjectID, &rec.StepID,
		&rec.ParentStepID, &rec.ExecutionGroup, &kind, &rec.Depth,
		&rec.Attempt, &status, &rec.Error, &output, &durationNs, &startedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	rec.Kind = api.ExecutionKind(kind)
	rec.Status = api.ExecutionStatus(status)
	rec.Duration = time.Duration(durationNs)

	if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		rec.StartedAt = ts
	}

	outVal, err := DecodeValue(output)
	if err != nil {
		return nil, err
	}
	rec.Output = outVal

	copied := rec
	s.mu.Lock()
	s.cache[key] = &copied
	s.mu.Unlock()

	return &rec, nil
}
