package mule

import (
	"database/sql"

	"github.com/mulelabs/mule/internal/persistence"
)

// Recorder constructors
// These wrap the internal/persistence package so external callers
// never need to import internal packages.

// ErrRecordNotFound is returned by RecordLookup implementations when no
// record exists for a key.
var ErrRecordNotFound = persistence.ErrRecordNotFound

// MemoryRecorder is an in-memory execution-record sink, best for tests
// and local runs.
type MemoryRecorder = persistence.MemoryStore

// NewMemoryRecorder returns an empty in-memory Recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return persistence.NewMemoryStore()
}

// SQLiteRecorder persists execution records in a SQLite database.
type SQLiteRecorder = persistence.SQLiteStore

// NewSQLiteRecorder initializes the execution log schema in the given
// database and returns a Recorder writing to it.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:mule.db?_journal=WAL")
//	rec, err := mule.NewSQLiteRecorder(db)
//	wf := mule.New(mule.WithRecorder(rec))
func NewSQLiteRecorder(db *sql.DB) (*SQLiteRecorder, error) {
	return persistence.NewSQLiteStore(db)
}
