package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mulelabs/mule/pkg/api"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "executions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStore_RecordAndLookup(t *testing.T) {
	db := openTestDB(t)
	store, err := NewSQLiteStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	started := time.Now().UTC().Truncate(time.Millisecond)

	rec := &api.ExecutionRecord{
		RunID:          "run-1",
		WorkflowID:     "wf-1",
		ProjectID:      "proj",
		StepID:         "stepA",
		ExecutionGroup: "grp",
		Kind:           api.KindParallel,
		Depth:          1,
		Attempt:        2,
		Status:         api.StatusCompleted,
		Output:         map[string]any{"total": float64(42)},
		Duration:       15 * time.Millisecond,
		StartedAt:      started,
	}

	id, err := store.Record(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := store.Lookup(ctx, "run-1:stepA")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, api.KindParallel, got.Kind)
	assert.Equal(t, 2, got.Attempt)
	assert.Equal(t, map[string]any{"total": float64(42)}, got.Output)
	assert.Equal(t, 15*time.Millisecond, got.Duration)
}

func TestSQLiteStore_LookupSurvivesRestart(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "executions.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)

	_, err = store.Record(context.Background(), &api.ExecutionRecord{
		RunID:     "r",
		StepID:    "s",
		Kind:      api.KindSequential,
		Attempt:   1,
		Status:    api.StatusHandled,
		Error:     "boom",
		StartedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// A fresh store over the same file has a cold cache; Lookup must
	// come from the database.
	db2, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db2.Close() })

	store2, err := NewSQLiteStore(db2)
	require.NoError(t, err)

	got, err := store2.Lookup(context.Background(), "r:s")
	require.NoError(t, err)
	assert.Equal(t, api.StatusHandled, got.Status)
	assert.Equal(t, "boom", got.Error)
	assert.Nil(t, got.Output)
}

func TestSQLiteStore_LookupMissing(t *testing.T) {
	store, err := NewSQLiteStore(openTestDB(t))
	require.NoError(t, err)

	_, err = store.Lookup(context.Background(), "nope:never")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSQLiteStore_LatestAttemptWinsLookup(t *testing.T) {
	store, err := NewSQLiteStore(openTestDB(t))
	require.NoError(t, err)

	ctx := context.Background()
	for attempt := 1; attempt <= 3; attempt++ {
		status := api.StatusFailed
		if attempt == 3 {
			status = api.StatusCompleted
		}
		_, err = store.Record(ctx, &api.ExecutionRecord{
			RunID:     "r",
			StepID:    "s",
			Kind:      api.KindSequential,
			Attempt:   attempt,
			Status:    status,
			StartedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	got, err := store.Lookup(ctx, "r:s")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Attempt)
	assert.Equal(t, api.StatusCompleted, got.Status)
}

func TestCodec_RoundTrip(t *testing.T) {
	data, err := EncodeValue(map[string]any{"n": float64(7), "ok": true})
	require.NoError(t, err)

	v, err := DecodeValue(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": float64(7), "ok": true}, v)

	empty, err := EncodeValue(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)

	none, err := DecodeValue(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}
