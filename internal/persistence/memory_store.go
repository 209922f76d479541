package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mulelabs/mule/pkg/api"
)

// ErrRecordNotFound is returned by Lookup when no record exists for a key.
var ErrRecordNotFound = errors.New("execution record not found")

// MemoryStore is an append-only in-memory Recorder with key lookup.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	records []*api.ExecutionRecord
	byKey   map[string]*api.ExecutionRecord
	nextID  int64
}

var (
	_ api.Recorder     = (*MemoryStore)(nil)
	_ api.RecordLookup = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byKey: make(map[string]*api.ExecutionRecord)}
}

// Record appends a copy of rec and returns its assigned identifier.
func (s *MemoryStore) Record(ctx context.Context, rec *api.ExecutionRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *rec
	s.nextID++
	s.records = append(s.records, &copied)
	s.byKey[copied.Key()] = &copied
	return fmt.Sprintf("rec-%d", s.nextID), nil
}

// Lookup returns the most recent record stored under key.
func (s *MemoryStore) Lookup(ctx context.Context, key string) (*api.ExecutionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byKey[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copied := *rec
	return &copied, nil
}

// List returns a copy of every stored record in append order.
func (s *MemoryStore) List() []*api.ExecutionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*api.ExecutionRecord, len(s.records))
	for i, rec := range s.records {
		copied := *rec
		out[i] = &copied
	}
	return out
}
