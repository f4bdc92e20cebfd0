package store

import (
	"context"
	"errors"
	"sync"

	"ai-inclusion-checker/internal/models"
)

var ErrNotFound = errors.New("scan record not found")

// Repository persists scan records by scan token. Update applies fn to the
// current record and replaces it atomically; it is a no-op when the token is
// unknown. Readers never observe a partially applied update.
type Repository interface {
	Create(ctx context.Context, token string, rec models.ScanRecord) error
	Get(ctx context.Context, token string) (models.ScanRecord, error)
	Update(ctx context.Context, token string, fn func(*models.ScanRecord)) error
	Delete(ctx context.Context, token string) error
}

// MemoryStore is a process-local Repository. Records are deep-copied in and
// out so callers never share state with the map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.ScanRecord
}

func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.ScanRecord)}
}

func (s *MemoryStore) Create(_ context.Context, token string, rec models.ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[token] = rec.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (models.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[token]
	if !ok {
		return models.ScanRecord{}, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, token string, fn func(*models.ScanRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[token]
	if !ok {
		return nil
	}
	next := rec.Clone()
	fn(&next)
	s.records[token] = next.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, token)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
