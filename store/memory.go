package store

import (
	"context"
	"sort"
	"sync"

	"govrag/types"
	"govrag/vecmath"
)

// MemoryStore is an in-process VectorStorer used by tests and as a degraded
// mode when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]types.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]types.Record),
	}
}

func (s *MemoryStore) Upsert(_ context.Context, records []types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		rec.Metadata = SanitizeMetadata(rec.Metadata)
		s.records[rec.ID.String()] = rec
	}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, vector []float32, filter *Filter, topK int) ([]types.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]types.SearchHit, 0, len(s.records))
	for _, rec := range s.records {
		if filter != nil && !filter.Matches(rec.Metadata) {
			continue
		}
		score := (vecmath.Cosine(vector, rec.Vector) + 1) / 2
		hits = append(hits, types.SearchHit{
			ID:       rec.ID,
			Score:    score,
			Metadata: rec.Metadata,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *MemoryStore) DeleteByFilter(_ context.Context, filter Filter) error {
	if filter.IsZero() {
		return ErrEmptyFilter
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if filter.Matches(rec.Metadata) {
			delete(s.records, id)
		}
	}
	return nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Count: int64(len(s.records))}, nil
}
