package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/shaiso/Enricher/internal/domain"
)

// MemStore — хранилище документов в памяти.
//
// Хранит копии: изменения возвращённой записи не видны до Put.
// Используется в тестах и при запуске без БД.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]domain.Record
	writes  int
}

// NewMemStore создаёт хранилище с начальными записями.
func NewMemStore(records ...domain.Record) *MemStore {
	s := &MemStore{records: make(map[string]domain.Record)}
	for _, r := range records {
		s.records[r.ID()] = r.Clone()
	}
	return s
}

// Get возвращает копию документа.
func (s *MemStore) Get(ctx context.Context, id string) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// Put сохраняет копию документа.
func (s *MemStore) Put(ctx context.Context, record domain.Record) error {
	id := record.ID()
	if id == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = record.Clone()
	s.writes++
	return nil
}

// ListMissing возвращает ID документов без поля field.
func (s *MemStore) ListMissing(ctx context.Context, field string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0)
	for id, r := range s.records {
		if !r.Has(field) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Writes возвращает количество вызовов Put.
func (s *MemStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
