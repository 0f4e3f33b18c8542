package enrollment

import (
	"context"
	"sort"
	"sync"

	"fstop/apperr"
	"fstop/models"
)

// MemoryStore is the process-local fallback store. Records are cloned on the
// way in and out so callers never share state with the map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.EnrollmentRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.EnrollmentRecord)}
}

func (s *MemoryStore) Find(_ context.Context, userID string) (*models.EnrollmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[userID].Clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, rec *models.EnrollmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.UserID]; ok {
		return apperr.Msg("enrollment.MemoryStore.Create", apperr.Duplicate, "enrollment record already exists")
	}
	s.records[rec.UserID] = rec.Clone()
	return nil
}

func (s *MemoryStore) Update(_ context.Context, userID string, mutate func(*models.EnrollmentRecord)) (*models.EnrollmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, apperr.Msg("enrollment.MemoryStore.Update", apperr.NotFound, "enrollment record not found")
	}
	mutate(rec)
	return rec.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[userID]; !ok {
		return apperr.Msg("enrollment.MemoryStore.Delete", apperr.NotFound, "enrollment record not found")
	}
	delete(s.records, userID)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.EnrollmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EnrollmentRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// put overwrites the mirror copy of a durable record.
func (s *MemoryStore) put(rec *models.EnrollmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.UserID] = rec.Clone()
}

func (s *MemoryStore) remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
}
