package progress

import (
	"context"
	"sync"
	"time"

	"fstop/apperr"
	"fstop/cms"
	"fstop/models"

	"github.com/google/uuid"
)

// Store persists progress records. Find and Get return (nil, nil) when the
// record does not exist; Patch returns NotFound.
type Store interface {
	Find(ctx context.Context, userID, courseID string) (*models.ProgressRecord, error)
	Get(ctx context.Context, id string) (*models.ProgressRecord, error)
	Create(ctx context.Context, rec *models.ProgressRecord) (*models.ProgressRecord, error)
	Patch(ctx context.Context, id string, patch models.ProgressPatch) (*models.ProgressRecord, error)
}

// ContentStore is the subset of the content client used for progress documents.
type ContentStore interface {
	ProgressByUserAndCourse(ctx context.Context, userID, courseID string) (*models.ProgressRecord, error)
	ProgressByID(ctx context.Context, id string) (*models.ProgressRecord, error)
	Create(ctx context.Context, doc cms.Document) (string, error)
	Patch(ctx context.Context, id string, set map[string]any, out any) error
}

// CMSStore keeps progress as userProgress documents in the content store.
type CMSStore struct {
	content ContentStore
}

func NewCMSStore(content ContentStore) *CMSStore {
	return &CMSStore{content: content}
}

func (s *CMSStore) Find(ctx context.Context, userID, courseID string) (*models.ProgressRecord, error) {
	return s.content.ProgressByUserAndCourse(ctx, userID, courseID)
}

func (s *CMSStore) Get(ctx context.Context, id string) (*models.ProgressRecord, error) {
	return s.content.ProgressByID(ctx, id)
}

func (s *CMSStore) Create(ctx context.Context, rec *models.ProgressRecord) (*models.ProgressRecord, error) {
	out := rec.Clone()
	if out.ID == "" || out.IsLocal() {
		out.ID = uuid.NewString()
	}
	doc := cms.Document{
		"_id":              out.ID,
		"_type":            "userProgress",
		"userId":           out.UserID,
		"courseId":         out.CourseID,
		"completedLessons": out.CompletedLessons,
		"overallProgress":  out.OverallProgress,
		"lastAccessed":     out.LastAccessed.UTC().Format(time.RFC3339),
		"enrollmentDate":   out.EnrollmentDate.UTC().Format(time.RFC3339),
	}
	if out.CurrentModule != "" {
		doc["currentModule"] = out.CurrentModule
	}
	id, err := s.content.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	if id != "" {
		out.ID = id
	}
	out.Source = models.SourcePrimary
	return out, nil
}

func (s *CMSStore) Patch(ctx context.Context, id string, patch models.ProgressPatch) (*models.ProgressRecord, error) {
	set := map[string]any{}
	if patch.CompletedLessons != nil {
		set["completedLessons"] = patch.CompletedLessons
	}
	if patch.OverallProgress != nil {
		set["overallProgress"] = *patch.OverallProgress
	}
	if patch.CurrentModule != nil {
		set["currentModule"] = *patch.CurrentModule
	}
	if !patch.LastAccessed.IsZero() {
		set["lastAccessed"] = patch.LastAccessed.UTC().Format(time.RFC3339)
	}

	var out models.ProgressRecord
	if err := s.content.Patch(ctx, id, set, &out); err != nil {
		return nil, err
	}
	out.Source = models.SourcePrimary
	return &out, nil
}

// MemoryStore is the process-local progress mirror.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*models.ProgressRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*models.ProgressRecord)}
}

func (s *MemoryStore) Find(_ context.Context, userID, courseID string) (*models.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.byID {
		if rec.UserID == userID && rec.CourseID == courseID {
			return s.out(rec), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return s.out(rec), nil
}

// Create stores rec under a new local id.
func (s *MemoryStore) Create(_ context.Context, rec *models.ProgressRecord) (*models.ProgressRecord, error) {
	c := rec.Clone()
	c.ID = models.LocalIDPrefix + uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[c.ID] = c
	return s.out(c), nil
}

func (s *MemoryStore) Patch(_ context.Context, id string, patch models.ProgressPatch) (*models.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, apperr.Msg("progress.MemoryStore.Patch", apperr.NotFound, "progress record not found")
	}
	patch.Apply(rec)
	return s.out(rec), nil
}

// put mirrors a durable record, replacing any local copy for the same pair.
func (s *MemoryStore) put(rec *models.ProgressRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.byID {
		if id != rec.ID && existing.UserID == rec.UserID && existing.CourseID == rec.CourseID {
			delete(s.byID, id)
		}
	}
	s.byID[rec.ID] = rec.Clone()
}

func (s *MemoryStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

func (s *MemoryStore) out(rec *models.ProgressRecord) *models.ProgressRecord {
	c := rec.Clone()
	c.Source = models.SourceLocalFallback
	return c
}
