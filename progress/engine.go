// Package progress tracks completed lessons per identity and course and keeps
// working from a process-local mirror when the content store cannot be written.
package progress

import (
	"context"
	"slices"
	"time"

	"fstop/apperr"
	"fstop/models"
	"fstop/models/course"
	"fstop/utils"

	"go.uber.org/zap"
)

// CourseLookup resolves the course a record belongs to when its lesson
// total is needed.
type CourseLookup interface {
	CourseByID(ctx context.Context, id string) (*course.Course, error)
}

type Engine struct {
	durable Store
	local   *MemoryStore
	courses CourseLookup
	retry   utils.RetryPolicy
	log     *zap.Logger
	now     func() time.Time
}

func NewEngine(durable Store, local *MemoryStore, courses CourseLookup, retry utils.RetryPolicy, log *zap.Logger) *Engine {
	return &Engine{durable: durable, local: local, courses: courses, retry: retry, log: log, now: time.Now}
}

// GetProgress returns the record for the pair, or nil. Writes made locally
// while the durable store was down are pushed to it once it answers again.
func (e *Engine) GetProgress(ctx context.Context, userID, courseID string) (*models.ProgressRecord, error) {
	return e.find(ctx, "progress.GetProgress", userID, courseID, nil)
}

func (e *Engine) find(ctx context.Context, op, userID, courseID string, crs *course.Course) (*models.ProgressRecord, error) {
	stored, err := utils.Retry(ctx, e.retry, func(ctx context.Context) (*models.ProgressRecord, error) {
		return e.durable.Find(ctx, userID, courseID)
	})
	if err != nil {
		if !apperr.Is(err, apperr.UpstreamUnavailable) {
			return nil, err
		}
		e.fallback(op, err)
		return e.local.Find(ctx, userID, courseID)
	}

	local, err := e.local.Find(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	switch {
	case stored == nil && local == nil:
		return nil, nil
	case stored == nil && local.IsLocal():
		return e.promote(ctx, op, local)
	case stored == nil:
		// Mirror of a record that was deleted from the durable store.
		e.local.remove(local.ID)
		return nil, nil
	case local == nil:
		e.local.put(stored)
		return stored, nil
	default:
		return e.merge(ctx, op, stored, local, crs)
	}
}

// promote creates a locally created record in the durable store and mirrors
// the stored copy in its place.
func (e *Engine) promote(ctx context.Context, op string, local *models.ProgressRecord) (*models.ProgressRecord, error) {
	created, err := utils.Retry(ctx, e.retry, func(ctx context.Context) (*models.ProgressRecord, error) {
		return e.durable.Create(ctx, local)
	})
	switch {
	case err == nil:
		e.local.put(created)
		e.log.Info("progress record promoted to durable store",
			zap.String("op", op), zap.String("localId", local.ID), zap.String("id", created.ID))
		return created, nil
	case apperr.Is(err, apperr.UpstreamUnavailable):
		e.fallback(op, err)
		return local, nil
	default:
		return nil, err
	}
}

// merge reconciles the durable record with the mirror. Completed lessons
// are unioned; the mirror's current module wins when it was touched later.
func (e *Engine) merge(ctx context.Context, op string, stored, local *models.ProgressRecord, crs *course.Course) (*models.ProgressRecord, error) {
	var extra []string
	for _, id := range local.CompletedLessons {
		if !stored.HasCompleted(id) && !slices.Contains(extra, id) {
			extra = append(extra, id)
		}
	}
	moduleChanged := local.CurrentModule != "" && local.CurrentModule != stored.CurrentModule &&
		local.LastAccessed.After(stored.LastAccessed)
	if len(extra) == 0 && !moduleChanged {
		e.local.put(stored)
		return stored, nil
	}

	patch := models.ProgressPatch{LastAccessed: stored.LastAccessed}
	if local.LastAccessed.After(stored.LastAccessed) {
		patch.LastAccessed = local.LastAccessed
	}
	if moduleChanged {
		patch.CurrentModule = &local.CurrentModule
	}
	if len(extra) > 0 {
		union := append(append([]string{}, stored.CompletedLessons...), extra...)
		pct, err := e.percent(ctx, stored, local, union, crs)
		if err != nil {
			e.log.Warn("progress merge deferred, course lookup failed",
				zap.String("op", op), zap.String("courseId", stored.CourseID), zap.Error(err))
			return local, nil
		}
		patch.CompletedLessons = union
		patch.OverallProgress = &pct
	}

	updated, err := utils.Retry(ctx, e.retry, func(ctx context.Context) (*models.ProgressRecord, error) {
		return e.durable.Patch(ctx, stored.ID, patch)
	})
	switch {
	case err == nil:
		e.local.put(updated)
		e.log.Info("local progress merged into durable store",
			zap.String("op", op), zap.String("id", updated.ID), zap.Int("lessons", len(extra)))
		return updated, nil
	case apperr.Is(err, apperr.UpstreamUnavailable):
		e.fallback(op, err)
		return local, nil
	default:
		return nil, err
	}
}

// percent recomputes completion for union. When the mirror already holds
// every lesson its stored percentage is reused.
func (e *Engine) percent(ctx context.Context, stored, local *models.ProgressRecord, union []string, crs *course.Course) (int, error) {
	if len(union) == len(local.CompletedLessons) {
		return local.OverallProgress, nil
	}
	if crs == nil || crs.ID != stored.CourseID {
		if e.courses == nil {
			return 0, apperr.Msg("progress.percent", apperr.Internal, "no course lookup configured")
		}
		var err error
		crs, err = e.courses.CourseByID(ctx, stored.CourseID)
		if err != nil {
			return 0, err
		}
		if crs == nil {
			return 0, apperr.Msg("progress.percent", apperr.NotFound, "course not found")
		}
	}
	return CompletionPercent(len(union), crs.TotalLessons()), nil
}

// EnsureProgress returns the existing record or creates one seeded with the
// lowest-numbered module as the current module.
func (e *Engine) EnsureProgress(ctx context.Context, userID string, crs *course.Course) (*models.ProgressRecord, error) {
	const op = "progress.EnsureProgress"
	if userID == "" || crs == nil || crs.ID == "" {
		return nil, apperr.Msg(op, apperr.Validation, "user and course are required")
	}

	existing, err := e.find(ctx, op, userID, crs.ID, crs)
	if err != nil || existing != nil {
		return existing, err
	}

	at := e.now()
	rec := &models.ProgressRecord{
		UserID:           userID,
		CourseID:         crs.ID,
		CompletedLessons: []string{},
		CurrentModule:    crs.FirstModuleID(),
		LastAccessed:     at,
		EnrollmentDate:   at,
	}
	created, err := utils.Retry(ctx, e.retry, func(ctx context.Context) (*models.ProgressRecord, error) {
		return e.durable.Create(ctx, rec)
	})
	switch {
	case err == nil:
		e.local.put(created)
		return created, nil
	case apperr.Is(err, apperr.UpstreamUnavailable):
		e.fallback(op, err)
		return e.local.Create(ctx, rec)
	default:
		return nil, err
	}
}

// MarkLessonComplete adds lessonID to the completed set and recomputes the
// percentage against crs. Completing a lesson twice changes nothing but the
// last-accessed time.
func (e *Engine) MarkLessonComplete(ctx context.Context, progressID, lessonID string, crs *course.Course) (*models.ProgressRecord, error) {
	const op = "progress.MarkLessonComplete"
	if crs == nil || !crs.HasLesson(lessonID) {
		return nil, apperr.Msg(op, apperr.Validation, "lesson does not belong to this course")
	}

	current, err := e.load(ctx, op, progressID)
	if err != nil {
		return nil, err
	}

	completed := append([]string{}, current.CompletedLessons...)
	if !current.HasCompleted(lessonID) {
		completed = append(completed, lessonID)
	}
	pct := CompletionPercent(len(completed), crs.TotalLessons())

	return e.apply(ctx, op, current, models.ProgressPatch{
		CompletedLessons: completed,
		OverallProgress:  &pct,
		LastAccessed:     e.now(),
	})
}

// SetCurrentModule records the module the identity is working on.
func (e *Engine) SetCurrentModule(ctx context.Context, progressID, moduleID string) (*models.ProgressRecord, error) {
	const op = "progress.SetCurrentModule"
	if moduleID == "" {
		return nil, apperr.Msg(op, apperr.Validation, "module id is required")
	}

	current, err := e.load(ctx, op, progressID)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, op, current, models.ProgressPatch{
		CurrentModule: &moduleID,
		LastAccessed:  e.now(),
	})
}

func (e *Engine) load(ctx context.Context, op, progressID string) (*models.ProgressRecord, error) {
	if ref := (models.ProgressRecord{ID: progressID}); ref.IsLocal() {
		rec, err := e.local.Get(ctx, progressID)
		if err == nil && rec == nil {
			err = apperr.Msg(op, apperr.NotFound, "progress record not found")
		}
		return rec, err
	}

	rec, err := utils.Retry(ctx, e.retry, func(ctx context.Context) (*models.ProgressRecord, error) {
		return e.durable.Get(ctx, progressID)
	})
	if err != nil && apperr.Is(err, apperr.UpstreamUnavailable) {
		e.fallback(op, err)
		rec, err = e.local.Get(ctx, progressID)
	}
	if err == nil && rec == nil {
		err = apperr.Msg(op, apperr.NotFound, "progress record not found")
	}
	return rec, err
}

// apply writes patch durably unless the record is local-only or the durable
// write fails, in which case the mirror takes it.
func (e *Engine) apply(ctx context.Context, op string, current *models.ProgressRecord, patch models.ProgressPatch) (*models.ProgressRecord, error) {
	if !current.IsLocal() && current.Source != models.SourceLocalFallback {
		updated, err := utils.Retry(ctx, e.retry, func(ctx context.Context) (*models.ProgressRecord, error) {
			return e.durable.Patch(ctx, current.ID, patch)
		})
		if err == nil {
			e.local.put(updated)
			return updated, nil
		}
		if !apperr.Is(err, apperr.UpstreamUnavailable) {
			return nil, err
		}
		e.fallback(op, err)
		e.local.put(current)
	}
	return e.local.Patch(ctx, current.ID, patch)
}

func (e *Engine) fallback(op string, err error) {
	e.log.Warn("progress store unavailable, using local fallback",
		zap.String("op", op), zap.Error(err), zap.String("source", string(models.SourceLocalFallback)))
}
