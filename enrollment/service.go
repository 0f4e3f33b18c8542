// Package enrollment decides whether an identity may view gated content and
// owns the transitions of the per-identity enrollment record.
package enrollment

import (
	"context"
	"time"

	"fstop/apperr"
	"fstop/identity"
	"fstop/models"

	"go.uber.org/zap"
)

// Notifier is told about durable enrollments. Failures are logged only.
type Notifier interface {
	EnrollmentConfirmed(ctx context.Context, rec *models.EnrollmentRecord, courseID string) error
}

// Access is the outcome of an access check.
type Access struct {
	IsEnrolled     bool                    `json:"isEnrolled"`
	HasAccess      bool                    `json:"hasAccess"`
	Roles          []string                `json:"roles"`
	Status         models.EnrollmentStatus `json:"status,omitempty"`
	EnrollmentDate *time.Time              `json:"enrollmentDate,omitempty"`
	Source         models.Source           `json:"source"`
}

// Result is a record together with the store that served it.
type Result struct {
	Record *models.EnrollmentRecord `json:"record"`
	Source models.Source            `json:"source"`
}

type Options struct {
	// StrictCourseEntitlement requires explicit course membership instead of
	// accepting the global enrolled capability for any course.
	StrictCourseEntitlement bool
	Notifier                Notifier
	Now                     func() time.Time
}

type Service struct {
	sel      *Selector
	log      *zap.Logger
	strict   bool
	notifier Notifier
	now      func() time.Time
}

func NewService(sel *Selector, log *zap.Logger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		sel:      sel,
		log:      log,
		strict:   opts.StrictCourseEntitlement,
		notifier: opts.Notifier,
		now:      opts.Now,
	}
}

// Decide is the pure access decision over a record, which may be nil.
func Decide(rec *models.EnrollmentRecord, courseID string, strict bool) Access {
	if rec == nil {
		return Access{Roles: []string{}}
	}
	isEnrolled := rec.Capabilities.Has(models.CapEnrolled)
	entitled := isEnrolled
	if courseID != "" && strict {
		entitled = isEnrolled && rec.InCourse(courseID)
	}
	date := rec.EnrollmentDate
	return Access{
		IsEnrolled:     isEnrolled,
		HasAccess:      entitled && rec.Status == models.StatusActive,
		Roles:          rec.Capabilities.Tags(),
		Status:         rec.Status,
		EnrollmentDate: &date,
	}
}

// CheckAccess never fails for a missing record; it reports no access instead.
func (s *Service) CheckAccess(ctx context.Context, userID, courseID string) (*Access, error) {
	res, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	access := Decide(res.Record, courseID, s.strict)
	access.Source = res.Source
	return &access, nil
}

// Get returns the record for userID. Result.Record is nil when none exists.
func (s *Service) Get(ctx context.Context, userID string) (*Result, error) {
	rec, src, err := run(ctx, s.sel, "enrollment.Get", func(ctx context.Context, st RecordStore) (*models.EnrollmentRecord, error) {
		return st.Find(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	if src == models.SourcePrimary {
		if rec != nil {
			s.sel.local.put(rec)
		} else {
			s.sel.local.remove(userID)
		}
	}
	return &Result{Record: rec, Source: src}, nil
}

// Initialize creates a pending record on first visit and otherwise only
// refreshes the last-activity timestamp.
func (s *Service) Initialize(ctx context.Context, userID, email string, displayName *string) (*Result, error) {
	const op = "enrollment.Initialize"
	if userID == "" {
		return nil, apperr.Msg(op, apperr.Validation, "user id is required")
	}

	at := s.now()
	rec, src, err := run(ctx, s.sel, op, func(ctx context.Context, st RecordStore) (*models.EnrollmentRecord, error) {
		existing, err := st.Find(ctx, userID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			fresh := models.NewEnrollmentRecord(userID, email, displayName, at)
			err := st.Create(ctx, fresh)
			if err == nil {
				return fresh, nil
			}
			if !apperr.Is(err, apperr.Duplicate) {
				return nil, err
			}
		}
		return st.Update(ctx, userID, func(r *models.EnrollmentRecord) { r.LastActivity = at })
	})
	return s.finish(rec, src, err)
}

func (s *Service) AddCapability(ctx context.Context, userID string, c models.Capability) (*Result, error) {
	return s.mutate(ctx, "enrollment.AddCapability", userID, func(r *models.EnrollmentRecord) {
		r.Capabilities = r.Capabilities.With(c)
	})
}

func (s *Service) RemoveCapability(ctx context.Context, userID string, c models.Capability) (*Result, error) {
	return s.mutate(ctx, "enrollment.RemoveCapability", userID, func(r *models.EnrollmentRecord) {
		r.Capabilities = r.Capabilities.Without(c)
	})
}

// EnrollInCourse grants full access: course membership, the enrolled
// capability and active status in one write.
func (s *Service) EnrollInCourse(ctx context.Context, userID, courseID string) (*Result, error) {
	const op = "enrollment.EnrollInCourse"
	if courseID == "" {
		return nil, apperr.Msg(op, apperr.Validation, "course id is required")
	}

	at := s.now()
	var newlyAdded bool
	res, err := s.mutate(ctx, op, userID, func(r *models.EnrollmentRecord) {
		newlyAdded = !r.InCourse(courseID)
		r.AddCourse(courseID)
		r.Capabilities = r.Capabilities.With(models.CapEnrolled)
		r.Status = models.StatusActive
		r.LastActivity = at
		if r.EnrolledAt == nil {
			r.EnrolledAt = &at
		}
	})
	if err != nil {
		return nil, err
	}

	if newlyAdded && res.Source == models.SourcePrimary && s.notifier != nil {
		if nerr := s.notifier.EnrollmentConfirmed(ctx, res.Record, courseID); nerr != nil {
			s.log.Warn("enrollment notification failed", zap.String("userId", userID), zap.Error(nerr))
		}
	}
	return res, nil
}

// SetStatus changes status only. Capabilities and course membership are kept
// so that an inactive record still shows its enrollment history.
func (s *Service) SetStatus(ctx context.Context, userID string, status models.EnrollmentStatus) (*Result, error) {
	const op = "enrollment.SetStatus"
	if !status.Valid() {
		return nil, apperr.Msg(op, apperr.Validation, "invalid enrollment status")
	}
	return s.mutate(ctx, op, userID, func(r *models.EnrollmentRecord) {
		r.Status = status
	})
}

// List returns every record from the active store.
func (s *Service) List(ctx context.Context) ([]models.EnrollmentRecord, models.Source, error) {
	recs, src, err := run(ctx, s.sel, "enrollment.List", func(ctx context.Context, st RecordStore) ([]models.EnrollmentRecord, error) {
		return st.List(ctx)
	})
	if err != nil {
		return nil, src, err
	}
	if recs == nil {
		recs = []models.EnrollmentRecord{}
	}
	return recs, src, nil
}

// Delete removes a record. It exists for admin tooling only.
func (s *Service) Delete(ctx context.Context, userID string) (models.Source, error) {
	_, src, err := run(ctx, s.sel, "enrollment.Delete", func(ctx context.Context, st RecordStore) (struct{}, error) {
		return struct{}{}, st.Delete(ctx, userID)
	})
	if err == nil && src == models.SourcePrimary {
		s.sel.local.remove(userID)
	}
	return src, err
}

// Subscribe initializes a record whenever an identity signs in.
func (s *Service) Subscribe(events *identity.Events) (unsubscribe func()) {
	return events.Subscribe(func(ev identity.Event) {
		if ev.Kind != identity.SignedIn || ev.Identity == nil {
			return
		}
		id := ev.Identity
		if _, err := s.Initialize(ev.Context(), id.UID, id.Email, id.DisplayNamePtr()); err != nil {
			s.log.Warn("enrollment initialize on sign-in failed", zap.String("userId", id.UID), zap.Error(err))
		}
	})
}

func (s *Service) mutate(ctx context.Context, op, userID string, fn func(*models.EnrollmentRecord)) (*Result, error) {
	if userID == "" {
		return nil, apperr.Msg(op, apperr.Validation, "user id is required")
	}
	rec, src, err := run(ctx, s.sel, op, func(ctx context.Context, st RecordStore) (*models.EnrollmentRecord, error) {
		return st.Update(ctx, userID, fn)
	})
	return s.finish(rec, src, err)
}

func (s *Service) finish(rec *models.EnrollmentRecord, src models.Source, err error) (*Result, error) {
	if err != nil {
		return nil, err
	}
	if src == models.SourcePrimary {
		s.sel.local.put(rec)
	}
	return &Result{Record: rec, Source: src}, nil
}
