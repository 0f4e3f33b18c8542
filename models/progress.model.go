package models

import (
	"slices"
	"strings"
	"time"
)

// Source tells callers which store served a result, so the UI can warn that
// changes may not persist.
type Source string

const (
	SourcePrimary       Source = "primary-store"
	SourceLocalFallback Source = "local-fallback"
)

// LocalIDPrefix marks progress ids that were never created in the durable store.
const LocalIDPrefix = "local."

// ProgressRecord tracks completed lessons for one (identity, course) pair.
type ProgressRecord struct {
	ID               string    `json:"_id,omitempty"`
	UserID           string    `json:"userId"`
	CourseID         string    `json:"courseId"`
	CompletedLessons []string  `json:"completedLessons"`
	CurrentModule    string    `json:"currentModule,omitempty"`
	OverallProgress  int       `json:"overallProgress"`
	LastAccessed     time.Time `json:"lastAccessed"`
	EnrollmentDate   time.Time `json:"enrollmentDate"`
	Source           Source    `json:"source,omitempty"`
}

// IsLocal reports whether the record has no durable identifier.
func (p *ProgressRecord) IsLocal() bool {
	return p.ID == "" || strings.HasPrefix(p.ID, LocalIDPrefix)
}

func (p *ProgressRecord) HasCompleted(lessonID string) bool {
	return slices.Contains(p.CompletedLessons, lessonID)
}

func (p *ProgressRecord) Clone() *ProgressRecord {
	if p == nil {
		return nil
	}
	c := *p
	c.CompletedLessons = append([]string{}, p.CompletedLessons...)
	return &c
}

// ProgressPatch is the set of fields written in one atomic patch.
type ProgressPatch struct {
	CompletedLessons []string
	OverallProgress  *int
	CurrentModule    *string
	LastAccessed     time.Time
}

// Apply writes the patch onto p.
func (pp ProgressPatch) Apply(p *ProgressRecord) {
	if pp.CompletedLessons != nil {
		p.CompletedLessons = append([]string{}, pp.CompletedLessons...)
	}
	if pp.OverallProgress != nil {
		p.OverallProgress = *pp.OverallProgress
	}
	if pp.CurrentModule != nil {
		p.CurrentModule = *pp.CurrentModule
	}
	if !pp.LastAccessed.IsZero() {
		p.LastAccessed = pp.LastAccessed
	}
}
