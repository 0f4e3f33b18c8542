package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// EnrollmentStatus is the access status of an enrollment record.
type EnrollmentStatus string

const (
	StatusActive   EnrollmentStatus = "active"
	StatusInactive EnrollmentStatus = "inactive"
	StatusPending  EnrollmentStatus = "pending"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	default:
		return false
	}
}

// EnrollmentRecord is the per-identity enrollment state. One row per identity.
type EnrollmentRecord struct {
	ID              uint                        `json:"-" gorm:"primaryKey"`
	UserID          string                      `json:"userId" gorm:"uniqueIndex;size:128;not null"`
	Email           string                      `json:"email" gorm:"size:320"`
	DisplayName     *string                     `json:"displayName"`
	Capabilities    CapabilitySet               `json:"roles" gorm:"not null;default:0"`
	EnrolledCourses datatypes.JSONSlice[string] `json:"enrolledCourses"`
	Status          EnrollmentStatus            `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	EnrollmentDate  time.Time                   `json:"enrollmentDate"`
	EnrolledAt      *time.Time                  `json:"enrolledAt,omitempty"`
	LastActivity    time.Time                   `json:"lastActivity"`
	CreatedAt       time.Time                   `json:"-"`
	UpdatedAt       time.Time                   `json:"-"`
}

func (EnrollmentRecord) TableName() string { return "user_enrollments" }

// NewEnrollmentRecord returns a pending record with empty capability and course sets.
func NewEnrollmentRecord(userID, email string, displayName *string, at time.Time) *EnrollmentRecord {
	return &EnrollmentRecord{
		UserID:          userID,
		Email:           email,
		DisplayName:     displayName,
		EnrolledCourses: datatypes.JSONSlice[string]{},
		Status:          StatusPending,
		EnrollmentDate:  at,
		LastActivity:    at,
	}
}

// InCourse reports explicit membership of courseID in the enrolled-course set.
func (r *EnrollmentRecord) InCourse(courseID string) bool {
	return slices.Contains(r.EnrolledCourses, courseID)
}

// AddCourse inserts courseID into the enrolled-course set if absent.
func (r *EnrollmentRecord) AddCourse(courseID string) {
	if !r.InCourse(courseID) {
		r.EnrolledCourses = append(r.EnrolledCourses, courseID)
	}
}

// Clone returns a deep copy safe to hand to another store.
func (r *EnrollmentRecord) Clone() *EnrollmentRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.EnrolledCourses = append(datatypes.JSONSlice[string]{}, r.EnrolledCourses...)
	if r.DisplayName != nil {
		name := *r.DisplayName
		c.DisplayName = &name
	}
	if r.EnrolledAt != nil {
		at := *r.EnrolledAt
		c.EnrolledAt = &at
	}
	return &c
}
