package courseController

import (
	"context"

	"fstop/enrollment"
	"fstop/models"
	"fstop/models/course"
)

type ContentReader interface {
	Courses(ctx context.Context) ([]course.Course, error)
	CourseBySlug(ctx context.Context, slug string) (*course.Course, error)
	LessonPage(ctx context.Context, slug string) (*course.LessonPage, error)
}

type ProgressTracker interface {
	GetProgress(ctx context.Context, userID, courseID string) (*models.ProgressRecord, error)
	EnsureProgress(ctx context.Context, userID string, crs *course.Course) (*models.ProgressRecord, error)
}

type AccessChecker interface {
	CheckAccess(ctx context.Context, userID, courseID string) (*enrollment.Access, error)
}
