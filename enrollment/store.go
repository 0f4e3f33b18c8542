package enrollment

import (
	"context"

	"fstop/models"
)

// RecordStore persists enrollment records keyed by user id.
//
// Find returns (nil, nil) when no record exists. Update returns an
// apperr.NotFound error for a missing record and never creates one.
type RecordStore interface {
	Find(ctx context.Context, userID string) (*models.EnrollmentRecord, error)
	Create(ctx context.Context, rec *models.EnrollmentRecord) error
	Update(ctx context.Context, userID string, mutate func(*models.EnrollmentRecord)) (*models.EnrollmentRecord, error)
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]models.EnrollmentRecord, error)
	Ping(ctx context.Context) error
}
