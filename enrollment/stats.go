package enrollment

import (
	"context"
	"time"

	"fstop/models"

	"github.com/jinzhu/now"
)

// Stats summarises enrollment records for the admin dashboard.
type Stats struct {
	TotalUsers              int           `json:"totalUsers"`
	TotalEnrolled           int           `json:"totalEnrolled"`
	NewUsersThisMonth       int           `json:"newUsersThisMonth"`
	NewEnrollmentsThisMonth int           `json:"newEnrollmentsThisMonth"`
	ActiveUsersThisMonth    int           `json:"activeUsersThisMonth"`
	AdminCount              int           `json:"adminCount"`
	Source                  models.Source `json:"source"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	recs, src, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(recs, now.With(s.now()).BeginningOfMonth(), src), nil
}

func summarize(recs []models.EnrollmentRecord, monthStart time.Time, src models.Source) *Stats {
	st := &Stats{TotalUsers: len(recs), Source: src}
	for _, r := range recs {
		if r.Capabilities.Has(models.CapEnrolled) {
			st.TotalEnrolled++
			if r.EnrolledAt != nil && !r.EnrolledAt.Before(monthStart) {
				st.NewEnrollmentsThisMonth++
			}
		}
		if r.Capabilities.Has(models.CapAdmin) {
			st.AdminCount++
		}
		if !r.EnrollmentDate.Before(monthStart) {
			st.NewUsersThisMonth++
		}
		if !r.LastActivity.Before(monthStart) {
			st.ActiveUsersThisMonth++
		}
	}
	return st
}
