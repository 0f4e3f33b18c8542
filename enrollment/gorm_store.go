package enrollment

import (
	"context"
	"errors"

	"fstop/apperr"
	"fstop/models"

	"gorm.io/gorm"
)

// GormStore is the durable record store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Find(ctx context.Context, userID string) (*models.EnrollmentRecord, error) {
	var rec models.EnrollmentRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("enrollment.GormStore.Find", err)
	}
	return &rec, nil
}

func (s *GormStore) Create(ctx context.Context, rec *models.EnrollmentRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return storeErr("enrollment.GormStore.Create", err)
	}
	return nil
}

// Update loads, mutates and saves the record inside one transaction.
func (s *GormStore) Update(ctx context.Context, userID string, mutate func(*models.EnrollmentRecord)) (*models.EnrollmentRecord, error) {
	const op = "enrollment.GormStore.Update"

	var rec models.EnrollmentRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&rec).Error; err != nil {
			return err
		}
		mutate(&rec)
		return tx.Save(&rec).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Msg(op, apperr.NotFound, "enrollment record not found")
	}
	if err != nil {
		return nil, storeErr(op, err)
	}
	return &rec, nil
}

// Delete removes the row outright. Only admin tooling calls it.
func (s *GormStore) Delete(ctx context.Context, userID string) error {
	res := s.db.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&models.EnrollmentRecord{})
	if res.Error != nil {
		return storeErr("enrollment.GormStore.Delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Msg("enrollment.GormStore.Delete", apperr.NotFound, "enrollment record not found")
	}
	return nil
}

func (s *GormStore) List(ctx context.Context) ([]models.EnrollmentRecord, error) {
	var recs []models.EnrollmentRecord
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&recs).Error; err != nil {
		return nil, storeErr("enrollment.GormStore.List", err)
	}
	return recs, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storeErr("enrollment.GormStore.Ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return storeErr("enrollment.GormStore.Ping", err)
	}
	return nil
}

// storeErr classifies a gorm failure. Anything that is not a constraint
// violation is treated as the database being unavailable.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.E(op, apperr.Duplicate, err)
	case errors.Is(err, context.Canceled):
		return apperr.E(op, apperr.Internal, err)
	default:
		return apperr.E(op, apperr.UpstreamUnavailable, err)
	}
}
