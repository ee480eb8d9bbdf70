package stor

import (
	"fmt"
	"time"

	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"gorm.io/gorm"
)

type GormSyncRequestStor struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormSyncRequestStor(db *gorm.DB) *GormSyncRequestStor {
	return &GormSyncRequestStor{db: db, now: time.Now}
}

func (s *GormSyncRequestStor) GetSyncRequestByID(id string) (*model.SyncRequest, error) {
	var r model.SyncRequest
	if err := s.db.Where("fd_id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}

	return &r, nil
}

func (s *GormSyncRequestStor) ListSyncRequests() ([]model.SyncRequest, error) {
	var requests []model.SyncRequest
	err := s.db.Order("fd_id").Find(&requests).Error
	return requests, err
}

func (s *GormSyncRequestStor) ListSyncRequestsByStage(stage model.Stage) ([]model.SyncRequest, error) {
	var requests []model.SyncRequest
	err := s.db.Where("status = ?", stage).Order("fd_id").Find(&requests).Error
	return requests, err
}

func (s *GormSyncRequestStor) ListSyncRequestsWithSamples(stage model.Stage) ([]model.SyncRequest, error) {
	var requests []model.SyncRequest
	err := s.db.
		Where("status = ?", stage).
		Where("num_samples >= ?", 1).
		Order("fd_id").
		Find(&requests).Error
	return requests, err
}

func (s *GormSyncRequestStor) ListSyncRequestsMissingSampleCount(stage model.Stage) ([]model.SyncRequest, error) {
	var requests []model.SyncRequest
	err := s.db.
		Where("status = ?", stage).
		Where("num_samples IS NULL").
		Order("fd_id").
		Find(&requests).Error
	return requests, err
}

func (s *GormSyncRequestStor) UpdateSyncRequest(id string, stage model.Stage, update model.SyncRequestUpdate) error {
	columns := update.Columns()
	if len(columns) == 0 {
		return nil
	}

	return WithTxRetry(s.db, func(tx *gorm.DB) error {
		result := tx.Model(&model.SyncRequest{}).
			Where("fd_id = ?", id).
			Where("status = ?", stage).
			Updates(columns)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s is not in stage %q", ErrStageMismatch, id, stage)
		}

		return nil
	})
}

func (s *GormSyncRequestStor) TransitionSyncRequest(id string, from, to model.Stage, update model.SyncRequestUpdate) (*model.SyncRequest, error) {
	if !model.CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}

	var updated model.SyncRequest

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		var current model.SyncRequest
		if err := tx.Where("fd_id = ?", id).First(&current).Error; err != nil {
			return err
		}

		if current.Stage != from {
			return fmt.Errorf("%w: %s is in stage %q, expected %q", ErrStageMismatch, id, current.Stage, from)
		}

		now := s.now()
		columns := update.Columns()
		columns["status"] = string(to)
		columns["sync_timestamp"] = now
		columns["updated_at"] = now

		result := tx.Model(&model.SyncRequest{}).
			Where("fd_id = ?", id).
			Where("status = ?", from).
			Updates(columns)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s left stage %q during the update", ErrStageMismatch, id, from)
		}

		update.ApplyTo(&current)
		current.Stage = to
		current.SyncTimestamp = &now
		current.UpdatedAt = &now
		updated = current

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &updated, nil
}
