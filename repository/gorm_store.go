package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yashrajoria/stripe-bridge/models"
)

// GormReplayStore keeps markers in the processed_webhook_events table.
// Rows past expires_at count as absent until PurgeExpired removes them.
type GormReplayStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormReplayStore(db *gorm.DB) *GormReplayStore {
	return &GormReplayStore{db: db, now: time.Now}
}

func (r *GormReplayStore) Exists(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProcessedEvent{}).
		Where("event_id = ? AND expires_at > ?", key, r.now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetWithTTL inserts the marker or refreshes an existing one.
func (r *GormReplayStore) SetWithTTL(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	row := r.row(key, ttl)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"processed_at", "expires_at"}),
		}).
		Create(&row).Error
}

// SetIfAbsent clears an expired marker for key, then inserts with
// ON CONFLICT DO NOTHING. Only the caller whose insert lands gets true.
func (r *GormReplayStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, ErrInvalidTTL
	}
	db := r.db.WithContext(ctx)

	if err := db.Where("event_id = ? AND expires_at <= ?", key, r.now().UTC()).
		Delete(&models.ProcessedEvent{}).Error; err != nil {
		return false, err
	}

	row := r.row(key, ttl)
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormReplayStore) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ?", key).
		Delete(&models.ProcessedEvent{}).Error
}

// PurgeExpired deletes markers whose TTL has passed.
func (r *GormReplayStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now().UTC()).
		Delete(&models.ProcessedEvent{})
	return res.RowsAffected, res.Error
}

func (r *GormReplayStore) row(key string, ttl time.Duration) models.ProcessedEvent {
	now := r.now().UTC()
	return models.ProcessedEvent{
		EventID:     key,
		ProcessedAt: now,
		ExpiresAt:   now.Add(ttl),
	}
}
