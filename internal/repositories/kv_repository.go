package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"promptforge/internal/models"
)

// KVRepository stores small string values by key.
type KVRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type kvRepository struct {
	db *gorm.DB
}

func NewKVRepository(db *gorm.DB) KVRepository {
	return &kvRepository{db: db}
}

func (r *kvRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}
	var entry models.KVEntry
	if err := r.db.WithContext(ctx).Where(&models.KVEntry{Key: key}).Take(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting %q: %w", key, err)
	}
	return entry.Value, true, nil
}

func (r *kvRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	entry := models.KVEntry{Key: key, Value: value}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

func (r *kvRepository) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := r.db.WithContext(ctx).Where(&models.KVEntry{Key: key}).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}
