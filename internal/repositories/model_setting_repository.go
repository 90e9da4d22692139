package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"promptforge/internal/models"
)

type ModelSettingRepository interface {
	List(ctx context.Context) ([]models.ModelSetting, error)
	Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error)
	SetProviderEnabled(ctx context.Context, provider string, keys []string, enabled bool) error
}

type modelSettingRepository struct {
	db *gorm.DB
}

func NewModelSettingRepository(db *gorm.DB) ModelSettingRepository {
	return &modelSettingRepository{db: db}
}

func (r *modelSettingRepository) List(ctx context.Context) ([]models.ModelSetting, error) {
	var settings []models.ModelSetting
	if err := r.db.WithContext(ctx).Order("provider, model_key").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("listing model settings: %w", err)
	}
	return settings, nil
}

func (r *modelSettingRepository) Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error) {
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	record := models.ModelSetting{
		ModelKey: modelKey,
		Provider: provider,
		Enabled:  enabled,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "model_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("saving setting for %s: %w", modelKey, err)
	}
	return &record, nil
}

// SetProviderEnabled writes a row for every key so models that had no
// setting yet follow the provider toggle too.
func (r *modelSettingRepository) SetProviderEnabled(ctx context.Context, provider string, keys []string, enabled bool) error {
	if provider == "" {
		return fmt.Errorf("provider is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range keys {
			record := models.ModelSetting{ModelKey: key, Provider: provider, Enabled: enabled}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "model_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
			}).Create(&record).Error; err != nil {
				return fmt.Errorf("saving setting for %s: %w", key, err)
			}
		}
		return nil
	})
}
