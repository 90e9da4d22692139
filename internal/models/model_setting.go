package models

import "time"

// ModelSetting records whether a catalog model is offered for selection.
// Models without a row are enabled.
type ModelSetting struct {
	ModelKey  string `gorm:"primaryKey;size:255"`
	Provider  string `gorm:"size:50;not null;index"`
	Enabled   bool   `gorm:"not null"`
	UpdatedAt time.Time
}
