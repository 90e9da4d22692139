package models

import "time"

// KVEntry is a small persisted value, such as a remembered import root.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
