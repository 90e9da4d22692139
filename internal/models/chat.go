package models

import (
	"time"

	"gorm.io/gorm"
)

// Chat is a saved conversation. Deleting a chat only sets DeletedAt so it
// can be restored within the undo window.
type Chat struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	ModelKey  string         `gorm:"size:255" json:"modelKey"`
	Mode      string         `gorm:"size:32" json:"mode"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	Messages []ChatMessage `gorm:"constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// ChatMessage is one turn of a chat. Attachments holds a comma separated
// list of attachment names, the bytes themselves are not persisted.
type ChatMessage struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ChatID      uint           `gorm:"not null;index" json:"chatId"`
	Role        string         `gorm:"size:16;not null" json:"role"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Attachments string         `gorm:"type:text" json:"attachments,omitempty"`
	Tokens      int            `json:"tokens"`
	CreatedAt   time.Time      `json:"createdAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}
