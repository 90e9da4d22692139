package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"promptforge/internal/models"
)

type MessageRepository interface {
	ListByChat(ctx context.Context, chatID uint) ([]models.ChatMessage, error)
	Create(ctx context.Context, msg *models.ChatMessage) error
	SoftDelete(ctx context.Context, id uint, at time.Time) error
	GetDeleted(ctx context.Context, id uint) (*models.ChatMessage, error)
	Restore(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) ListByChat(ctx context.Context, chatID uint) ([]models.ChatMessage, error) {
	var list []models.ChatMessage
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("listing messages of chat %d: %w", chatID, err)
	}
	return list, nil
}

func (r *messageRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ChatID == 0 {
		return fmt.Errorf("chat id is required")
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("creating message: %w", err)
	}
	return nil
}

func (r *messageRepository) SoftDelete(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.ChatMessage{}).Where("id = ?", id).UpdateColumn("deleted_at", at)
	if res.Error != nil {
		return fmt.Errorf("deleting message %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *messageRepository) GetDeleted(ctx context.Context, id uint) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	err := r.db.WithContext(ctx).Unscoped().Where("id = ? AND deleted_at IS NOT NULL", id).Take(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("deleted message %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting deleted message %d: %w", id, err)
	}
	return &msg, nil
}

func (r *messageRepository) Restore(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Unscoped().Model(&models.ChatMessage{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		UpdateColumn("deleted_at", gorm.Expr("NULL"))
	if res.Error != nil {
		return fmt.Errorf("restoring message %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deleted message %d: %w", id, ErrNotFound)
	}
	return nil
}
