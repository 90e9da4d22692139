package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"promptforge/internal/models"
)

var ErrNotFound = errors.New("record not found")

type ChatRepository interface {
	Get(ctx context.Context, id uint) (*models.Chat, error)
	// GetDeleted returns a soft deleted chat; live chats are not found.
	GetDeleted(ctx context.Context, id uint) (*models.Chat, error)
	List(ctx context.Context) ([]*models.Chat, error)
	Create(ctx context.Context, chat *models.Chat) error
	Rename(ctx context.Context, id uint, title string) error
	Touch(ctx context.Context, id uint, at time.Time) error
	// SoftDelete marks the chat and its live messages deleted at at.
	SoftDelete(ctx context.Context, id uint, at time.Time) error
	// Restore clears the tombstone of the chat and of the messages that
	// were deleted together with it.
	Restore(ctx context.Context, id uint) error
	// Purge removes chats and messages deleted before cutoff for good.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Get(ctx context.Context, id uint) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).First(&chat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("chat %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting chat %d: %w", id, err)
	}
	return &chat, nil
}

func (r *chatRepository) GetDeleted(ctx context.Context, id uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).Unscoped().
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Take(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("deleted chat %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting deleted chat %d: %w", id, err)
	}
	return &chat, nil
}

func (r *chatRepository) List(ctx context.Context) ([]*models.Chat, error) {
	var list []*models.Chat
	if err := r.db.WithContext(ctx).Order("updated_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	return list, nil
}

func (r *chatRepository) Create(ctx context.Context, chat *models.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("creating chat: %w", err)
	}
	return nil
}

func (r *chatRepository) Rename(ctx context.Context, id uint, title string) error {
	res := r.db.WithContext(ctx).Model(&models.Chat{}).Where("id = ?", id).Update("title", title)
	if res.Error != nil {
		return fmt.Errorf("renaming chat %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("chat %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *chatRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Chat{}).Where("id = ?", id).UpdateColumn("updated_at", at)
	if res.Error != nil {
		return fmt.Errorf("touching chat %d: %w", id, res.Error)
	}
	return nil
}

func (r *chatRepository) SoftDelete(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Chat{}).Where("id = ?", id).UpdateColumn("deleted_at", at)
		if res.Error != nil {
			return fmt.Errorf("deleting chat %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("chat %d: %w", id, ErrNotFound)
		}
		if err := tx.Model(&models.ChatMessage{}).Where("chat_id = ?", id).
			UpdateColumn("deleted_at", at).Error; err != nil {
			return fmt.Errorf("deleting messages of chat %d: %w", id, err)
		}
		return nil
	})
}

func (r *chatRepository) Restore(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chat models.Chat
		if err := tx.Unscoped().Where("id = ? AND deleted_at IS NOT NULL", id).Take(&chat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("deleted chat %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("restoring chat %d: %w", id, err)
		}
		var deleted []models.ChatMessage
		if err := tx.Unscoped().Where("chat_id = ? AND deleted_at IS NOT NULL", id).Find(&deleted).Error; err != nil {
			return fmt.Errorf("loading messages of chat %d: %w", id, err)
		}
		var ids []uint
		for _, m := range deleted {
			if m.DeletedAt.Time.Equal(chat.DeletedAt.Time) {
				ids = append(ids, m.ID)
			}
		}
		if len(ids) > 0 {
			if err := tx.Unscoped().Model(&models.ChatMessage{}).Where("id IN ?", ids).
				UpdateColumn("deleted_at", gorm.Expr("NULL")).Error; err != nil {
				return fmt.Errorf("restoring messages of chat %d: %w", id, err)
			}
		}
		if err := tx.Unscoped().Model(&models.Chat{}).Where("id = ?", id).
			UpdateColumn("deleted_at", gorm.Expr("NULL")).Error; err != nil {
			return fmt.Errorf("restoring chat %d: %w", id, err)
		}
		return nil
	})
}

func (r *chatRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Unscoped().Model(&models.Chat{}).
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("finding expired chats: %w", err)
		}
		if len(ids) > 0 {
			if err := tx.Unscoped().Where("chat_id IN ?", ids).Delete(&models.ChatMessage{}).Error; err != nil {
				return fmt.Errorf("purging messages: %w", err)
			}
			res := tx.Unscoped().Where("id IN ?", ids).Delete(&models.Chat{})
			if res.Error != nil {
				return fmt.Errorf("purging chats: %w", res.Error)
			}
			purged = res.RowsAffected
		}
		if err := tx.Unscoped().Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Delete(&models.ChatMessage{}).Error; err != nil {
			return fmt.Errorf("purging messages: %w", err)
		}
		return nil
	})
	return purged, err
}
