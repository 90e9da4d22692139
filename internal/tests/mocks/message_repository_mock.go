package mocks

import (
	"context"
	"time"

	"promptforge/internal/models"
)

type MessageRepositoryMock struct {
	ListByChatFunc func(ctx context.Context, chatID uint) ([]models.ChatMessage, error)
	CreateFunc     func(ctx context.Context, msg *models.ChatMessage) error
	SoftDeleteFunc func(ctx context.Context, id uint, at time.Time) error
	GetDeletedFunc func(ctx context.Context, id uint) (*models.ChatMessage, error)
	RestoreFunc    func(ctx context.Context, id uint) error
}

func (m *MessageRepositoryMock) ListByChat(ctx context.Context, chatID uint) ([]models.ChatMessage, error) {
	if m.ListByChatFunc != nil {
		return m.ListByChatFunc(ctx, chatID)
	}
	return []models.ChatMessage{}, nil
}

func (m *MessageRepositoryMock) Create(ctx context.Context, msg *models.ChatMessage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, msg)
	}
	return nil
}

func (m *MessageRepositoryMock) SoftDelete(ctx context.Context, id uint, at time.Time) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id, at)
	}
	return nil
}

func (m *MessageRepositoryMock) GetDeleted(ctx context.Context, id uint) (*models.ChatMessage, error) {
	if m.GetDeletedFunc != nil {
		return m.GetDeletedFunc(ctx, id)
	}
	return nil, nil
}

func (m *MessageRepositoryMock) Restore(ctx context.Context, id uint) error {
	if m.RestoreFunc != nil {
		return m.RestoreFunc(ctx, id)
	}
	return nil
}
