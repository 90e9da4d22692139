package mocks

import (
	"context"
	"time"

	"promptforge/internal/models"
)

type ChatRepositoryMock struct {
	GetFunc        func(ctx context.Context, id uint) (*models.Chat, error)
	GetDeletedFunc func(ctx context.Context, id uint) (*models.Chat, error)
	ListFunc       func(ctx context.Context) ([]*models.Chat, error)
	CreateFunc     func(ctx context.Context, chat *models.Chat) error
	RenameFunc     func(ctx context.Context, id uint, title string) error
	TouchFunc      func(ctx context.Context, id uint, at time.Time) error
	SoftDeleteFunc func(ctx context.Context, id uint, at time.Time) error
	RestoreFunc    func(ctx context.Context, id uint) error
	PurgeFunc      func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *ChatRepositoryMock) Get(ctx context.Context, id uint) (*models.Chat, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *ChatRepositoryMock) GetDeleted(ctx context.Context, id uint) (*models.Chat, error) {
	if m.GetDeletedFunc != nil {
		return m.GetDeletedFunc(ctx, id)
	}
	return nil, nil
}

func (m *ChatRepositoryMock) List(ctx context.Context) ([]*models.Chat, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Chat{}, nil
}

func (m *ChatRepositoryMock) Create(ctx context.Context, chat *models.Chat) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, chat)
	}
	return nil
}

func (m *ChatRepositoryMock) Rename(ctx context.Context, id uint, title string) error {
	if m.RenameFunc != nil {
		return m.RenameFunc(ctx, id, title)
	}
	return nil
}

func (m *ChatRepositoryMock) Touch(ctx context.Context, id uint, at time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, id, at)
	}
	return nil
}

func (m *ChatRepositoryMock) SoftDelete(ctx context.Context, id uint, at time.Time) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id, at)
	}
	return nil
}

func (m *ChatRepositoryMock) Restore(ctx context.Context, id uint) error {
	if m.RestoreFunc != nil {
		return m.RestoreFunc(ctx, id)
	}
	return nil
}

func (m *ChatRepositoryMock) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.PurgeFunc != nil {
		return m.PurgeFunc(ctx, cutoff)
	}
	return 0, nil
}
