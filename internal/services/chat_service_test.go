package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"promptforge/internal/models"
	"promptforge/internal/repositories"
	"promptforge/internal/tests/mocks"
)

func fixedClock(svc ChatService, at time.Time) {
	svc.(*chatService).now = func() time.Time { return at }
}

func TestChatService_Create_DefaultsTitle(t *testing.T) {
	repo := &mocks.ChatRepositoryMock{
		CreateFunc: func(ctx context.Context, c *models.Chat) error {
			c.ID = 7
			return nil
		},
	}
	svc := NewChatService(repo, &mocks.MessageRepositoryMock{}, 0)

	chat, err := svc.Create(context.Background(), "   ", "gemini|gemini-2.5-flash", "code")
	require.NoError(t, err)
	assert.Equal(t, uint(7), chat.ID)
	assert.Equal(t, "New chat", chat.Title)
	assert.Equal(t, "code", chat.Mode)
}

func TestChatService_Get_IncludesMessages(t *testing.T) {
	repo := &mocks.ChatRepositoryMock{
		GetFunc: func(ctx context.Context, id uint) (*models.Chat, error) {
			return &models.Chat{ID: id, Title: "t"}, nil
		},
	}
	msgs := &mocks.MessageRepositoryMock{
		ListByChatFunc: func(ctx context.Context, chatID uint) ([]models.ChatMessage, error) {
			return []models.ChatMessage{{ID: 1, ChatID: chatID, Role: "user", Content: "hi"}}, nil
		},
	}
	svc := NewChatService(repo, msgs, 0)

	chat, err := svc.Get(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, uint(3), chat.Messages[0].ChatID)
}

func TestChatService_Rename_RequiresTitle(t *testing.T) {
	svc := NewChatService(&mocks.ChatRepositoryMock{}, &mocks.MessageRepositoryMock{}, 0)
	err := svc.Rename(context.Background(), 1, " ")
	assert.EqualError(t, err, "title is required")
}

func TestChatService_Undo_WithinWindow(t *testing.T) {
	deletedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	restored := false
	repo := &mocks.ChatRepositoryMock{
		GetDeletedFunc: func(ctx context.Context, id uint) (*models.Chat, error) {
			return &models.Chat{ID: id, DeletedAt: gorm.DeletedAt{Time: deletedAt, Valid: true}}, nil
		},
		RestoreFunc: func(ctx context.Context, id uint) error {
			restored = true
			return nil
		},
	}
	svc := NewChatService(repo, &mocks.MessageRepositoryMock{}, 30*time.Minute)
	fixedClock(svc, deletedAt.Add(29*time.Minute))

	require.NoError(t, svc.Undo(context.Background(), 1))
	assert.True(t, restored)
}

func TestChatService_Undo_Expired(t *testing.T) {
	deletedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := &mocks.ChatRepositoryMock{
		GetDeletedFunc: func(ctx context.Context, id uint) (*models.Chat, error) {
			return &models.Chat{ID: id, DeletedAt: gorm.DeletedAt{Time: deletedAt, Valid: true}}, nil
		},
		RestoreFunc: func(ctx context.Context, id uint) error {
			t.Fatal("restore must not run after the window")
			return nil
		},
	}
	svc := NewChatService(repo, &mocks.MessageRepositoryMock{}, 30*time.Minute)
	fixedClock(svc, deletedAt.Add(31*time.Minute))

	err := svc.Undo(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUndoExpired)
}

func TestChatService_Undo_NotDeleted(t *testing.T) {
	repo := &mocks.ChatRepositoryMock{
		GetDeletedFunc: func(ctx context.Context, id uint) (*models.Chat, error) {
			return nil, repositories.ErrNotFound
		},
	}
	svc := NewChatService(repo, &mocks.MessageRepositoryMock{}, 0)
	assert.ErrorIs(t, svc.Undo(context.Background(), 1), repositories.ErrNotFound)
}

func TestChatService_Delete_UsesClock(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	var got time.Time
	repo := &mocks.ChatRepositoryMock{
		SoftDeleteFunc: func(ctx context.Context, id uint, at time.Time) error {
			got = at
			return nil
		},
	}
	svc := NewChatService(repo, &mocks.MessageRepositoryMock{}, 0)
	fixedClock(svc, now)

	require.NoError(t, svc.Delete(context.Background(), 2))
	assert.Equal(t, now, got)
}

func TestChatService_Purge_UsesCutoff(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	var cutoff time.Time
	repo := &mocks.ChatRepositoryMock{
		PurgeFunc: func(ctx context.Context, c time.Time) (int64, error) {
			cutoff = c
			return 2, nil
		},
	}
	svc := NewChatService(repo, &mocks.MessageRepositoryMock{}, time.Hour)
	fixedClock(svc, now)

	n, err := svc.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, now.Add(-time.Hour), cutoff)
}

func TestChatService_AppendMessages_SetsChatAndTouches(t *testing.T) {
	var created []*models.ChatMessage
	touched := uint(0)
	repo := &mocks.ChatRepositoryMock{
		TouchFunc: func(ctx context.Context, id uint, at time.Time) error {
			touched = id
			return nil
		},
	}
	msgs := &mocks.MessageRepositoryMock{
		CreateFunc: func(ctx context.Context, m *models.ChatMessage) error {
			created = append(created, m)
			return nil
		},
	}
	svc := NewChatService(repo, msgs, 0)

	err := svc.AppendMessages(context.Background(), 9, &models.ChatMessage{Role: "user"}, &models.ChatMessage{Role: "assistant"})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, uint(9), created[1].ChatID)
	assert.Equal(t, uint(9), touched)
}

func TestChatService_AppendMessages_StopsOnError(t *testing.T) {
	msgs := &mocks.MessageRepositoryMock{
		CreateFunc: func(ctx context.Context, m *models.ChatMessage) error {
			return errors.New("disk full")
		},
	}
	repo := &mocks.ChatRepositoryMock{
		TouchFunc: func(ctx context.Context, id uint, at time.Time) error {
			t.Fatal("touch after failed insert")
			return nil
		},
	}
	svc := NewChatService(repo, msgs, 0)
	assert.EqualError(t, svc.AppendMessages(context.Background(), 1, &models.ChatMessage{}), "disk full")
}

func TestChatService_UndoMessage_Expired(t *testing.T) {
	deletedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	msgs := &mocks.MessageRepositoryMock{
		GetDeletedFunc: func(ctx context.Context, id uint) (*models.ChatMessage, error) {
			return &models.ChatMessage{ID: id, DeletedAt: gorm.DeletedAt{Time: deletedAt, Valid: true}}, nil
		},
	}
	svc := NewChatService(&mocks.ChatRepositoryMock{}, msgs, time.Minute)
	fixedClock(svc, deletedAt.Add(2*time.Minute))

	assert.ErrorIs(t, svc.UndoMessage(context.Background(), 4), ErrUndoExpired)
}
