package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"promptforge/internal/events"
	"promptforge/internal/models"
	"promptforge/internal/repositories"
)

var ErrUndoExpired = errors.New("undo window has passed")

const DefaultUndoWindow = 30 * time.Minute

type ChatService interface {
	Create(ctx context.Context, title, modelKey, mode string) (*models.Chat, error)
	List(ctx context.Context) ([]*models.Chat, error)
	// Get returns the chat with its live messages in order.
	Get(ctx context.Context, id uint) (*models.Chat, error)
	Rename(ctx context.Context, id uint, title string) error
	Delete(ctx context.Context, id uint) error
	Undo(ctx context.Context, id uint) error
	AppendMessages(ctx context.Context, chatID uint, msgs ...*models.ChatMessage) error
	DeleteMessage(ctx context.Context, id uint) error
	UndoMessage(ctx context.Context, id uint) error
	// Purge drops chats deleted longer ago than the undo window.
	Purge(ctx context.Context) (int64, error)
}

type chatService struct {
	chats      repositories.ChatRepository
	messages   repositories.MessageRepository
	undoWindow time.Duration
	now        func() time.Time
}

func NewChatService(chats repositories.ChatRepository, messages repositories.MessageRepository, undoWindow time.Duration) ChatService {
	if undoWindow <= 0 {
		undoWindow = DefaultUndoWindow
	}
	return &chatService{
		chats:      chats,
		messages:   messages,
		undoWindow: undoWindow,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *chatService) Create(ctx context.Context, title, modelKey, mode string) (*models.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New chat"
	}
	chat := &models.Chat{Title: title, ModelKey: modelKey, Mode: mode}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	s.emit(ctx, events.NewInfo("chat created"), chat.ID)
	return chat, nil
}

func (s *chatService) List(ctx context.Context) ([]*models.Chat, error) {
	return s.chats.List(ctx)
}

func (s *chatService) Get(ctx context.Context, id uint) (*models.Chat, error) {
	chat, err := s.chats.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByChat(ctx, id)
	if err != nil {
		return nil, err
	}
	chat.Messages = msgs
	return chat, nil
}

func (s *chatService) Rename(ctx context.Context, id uint, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if err := s.chats.Rename(ctx, id, title); err != nil {
		return err
	}
	s.emit(ctx, events.NewInfo("chat renamed"), id)
	return nil
}

func (s *chatService) Delete(ctx context.Context, id uint) error {
	if err := s.chats.SoftDelete(ctx, id, s.now()); err != nil {
		return err
	}
	s.emit(ctx, events.NewInfo("chat deleted"), id)
	return nil
}

func (s *chatService) Undo(ctx context.Context, id uint) error {
	chat, err := s.chats.GetDeleted(ctx, id)
	if err != nil {
		return err
	}
	if s.expired(chat.DeletedAt.Time) {
		return fmt.Errorf("chat %d: %w", id, ErrUndoExpired)
	}
	if err := s.chats.Restore(ctx, id); err != nil {
		return err
	}
	s.emit(ctx, events.NewSuccess("chat restored"), id)
	return nil
}

func (s *chatService) AppendMessages(ctx context.Context, chatID uint, msgs ...*models.ChatMessage) error {
	for _, m := range msgs {
		m.ChatID = chatID
		if err := s.messages.Create(ctx, m); err != nil {
			return err
		}
	}
	return s.chats.Touch(ctx, chatID, s.now())
}

func (s *chatService) DeleteMessage(ctx context.Context, id uint) error {
	return s.messages.SoftDelete(ctx, id, s.now())
}

func (s *chatService) UndoMessage(ctx context.Context, id uint) error {
	msg, err := s.messages.GetDeleted(ctx, id)
	if err != nil {
		return err
	}
	if s.expired(msg.DeletedAt.Time) {
		return fmt.Errorf("message %d: %w", id, ErrUndoExpired)
	}
	return s.messages.Restore(ctx, id)
}

func (s *chatService) Purge(ctx context.Context) (int64, error) {
	n, err := s.chats.Purge(ctx, s.now().Add(-s.undoWindow))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		events.Emit(ctx, events.ChatChanged, events.NewInfo("purged deleted chats").
			WithMeta("count", strconv.FormatInt(n, 10)))
	}
	return n, nil
}

func (s *chatService) expired(deletedAt time.Time) bool {
	return s.now().Sub(deletedAt) > s.undoWindow
}

func (s *chatService) emit(ctx context.Context, evt events.Event, id uint) {
	events.Emit(ctx, events.ChatChanged, evt.WithMeta("chat", strconv.FormatUint(uint64(id), 10)))
}
