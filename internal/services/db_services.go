package services

import (
	"time"

	"gorm.io/gorm"

	"promptforge/internal/repositories"
)

// DbServices aggregates the services backed by the database.
type DbServices struct {
	Chats  ChatService
	Models ModelConfigService
	Roots  *RootStore
}

// NewDbServices constructs the service container using repositories backed by db.
func NewDbServices(db *gorm.DB, catalog []byte, undoWindow time.Duration, open RootOpener) *DbServices {
	chatRepo := repositories.NewChatRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	settingRepo := repositories.NewModelSettingRepository(db)
	kvRepo := repositories.NewKVRepository(db)

	return &DbServices{
		Chats:  NewChatService(chatRepo, messageRepo, undoWindow),
		Models: NewModelConfigService(settingRepo, catalog),
		Roots:  NewRootStore(kvRepo, open),
	}
}
