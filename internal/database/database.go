package database

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"promptforge/internal/logging"
	"promptforge/internal/models"
)

const fileName = "promptforge.db"

// Config controls how the chat database is opened. An empty Path selects
// DefaultPath, and ":memory:" opens a private in-memory database.
type Config struct {
	Path          string
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

var pragmas = []string{
	"_journal_mode=WAL",
	"_busy_timeout=5000",
	"_foreign_keys=ON",
}

func dsn(path string) string {
	if path == ":memory:" {
		return "file::memory:?" + strings.Join(pragmas[1:], "&")
	}
	return path + "?" + strings.Join(pragmas, "&")
}

// Init opens the SQLite database and migrates the schema.
func Init(cfg Config) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		cfg.Path = DefaultPath()
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Warn
	}
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = 200 * time.Millisecond
	}

	db, err := gorm.Open(sqlite.Open(dsn(cfg.Path)), &gorm.Config{
		Logger: newZapLogger(cfg.LogLevel, cfg.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
	}

	// SQLite has a single writer.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(
		&models.Chat{},
		&models.ChatMessage{},
		&models.KVEntry{},
		&models.ModelSetting{},
	); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	logging.Debug("database ready", zap.String("path", cfg.Path), zap.Bool("development", IsDevelopment()))
	return db, nil
}

// Close releases the underlying connection.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
