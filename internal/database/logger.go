package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"promptforge/internal/logging"
)

// zapLogger sends GORM's query log through the application logger.
type zapLogger struct {
	level logger.LogLevel
	slow  time.Duration
}

func newZapLogger(level logger.LogLevel, slow time.Duration) logger.Interface {
	return &zapLogger{level: level, slow: slow}
}

func (l *zapLogger) LogMode(level logger.LogLevel) logger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *zapLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		logging.Info(fmt.Sprintf(msg, args...), zap.String("component", "gorm"))
	}
}

func (l *zapLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		logging.Warn(fmt.Sprintf(msg, args...), zap.String("component", "gorm"))
	}
}

func (l *zapLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		logging.Error(fmt.Sprintf(msg, args...), zap.String("component", "gorm"))
	}
}

func (l *zapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		logging.Error("query failed", zap.String("component", "gorm"), zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed), zap.Error(err))
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		sql, rows := fc()
		logging.Warn("slow query", zap.String("component", "gorm"), zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case l.level >= logger.Info:
		sql, rows := fc()
		logging.Debug("query", zap.String("component", "gorm"), zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	}
}
