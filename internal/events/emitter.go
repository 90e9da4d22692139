package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"promptforge/internal/logging"
)

var (
	emitMu  sync.RWMutex
	emitter = func(ctx context.Context, name string, evt Event) {}
)

// Emit publishes evt under name. It is a no-op until an emitter is set.
func Emit(ctx context.Context, name string, evt Event) {
	if evt.SessionKey == "" {
		if session := SessionFromContext(ctx); session != "" {
			evt.SessionKey = session
		}
	}
	emitMu.RLock()
	f := emitter
	emitMu.RUnlock()
	f(ctx, name, evt)
}

// EnableLogEmitter routes every event to the global zap logger.
func EnableLogEmitter() {
	SetCustomEmitter(logEvent)
}

func SetCustomEmitter(f func(ctx context.Context, name string, evt Event)) {
	emitMu.Lock()
	defer emitMu.Unlock()
	if f == nil {
		emitter = func(context.Context, string, Event) {}
		return
	}
	emitter = f
}

func logEvent(ctx context.Context, name string, evt Event) {
	fields := make([]zap.Field, 0, len(evt.Metadata)+3)
	fields = append(fields, zap.String("event", name), zap.String("id", evt.ID))
	if evt.SessionKey != "" {
		fields = append(fields, zap.String("session", evt.SessionKey))
	}
	for k, v := range evt.Metadata {
		fields = append(fields, zap.String(k, v))
	}

	switch evt.Type {
	case EventDebug:
		logging.Debug(evt.Message, fields...)
	case EventWarn:
		logging.Warn(evt.Message, fields...)
	case EventError:
		logging.Error(evt.Message, fields...)
	default:
		logging.Info(evt.Message, fields...)
	}
}
