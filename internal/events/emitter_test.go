package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"promptforge/internal/logging"
)

func TestEmitFillsSessionFromContext(t *testing.T) {
	var got []Event
	SetCustomEmitter(func(_ context.Context, name string, evt Event) {
		got = append(got, evt)
	})
	t.Cleanup(func() { SetCustomEmitter(nil) })

	ctx := WithSession(context.Background(), "chat-1")
	Emit(ctx, ImporterScan, NewInfo("scanned"))

	if assert.Len(t, got, 1) {
		assert.Equal(t, "chat-1", got[0].SessionKey)
		assert.Equal(t, EventInfo, got[0].Type)
		assert.NotEmpty(t, got[0].ID)
	}
}

func TestWithMetaCopies(t *testing.T) {
	base := NewInfo("x").WithMeta("a", "1")
	derived := base.WithMeta("b", "2")
	assert.Equal(t, map[string]string{"a": "1"}, base.Metadata)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, derived.Metadata)
}

func TestLogEmitterUsesLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.Set(zap.New(core))
	EnableLogEmitter()
	t.Cleanup(func() { SetCustomEmitter(nil) })

	Emit(context.Background(), TokensStale, NewWarn("dropped stale reply").WithMeta("id", "3"))

	entries := logs.FilterMessage("dropped stale reply").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, TokensStale, entries[0].ContextMap()["event"])
	}
}
