package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/models"
)

func TestInitMigratesSchema(t *testing.T) {
	db, err := Init(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	for _, m := range []any{&models.Chat{}, &models.ChatMessage{}, &models.KVEntry{}, &models.ModelSetting{}} {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}
}

func TestInitRejectsUnwritablePath(t *testing.T) {
	_, err := Init(Config{Path: filepath.Join(t.TempDir(), "missing", "dir", "test.db")})
	assert.Error(t, err)
}

func TestInitInMemory(t *testing.T) {
	db, err := Init(Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, db.Create(&models.KVEntry{Key: "root:primary", Value: "/tmp/x"}).Error)
	var got models.KVEntry
	require.NoError(t, db.Where(&models.KVEntry{Key: "root:primary"}).First(&got).Error)
	assert.Equal(t, "/tmp/x", got.Value)
}

func TestDSNCarriesPragmas(t *testing.T) {
	assert.Equal(t, "a.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", dsn("a.db"))
	assert.NotContains(t, dsn(":memory:"), "_journal_mode")
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
