//go:build prod

package database

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"promptforge/internal/logging"
)

// DefaultPath places the database under the user's config directory and
// falls back to the working directory when that is not writable.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err == nil {
		dir := filepath.Join(base, "promptforge")
		if err = os.MkdirAll(dir, 0o755); err == nil {
			return filepath.Join(dir, fileName)
		}
	}
	logging.Warn("no user config dir for the database, using working directory", zap.Error(err))
	return fileName
}

func IsDevelopment() bool {
	return false
}
