package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// FindEnvFile walks up from dir to the first directory holding a .env
// file. The walk stops at a repository root (a directory with .git).
func FindEnvFile(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", os.ErrNotExist
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// LoadEnv loads the nearest .env above the working directory. Variables
// already set in the environment win.
func LoadEnv() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	path, err := FindEnvFile(wd)
	if err != nil {
		return err
	}
	return godotenv.Load(path)
}
