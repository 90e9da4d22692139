//go:build !prod

package database

// DefaultPath is the working directory in development builds.
func DefaultPath() string {
	return fileName
}

func IsDevelopment() bool {
	return true
}
