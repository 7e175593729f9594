package db

import (
	"github.com/labelr/labelr/internal/db/migrations"
)

// SchemaVersion returns the number of SQL migration files, which equals the
// schema version the binary expects. The readiness check compares it with
// the version goose recorded.
func SchemaVersion() int {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			count++
		}
	}

	return count
}
