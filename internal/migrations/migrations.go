// Package migrations embeds the schema for each supported store.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed postgres/*.up.sql
var postgresFS embed.FS

//go:embed sqlite/*.up.sql
var sqliteFS embed.FS

// Postgres returns the Postgres up migrations in apply order.
func Postgres() ([]string, error) {
	return load(postgresFS, "postgres")
}

// SQLite returns the SQLite up migrations in apply order.
func SQLite() ([]string, error) {
	return load(sqliteFS, "sqlite")
}

func load(fsys embed.FS, dir string) ([]string, error) {
	names, err := fs.Glob(fsys, dir+"/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("fs.Glob: %w", err)
	}
	sort.Strings(names)

	scripts := make([]string, 0, len(names))
	for _, name := range names {
		b, err := fsys.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("fsys.ReadFile[%s]: %w", name, err)
		}
		scripts = append(scripts, string(b))
	}

	return scripts, nil
}
