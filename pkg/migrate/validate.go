package migrate

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
)

// Validate checks the embedded migrations of every driver: file names,
// goose headers, and that both drivers carry the same versions.
func Validate() error {
	postgres, err := validateDir(migrationsFS, "migrations/postgres")
	if err != nil {
		return err
	}
	sqlite, err := validateDir(migrationsFS, "migrations/sqlite")
	if err != nil {
		return err
	}

	for version, name := range postgres {
		if _, ok := sqlite[version]; !ok {
			return fmt.Errorf("migration %q has no sqlite counterpart", name)
		}
	}
	for version, name := range sqlite {
		if _, ok := postgres[version]; !ok {
			return fmt.Errorf("migration %q has no postgres counterpart", name)
		}
	}
	return nil
}

// validateDir returns version -> file name for dir.
func validateDir(fsys fs.FS, dir string) (map[string]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}

		version := m[1]
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", name, err)
		}

		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
		}
	}

	return seen, nil
}
