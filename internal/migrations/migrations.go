package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"biodb-backend-go/internal/db"

	"github.com/jmoiron/sqlx"
)

//go:embed sql
var files embed.FS

type migration struct {
	Name string
	Path string
}

// Apply brings the schema for the given driver up to date. Calling it on an
// already migrated database is a no-op.
func Apply(ctx context.Context, conn *sqlx.DB, driver string) error {
	dir, err := dialectDir(driver)
	if err != nil {
		return err
	}
	return applyFrom(ctx, conn, files, dir)
}

func applyFrom(ctx context.Context, conn *sqlx.DB, source fs.FS, dir string) error {
	if err := ensureTable(ctx, conn); err != nil {
		return err
	}
	migs, err := listMigrations(source, dir)
	if err != nil {
		return err
	}
	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		return err
	}
	for _, mig := range migs {
		version := parseVersion(mig.Name)
		if applied.names[mig.Name] || (version != "" && applied.versions[version]) {
			continue
		}
		if err := applyMigration(ctx, conn, source, mig); err != nil {
			return err
		}
	}
	return nil
}

func dialectDir(driver string) (string, error) {
	switch driver {
	case db.DriverSQLite:
		return "sql/sqlite", nil
	case db.DriverPostgres:
		return "sql/postgres", nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}

func ensureTable(ctx context.Context, conn *sqlx.DB) error {
	_, err := conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  name TEXT PRIMARY KEY,
  version TEXT NULL,
  applied_at TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func listMigrations(source fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(source, dir)
	if err != nil {
		return nil, err
	}
	migs := make([]migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		migs = append(migs, migration{
			Name: name,
			Path: path.Join(dir, name),
		})
	}
	sort.Slice(migs, func(i, j int) bool {
		iVersion, iOk := parseVersionNumber(migs[i].Name)
		jVersion, jOk := parseVersionNumber(migs[j].Name)
		switch {
		case iOk && jOk && iVersion != jVersion:
			return iVersion < jVersion
		case iOk != jOk:
			return iOk
		default:
			return migs[i].Name < migs[j].Name
		}
	})
	return migs, nil
}

type appliedSet struct {
	names    map[string]bool
	versions map[string]bool
}

func appliedMigrations(ctx context.Context, conn *sqlx.DB) (appliedSet, error) {
	rows := []struct {
		Name    string  `db:"name"`
		Version *string `db:"version"`
	}{}
	if err := conn.SelectContext(ctx, &rows, `SELECT name, version FROM schema_migrations`); err != nil {
		return appliedSet{}, fmt.Errorf("read schema_migrations: %w", err)
	}
	set := appliedSet{names: map[string]bool{}, versions: map[string]bool{}}
	for _, row := range rows {
		set.names[row.Name] = true
		if row.Version != nil {
			set.versions[*row.Version] = true
		}
	}
	return set, nil
}

func applyMigration(ctx context.Context, conn *sqlx.DB, source fs.FS, mig migration) error {
	content, err := fs.ReadFile(source, mig.Path)
	if err != nil {
		return err
	}
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply %s: %w", mig.Name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("apply %s: %w", mig.Name, err)
	}
	_, err = tx.ExecContext(ctx, conn.Rebind(`INSERT INTO schema_migrations (name, version, applied_at) VALUES (?, ?, ?)`),
		mig.Name, nullIfEmpty(parseVersion(mig.Name)), db.FormatTimestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("record %s: %w", mig.Name, err)
	}
	return tx.Commit()
}

func parseVersion(name string) string {
	if !strings.HasPrefix(name, "V") {
		return ""
	}
	parts := strings.SplitN(name[1:], "__", 2)
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

func parseVersionNumber(name string) (int, bool) {
	raw := parseVersion(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func nullIfEmpty(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
