package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type migration struct {
	version string
	up      string
	down    string
}

func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string]*migration)
	for _, e := range entries {
		name := e.Name()
		var version, direction string
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			version, direction = strings.TrimSuffix(name, ".up.sql"), "up"
		case strings.HasSuffix(name, ".down.sql"):
			version, direction = strings.TrimSuffix(name, ".down.sql"), "down"
		default:
			continue
		}

		content, err := fs.ReadFile(migrationFiles, "migrations/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &migration{version: version}
			byVersion[version] = m
		}
		if direction == "up" {
			m.up = string(content)
		} else {
			m.down = string(content)
		}
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func applied(db *sql.DB) (map[string]bool, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)`); err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}

// Migrate applies every pending up migration in version order. It returns
// the versions it applied.
func Migrate(db *sql.DB) ([]string, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, err
	}
	done, err := applied(db)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, m := range migrations {
		if done[m.version] || m.up == "" {
			continue
		}
		log.Info().Str("version", m.version).Msg("applying migration")
		if err := exec(db, m.up, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`, m.version, time.Now().Unix()); err != nil {
			return ran, fmt.Errorf("failed to execute migration %s: %w", m.version, err)
		}
		ran = append(ran, m.version)
	}
	return ran, nil
}

// Rollback reverts the most recently applied migration, if any.
func Rollback(db *sql.DB) (string, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return "", err
	}
	done, err := applied(db)
	if err != nil {
		return "", err
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if !done[m.version] {
			continue
		}
		if m.down == "" {
			return "", fmt.Errorf("migration %s has no down script", m.version)
		}
		log.Info().Str("version", m.version).Msg("reverting migration")
		if err := exec(db, m.down, `DELETE FROM schema_migrations WHERE version = ?`, m.version); err != nil {
			return "", fmt.Errorf("failed to revert migration %s: %w", m.version, err)
		}
		return m.version, nil
	}
	return "", nil
}

func exec(db *sql.DB, script, bookkeeping string, args ...any) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(bookkeeping, args...); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
