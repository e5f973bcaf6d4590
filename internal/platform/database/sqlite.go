package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"adminconsole/internal/platform/config"
)

// Open opens the local session store. A "file:" prefix is stripped; ":memory:"
// is accepted for tests.
func Open(cfg config.SessionConfig) (*sql.DB, error) {
	dsn := strings.TrimPrefix(cfg.DBPath, "file:")
	if dsn == "" {
		return nil, fmt.Errorf("session.db_path is empty")
	}
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, err
		}
		dsn += "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 || dsn == ":memory:" {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
