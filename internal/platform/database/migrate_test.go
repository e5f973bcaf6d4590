package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminconsole/internal/platform/config"
)

func TestMigrate(t *testing.T) {
	db, err := Open(config.SessionConfig{DBPath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	ran, err := Migrate(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_sessions", "0002_audit_logs"}, ran)

	ran, err = Migrate(db)
	require.NoError(t, err)
	assert.Empty(t, ran)

	_, err = db.Exec(`INSERT INTO sessions (id, user_id, email, role, access_token, expires_at, created_at, updated_at) VALUES ('s', 'u', 'a@b.co', 'admin', x'00', 1, 1, 1)`)
	require.NoError(t, err)

	version, err := Rollback(db)
	require.NoError(t, err)
	assert.Equal(t, "0002_audit_logs", version)

	version, err = Rollback(db)
	require.NoError(t, err)
	assert.Equal(t, "0001_sessions", version)

	var n int
	err = db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'sessions'`).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)

	version, err = Rollback(db)
	require.NoError(t, err)
	assert.Empty(t, version)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(config.SessionConfig{})
	assert.Error(t, err)
}
