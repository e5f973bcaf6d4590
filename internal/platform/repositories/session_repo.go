package repositories

import (
	"database/sql"
	"time"

	"adminconsole/internal/platform/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save inserts the session or replaces the stored one with the same id.
func (r *SessionRepository) Save(s *models.Session) error {
	now := time.Now().Unix()
	if s.CreatedAt == 0 {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO sessions (id, user_id, email, role, organization, access_token, integration_token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			role = excluded.role,
			organization = excluded.organization,
			access_token = excluded.access_token,
			integration_token = excluded.integration_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, s.ID, s.UserID, s.Email, string(s.Role), s.Organization, s.AccessToken, s.IntegrationToken, s.ExpiresAt, s.CreatedAt, s.UpdatedAt)
	return err
}

// GetByID returns nil, nil when the session does not exist.
func (r *SessionRepository) GetByID(id string) (*models.Session, error) {
	s := &models.Session{}
	var role string
	var org sql.NullString
	err := r.db.QueryRow(`
		SELECT id, user_id, email, role, organization, access_token, integration_token, expires_at, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.UserID, &s.Email, &role, &org, &s.AccessToken, &s.IntegrationToken, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.Role = models.Role(role)
	s.Organization = org.String
	return s, nil
}

// SetIntegrationToken replaces the sealed integration token of a session.
func (r *SessionRepository) SetIntegrationToken(id string, sealed []byte) error {
	res, err := r.db.Exec(`UPDATE sessions SET integration_token = ?, updated_at = ? WHERE id = ?`, sealed, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *SessionRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteExpired removes sessions that expired before the given unix time.
func (r *SessionRepository) DeleteExpired(before int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SessionRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT count(*) FROM sessions`).Scan(&n)
	return n, err
}
