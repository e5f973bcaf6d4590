// Package audit records the mutations operators push through the console.
package audit

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"adminconsole/internal/pkg/logger"
	"adminconsole/internal/pkg/parser"
	"adminconsole/internal/platform/auth"
)

type Entry struct {
	ID           string `json:"id"`
	SessionID    string `json:"sessionId,omitempty"`
	UserID       string `json:"userId,omitempty"`
	Organization string `json:"organization,omitempty"`
	Action       string `json:"action"`
	Resource     string `json:"resource"`
	ResourceID   string `json:"resourceId,omitempty"`
	Status       int    `json:"status"`
	OS           string `json:"os"`
	Browser      string `json:"browser"`
	IPAddress    string `json:"ipAddress"`
	CreatedAt    int64  `json:"createdAt"`
}

// Actor identifies who performed an action.
type Actor struct {
	UserID       string
	Organization string
}

type Logger struct {
	db  *sql.DB
	log zerolog.Logger
	wg  sync.WaitGroup
	now func() time.Time
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db, log: logger.Component("audit"), now: time.Now}
}

// Record stores an entry in the background. Client details are taken from r
// when it is non-nil.
func (l *Logger) Record(ctx context.Context, r *http.Request, actor Actor, action, resource, resourceID string, status int) {
	e := Entry{
		ID:           "audit_" + uuid.NewString(),
		SessionID:    auth.SessionFrom(ctx),
		UserID:       actor.UserID,
		Organization: actor.Organization,
		Action:       action,
		Resource:     resource,
		ResourceID:   resourceID,
		Status:       status,
		OS:           "Unknown",
		Browser:      "Unknown",
		IPAddress:    "unknown",
		CreatedAt:    l.now().Unix(),
	}
	if r != nil {
		c := parser.ParseUserAgent(r.UserAgent())
		e.OS, e.Browser = c.OS, c.Browser
		e.IPAddress = clientIP(r)
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.insert(e); err != nil {
			l.log.Error().Err(err).Str("action", action).Str("resource", resource).Msg("failed to write audit entry")
		}
	}()
}

func (l *Logger) insert(e Entry) error {
	_, err := l.db.Exec(`
		INSERT INTO audit_logs (id, session_id, user_id, organization, action, resource, resource_id, status, os, browser, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.SessionID, e.UserID, e.Organization, e.Action, e.Resource, e.ResourceID, e.Status, e.OS, e.Browser, e.IPAddress, e.CreatedAt)
	return err
}

// Wait blocks until every pending entry is written.
func (l *Logger) Wait() {
	l.wg.Wait()
}

// Recent returns the newest entries, newest first. Entries of other
// organizations are skipped when organization is set.
func (l *Logger) Recent(organization string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, session_id, user_id, organization, action, resource, resource_id, status, os, browser, ip_address, created_at
		FROM audit_logs`
	args := []any{}
	if organization != "" {
		query += ` WHERE organization = ?`
		args = append(args, organization)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var session, user, org, resID, os, browser, ip sql.NullString
		if err := rows.Scan(&e.ID, &session, &user, &org, &e.Action, &e.Resource, &resID, &e.Status, &os, &browser, &ip, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.SessionID, e.UserID, e.Organization = session.String, user.String, org.String
		e.ResourceID, e.OS, e.Browser, e.IPAddress = resID.String, os.String, browser.String, ip.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune deletes entries older than before.
func (l *Logger) Prune(before time.Time) (int64, error) {
	res, err := l.db.Exec(`DELETE FROM audit_logs WHERE created_at < ?`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
