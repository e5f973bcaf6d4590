// Package auth keeps the console's persisted login: the backend's access
// token and the secondary integration token, sealed at rest, one row per
// console session.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"adminconsole/internal/platform/models"
	"adminconsole/internal/platform/repositories"
	"adminconsole/internal/transport"
)

type sessionKey struct{}

// WithSession scopes ctx to a console session.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// Sessions stores and resolves console sessions.
type Sessions struct {
	repo   *repositories.SessionRepository
	sealer *Sealer
	now    func() time.Time
}

func NewSessions(repo *repositories.SessionRepository, sealer *Sealer) *Sessions {
	return &Sessions{repo: repo, sealer: sealer, now: time.Now}
}

// Create stores a new session for an access token returned by login. An
// empty id generates one.
func (s *Sessions) Create(id, accessToken, integrationToken string) (*models.Session, error) {
	claims, err := ParseClaims(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Expired(s.now()) {
		return nil, ErrExpired
	}

	if id == "" {
		id = uuid.NewString()
	}
	sess := &models.Session{
		ID:           id,
		UserID:       claims.UserID,
		Email:        claims.Email,
		Role:         models.Role(claims.Role),
		Organization: claims.Organization,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Unix()
	} else {
		sess.ExpiresAt = s.now().Add(24 * time.Hour).Unix()
	}

	if sess.AccessToken, err = s.sealer.Seal(accessToken); err != nil {
		return nil, fmt.Errorf("seal access token: %w", err)
	}
	if sess.IntegrationToken, err = s.sealer.Seal(integrationToken); err != nil {
		return nil, fmt.Errorf("seal integration token: %w", err)
	}

	if err := s.repo.Save(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Get returns the live session with the given id. Expired sessions are
// removed and reported as ErrExpired.
func (s *Sessions) Get(id string) (*models.Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	sess, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	if sess.ExpiresAt <= s.now().Unix() {
		s.repo.Delete(id)
		return nil, ErrExpired
	}
	return sess, nil
}

func (s *Sessions) SetIntegrationToken(id, token string) error {
	sealed, err := s.sealer.Seal(token)
	if err != nil {
		return err
	}
	return s.repo.SetIntegrationToken(id, sealed)
}

func (s *Sessions) Delete(id string) error {
	return s.repo.Delete(id)
}

// Prune deletes every expired session and returns how many were removed.
func (s *Sessions) Prune() (int64, error) {
	return s.repo.DeleteExpired(s.now().Unix())
}

// AccessTokens resolves the access token of the session carried by the call
// context. A call without a session sends no token.
func (s *Sessions) AccessTokens() transport.TokenSource {
	return transport.TokenFunc(func(ctx context.Context) (string, error) {
		return s.token(ctx, false)
	})
}

// IntegrationTokens resolves the integration token of the session carried by
// the call context.
func (s *Sessions) IntegrationTokens() transport.TokenSource {
	return transport.TokenFunc(func(ctx context.Context) (string, error) {
		return s.token(ctx, true)
	})
}

func (s *Sessions) token(ctx context.Context, integration bool) (string, error) {
	id := SessionFrom(ctx)
	if id == "" {
		return "", nil
	}
	sess, err := s.Get(id)
	if err != nil {
		return "", err
	}

	sealed := sess.AccessToken
	if integration {
		sealed = sess.IntegrationToken
	}
	token, err := s.sealer.Open(sealed)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", nil
	}

	if !integration {
		claims, err := ParseClaims(token)
		if err != nil {
			return "", err
		}
		if claims.Expired(s.now()) {
			s.repo.Delete(id)
			return "", ErrExpired
		}
	}
	return token, nil
}
