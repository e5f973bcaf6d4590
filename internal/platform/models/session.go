package models

// Session is a console login persisted locally. Tokens are stored sealed.
type Session struct {
	ID               string
	UserID           string
	Email            string
	Role             Role
	Organization     string
	AccessToken      []byte
	IntegrationToken []byte
	ExpiresAt        int64
	CreatedAt        int64
	UpdatedAt        int64
}

// LoginResult is the data of a successful /auth/login.
type LoginResult struct {
	AccessToken      string `json:"accessToken"`
	IntegrationToken string `json:"integrationToken,omitempty"`
	User             *User  `json:"user,omitempty"`
}
