package session

import (
	"time"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
)

// Session is the authenticated caller resolved from a request.
type Session struct {
	UserID int64
	Role   entity.Role
}

// HasRole reports whether the caller holds one of roles.
func (s *Session) HasRole(roles ...entity.Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// RefreshSession represents a persisted refresh session.
type RefreshSession struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	ClientID  string    `db:"client_id"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Tokens is the pair handed out on login and refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}
