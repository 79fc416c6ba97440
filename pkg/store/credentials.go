// Package store owns the console's session state: the access token, refresh
// token, and signed-in user. Every read and write of those values goes through
// a Credentials implementation so login, refresh, and logout stay consistent.
package store

import (
	"context"
	"errors"
)

// Keys under which the session is persisted. They are always cleared together.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// ErrNotLoggedIn is returned by helpers that require a stored access token.
var ErrNotLoggedIn = errors.New("store: not logged in")

// User is the signed-in admin as returned by the login endpoint.
type User struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Session is a snapshot of the persisted credentials.
type Session struct {
	Token        string
	RefreshToken string
	User         *User
}

// LoggedIn reports whether an access token is present.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Credentials persists the session.
type Credentials interface {
	Load(ctx context.Context) (Session, error)
	// SetTokens stores a new access token. An empty refresh token keeps the
	// one already stored.
	SetTokens(ctx context.Context, access, refresh string) error
	SetUser(ctx context.Context, u *User) error
	// Clear removes token, refreshToken and user together.
	Clear(ctx context.Context) error
}

// Watcher is implemented by stores that can report changes made by other
// processes, e.g. a logout from a second terminal.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// Token returns the stored access token or an empty string.
func Token(ctx context.Context, c Credentials) string {
	s, err := c.Load(ctx)
	if err != nil {
		return ""
	}
	return s.Token
}
