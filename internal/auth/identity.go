package auth

import (
	"context"
	"strings"
	"time"
)

// Identity is the signed-in user as the rest of the service sees it.
type Identity struct {
	UserID      string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// FirstName is the first word of the display name, used for greetings.
func (i Identity) FirstName() string {
	fields := strings.Fields(i.DisplayName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Credentials carries the ID token the upstream login issued to the browser.
type Credentials struct {
	IDToken string `json:"idToken"`
}

// Session is one issued session token.
type Session struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	Identity  Identity  `json:"user"`
}

// SessionChange is published on sign-in and sign-out.
type SessionChange struct {
	SignedIn bool
	TokenID  string
	Identity Identity
}

// Provider is the identity capability set the service depends on.
type Provider interface {
	CurrentSession(ctx context.Context, token string) (Session, error)
	SignIn(ctx context.Context, creds Credentials) (Session, error)
	SignOut(ctx context.Context, token string) error
	// Subscribe registers fn for session changes; call the returned func to stop.
	Subscribe(fn func(SessionChange)) func()
}

// RevocationStore remembers signed-out token IDs.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session the gate attached to the request.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
