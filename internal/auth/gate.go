package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/domain"
)

// State is the gate's view of the caller.
type State int

const (
	// Pending means the provider could not answer yet.
	Pending State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

const LoginPath = "/login"

// Gate guards protected routes.
type Gate struct {
	provider   Provider
	cookieName string
	log        logrus.FieldLogger
}

func NewGate(provider Provider, cookieName string, log logrus.FieldLogger) *Gate {
	return &Gate{provider: provider, cookieName: cookieName, log: log.WithField("component", "gate")}
}

// Decide resolves the request's session into one of the three gate states.
func (g *Gate) Decide(r *http.Request) (Session, State) {
	token := TokenFromRequest(r, g.cookieName)
	if token == "" {
		return Session{}, Unauthenticated
	}
	session, err := g.provider.CurrentSession(r.Context(), token)
	switch {
	case err == nil:
		return session, Authenticated
	case errors.Is(err, domain.ErrUnauthenticated):
		return Session{}, Unauthenticated
	default:
		g.log.WithError(err).Warn("session lookup failed")
		return Session{}, Pending
	}
}

// Require renders next only for authenticated callers. Everyone else is redirected to the
// login page without the protected body being written.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, state := g.Decide(r)
		switch state {
		case Authenticated:
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		case Pending:
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "loading"})
		default:
			http.Redirect(w, r, LoginPath, http.StatusFound)
		}
	})
}

// TokenFromRequest reads the session token from the cookie, a bearer header or the
// token query parameter (browsers cannot set headers on websocket handshakes).
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return r.URL.Query().Get("token")
}
