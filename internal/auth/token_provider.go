package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/domain"
)

// ErrInvalidCredentials rejects a sign-in whose ID token is missing, forged, expired or
// carries no verified email.
var ErrInvalidCredentials = errors.New("invalid credentials")

// userNamespace scopes the name-based user IDs derived from emails.
var userNamespace = uuid.MustParse("6f1d3c2a-8a4e-5b7f-9c10-2d3e4f5a6b7c")

type claims struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// upstreamClaims is the profile the upstream login signs into its ID token.
type upstreamClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// TokenProvider issues HS256 session tokens and tracks sign-outs in a RevocationStore.
type TokenProvider struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
	log     logrus.FieldLogger

	issuer    string
	issuerKey []byte

	mu      sync.Mutex
	nextSub int
	subs    map[int]func(SessionChange)
}

func NewTokenProvider(secret string, ttl time.Duration, revoked RevocationStore, log logrus.FieldLogger) *TokenProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenProvider{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
		log:     log.WithField("component", "auth"),
		subs:    make(map[int]func(SessionChange)),
	}
}

// WithClock is used by tests for deterministic expiry.
func (p *TokenProvider) WithClock(now func() time.Time) *TokenProvider {
	p.now = now
	return p
}

// WithIssuer configures the upstream login whose HS256 ID tokens SignIn accepts. When iss
// is empty the issuer claim is not checked. Without a key every sign-in is rejected.
func (p *TokenProvider) WithIssuer(iss, key string) *TokenProvider {
	p.issuer = iss
	p.issuerKey = []byte(key)
	return p
}

// UserIDFor derives the stable user ID for an email.
func UserIDFor(email string) string {
	return uuid.NewSHA1(userNamespace, []byte(normalizeEmail(email))).String()
}

// SignIn verifies the upstream ID token and issues a session for the profile it carries.
// Identity fields come only from the verified claims.
func (p *TokenProvider) SignIn(_ context.Context, creds Credentials) (Session, error) {
	profile, err := p.verifyIDToken(creds.IDToken)
	if err != nil {
		return Session{}, err
	}
	email := normalizeEmail(profile.Email)
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	identity := Identity{
		UserID:      UserIDFor(email),
		DisplayName: name,
		Email:       email,
		AvatarURL:   strings.TrimSpace(profile.Picture),
	}
	now := p.now()
	expires := now.Add(p.ttl)
	c := claims{
		Name:   identity.DisplayName,
		Email:  identity.Email,
		Avatar: identity.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	session := Session{Token: signed, TokenID: c.ID, ExpiresAt: expires, Identity: identity}
	p.log.WithField("user_id", identity.UserID).Info("user signed in")
	p.publish(SessionChange{SignedIn: true, TokenID: c.ID, Identity: identity})
	return session, nil
}

// CurrentSession validates token. Invalid, expired or revoked tokens wrap
// domain.ErrUnauthenticated; any other error means the answer is not known yet.
func (p *TokenProvider) CurrentSession(ctx context.Context, token string) (Session, error) {
	session, err := p.parse(token, false)
	if err != nil {
		return Session{}, err
	}
	revoked, err := p.revoked.IsRevoked(ctx, session.TokenID)
	if err != nil {
		return Session{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Session{}, fmt.Errorf("%w: token revoked", domain.ErrUnauthenticated)
	}
	return session, nil
}

// SignOut revokes token and notifies subscribers. Unparseable tokens are ignored.
func (p *TokenProvider) SignOut(ctx context.Context, token string) error {
	session, err := p.parse(token, true)
	if err != nil {
		return nil
	}
	if err := p.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	p.log.WithField("user_id", session.Identity.UserID).Info("user signed out")
	p.publish(SessionChange{SignedIn: false, TokenID: session.TokenID, Identity: session.Identity})
	return nil
}

func (p *TokenProvider) Subscribe(fn func(SessionChange)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *TokenProvider) publish(change SessionChange) {
	p.mu.Lock()
	subs := make([]func(SessionChange), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}

func (p *TokenProvider) verifyIDToken(raw string) (upstreamClaims, error) {
	var c upstreamClaims
	if len(p.issuerKey) == 0 || raw == "" {
		return c, ErrInvalidCredentials
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	if _, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return p.issuerKey, nil
	}, opts...); err != nil {
		return upstreamClaims{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	email := normalizeEmail(c.Email)
	if !c.EmailVerified || !strings.Contains(email, "@") {
		return upstreamClaims{}, fmt.Errorf("%w: no verified email", ErrInvalidCredentials)
	}
	return c, nil
}

func (p *TokenProvider) parse(token string, allowExpired bool) (Session, error) {
	if token == "" {
		return Session{}, domain.ErrUnauthenticated
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	}
	if !allowExpired {
		opts = append(opts, jwt.WithExpirationRequired())
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil && !(allowExpired && errors.Is(err, jwt.ErrTokenExpired)) {
		return Session{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if c.ID == "" || c.Subject == "" {
		return Session{}, fmt.Errorf("%w: incomplete claims", domain.ErrUnauthenticated)
	}

	session := Session{
		Token:   token,
		TokenID: c.ID,
		Identity: Identity{
			UserID:      c.Subject,
			DisplayName: c.Name,
			Email:       c.Email,
			AvatarURL:   c.Avatar,
		},
	}
	if c.ExpiresAt != nil {
		session.ExpiresAt = c.ExpiresAt.Time
	}
	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
