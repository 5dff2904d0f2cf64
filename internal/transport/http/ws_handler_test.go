package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/auth"
	"vocab-quiz-service/internal/domain"
	"vocab-quiz-service/internal/infra/memory"
	"vocab-quiz-service/internal/metrics"
)

const testIssuerKey = "issuer-key"

// idTokenFor signs a verified upstream profile with the test issuer key.
func idTokenFor(t *testing.T, key, email, name string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":            "https://login.example.com",
		"email":          email,
		"email_verified": true,
		"name":           name,
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign id token: %v", err)
	}
	return signed
}

type testEnv struct {
	server    *httptest.Server
	router    http.Handler
	provider  *auth.TokenProvider
	questions *memory.QuestionStore
	users     *memory.UserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	questions := memory.NewQuestionStore()
	users := memory.NewUserStore()
	bank := app.NewQuestionBank(questions, log)
	stats := app.NewStatsService(users, users, log)
	m := metrics.New()
	service := app.NewQuizService(memory.NewSessionStore(), bank, stats, log, app.QuizConfig{
		QuestionCount: 5,
		TimeLimit:     30,
		Tick:          time.Second,
	}).WithObserver(m)

	provider := auth.NewTokenProvider("test-secret", time.Hour, memory.NewRevocationStore(), log).
		WithIssuer("https://login.example.com", testIssuerKey)
	gate := auth.NewGate(provider, "quiz_session", log)
	router := NewRouter(Handlers{
		Gate:    gate,
		Auth:    NewAuthHandler(provider, gate, "quiz_session", log),
		Home:    NewHomeHandler(bank, stats, log),
		Quiz:    NewWSHandler(service, provider, log),
		Metrics: m,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, router: router, provider: provider, questions: questions, users: users}
}

func (e *testEnv) signIn(t *testing.T) auth.Session {
	t.Helper()
	session, err := e.provider.SignIn(context.Background(), auth.Credentials{
		IDToken: idTokenFor(t, testIssuerKey, "ada@example.com", "Ada Lovelace"),
	})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return session
}

func (e *testEnv) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + e.server.URL[len("http"):] + "/quiz"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (e *testEnv) answerKey(t *testing.T) map[string]int {
	t.Helper()
	all, err := e.questions.ListQuestions(context.Background())
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	key := make(map[string]int, len(all))
	for _, q := range all {
		key[q.ID] = q.CorrectAnswer
	}
	return key
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// readSnapshot reads session messages until one satisfies match.
func readSnapshot(t *testing.T, conn *websocket.Conn, match func(domain.SessionSnapshot) bool) domain.SessionSnapshot {
	t.Helper()
	for i := 0; i < 50; i++ {
		msg := readMessage(t, conn)
		if msg.Type != "session" {
			continue
		}
		var snap domain.SessionSnapshot
		if err := json.Unmarshal(msg.Payload, &snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if match(snap) {
			return snap
		}
	}
	t.Fatalf("no matching snapshot")
	return domain.SessionSnapshot{}
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/", "/quiz"} {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
			t.Fatalf("%s: expected redirect to /login, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
		if strings.Contains(rec.Body.String(), "stats") || strings.Contains(rec.Body.String(), "question") {
			t.Fatalf("%s: protected content leaked: %q", path, rec.Body.String())
		}
	}
}

func TestLoginSetsCookieAndHomeShowsNoHistory(t *testing.T) {
	env := newTestEnv(t)

	body := bytes.NewBufferString(`{"idToken":"` + idTokenFor(t, testIssuerKey, "ada@example.com", "Ada Lovelace") + `"}`)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "quiz_session" || cookies[0].Value == "" {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected home, got %d", rec.Code)
	}
	var home struct {
		FirstName  string            `json:"firstName"`
		Stats      *domain.UserStats `json:"stats"`
		HasHistory bool              `json:"hasHistory"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &home); err != nil {
		t.Fatalf("decode home: %v", err)
	}
	if home.FirstName != "Ada" || home.Stats != nil || home.HasHistory {
		t.Fatalf("unexpected home %+v", home)
	}

	all, _ := env.questions.ListQuestions(context.Background())
	if len(all) != 20 {
		t.Fatalf("home should seed the bank, got %d questions", len(all))
	}

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("signed-in login visit should go home, got %d", rec.Code)
	}
}

func TestLoginFailureMessage(t *testing.T) {
	env := newTestEnv(t)
	bodies := []string{
		`{"displayName":"x"}`,
		`{"email":"alice@example.com","displayName":"mallory"}`,
		`{"idToken":"` + idTokenFor(t, "attacker-key", "alice@example.com", "mallory") + `"}`,
	}
	for _, body := range bodies {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body)))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Failed to sign in. Please try again.") {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Fatalf("%s: failed sign-in must not set a session cookie", body)
		}
	}
}

func TestLogoutRedirectsAndRevokes(t *testing.T) {
	env := newTestEnv(t)
	session := env.signIn(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "quiz_session", Value: session.Token})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "quiz_session", Value: session.Token})
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("revoked token must be redirected, got %d", rec.Code)
	}
}

func TestWebSocketQuizFlow(t *testing.T) {
	env := newTestEnv(t)
	session := env.signIn(t)
	if _, err := app.NewQuestionBank(env.questions, logrus.New()).EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	key := env.answerKey(t)
	conn := env.dial(t, session.Token)

	snap := readSnapshot(t, conn, func(s domain.SessionSnapshot) bool { return s.State == "in_progress" })
	if snap.TotalQuestions != 5 || snap.TimeLeft > 30 {
		t.Fatalf("unexpected first snapshot %+v", snap)
	}

	send(t, conn, map[string]any{"type": "next"})
	if msg := readMessage(t, conn); msg.Type != "error" && msg.Type != "session" {
		t.Fatalf("unexpected message %s", msg.Type)
	}

	for i := 0; i < 5; i++ {
		current := readSnapshot(t, conn, func(s domain.SessionSnapshot) bool {
			return s.State == "in_progress" && s.QuestionIndex == i && s.Feedback == nil
		})
		send(t, conn, map[string]any{"type": "select", "payload": map[string]any{"option": key[current.Question.ID]}})
		answered := readSnapshot(t, conn, func(s domain.SessionSnapshot) bool { return s.Feedback != nil })
		if !answered.Feedback.Correct {
			t.Fatalf("expected correct feedback, got %+v", answered.Feedback)
		}
		send(t, conn, map[string]any{"type": "next"})
	}

	done := readSnapshot(t, conn, func(s domain.SessionSnapshot) bool { return s.State == "completed" })
	if done.Result == nil || done.Result.Score != 100 || len(done.Review) != 5 {
		t.Fatalf("unexpected completion %+v", done)
	}

	stats, ok, err := env.users.GetStats(context.Background(), session.Identity.UserID)
	if err != nil || !ok {
		t.Fatalf("expected stats saved, ok=%v err=%v", ok, err)
	}
	if stats.TotalQuizzes != 1 || stats.AverageScore != 100 || stats.BestScore != 100 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	send(t, conn, map[string]any{"type": "retake"})
	again := readSnapshot(t, conn, func(s domain.SessionSnapshot) bool { return s.State == "in_progress" })
	if again.QuestionIndex != 0 || again.Result != nil {
		t.Fatalf("retake should start over, got %+v", again)
	}
}

func TestSignOutClosesQuizSocket(t *testing.T) {
	env := newTestEnv(t)
	session := env.signIn(t)
	conn := env.dial(t, session.Token)
	readSnapshot(t, conn, func(s domain.SessionSnapshot) bool { return s.State == "in_progress" })

	if err := env.provider.SignOut(context.Background(), session.Token); err != nil {
		t.Fatalf("sign out: %v", err)
	}

	for i := 0; i < 50; i++ {
		msg := readMessage(t, conn)
		if msg.Type != "redirect" {
			continue
		}
		var payload struct {
			Location string `json:"location"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Location != "/login" {
			t.Fatalf("unexpected redirect payload %s", msg.Payload)
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if _, _, err := conn.ReadMessage(); err == nil {
			t.Fatal("expected socket to close after redirect")
		}
		return
	}
	t.Fatal("no redirect after sign-out")
}
