package http

import (
	"net/http"

	"vocab-quiz-service/internal/auth"
	"vocab-quiz-service/internal/metrics"
)

// Handlers bundles everything the router serves.
type Handlers struct {
	Gate    *auth.Gate
	Auth    *AuthHandler
	Home    *HomeHandler
	Quiz    *WSHandler
	Metrics *metrics.Metrics
}

func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()
	route := func(pattern, path string, handler http.Handler) {
		mux.Handle(pattern, h.Metrics.Middleware(path, handler))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", h.Metrics.Handler())

	route("GET /login", "/login", http.HandlerFunc(h.Auth.LoginPage))
	route("POST /login", "/login", http.HandlerFunc(h.Auth.Login))
	route("POST /logout", "/logout", http.HandlerFunc(h.Auth.Logout))
	route("GET /{$}", "/", h.Gate.Require(h.Home))
	route("GET /quiz", "/quiz", h.Gate.Require(http.HandlerFunc(h.Quiz.ServeWS)))
	return mux
}
