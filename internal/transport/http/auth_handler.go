package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/auth"
)

const signInFailedMessage = "Failed to sign in. Please try again."

// AuthHandler serves the login and logout endpoints.
type AuthHandler struct {
	provider   auth.Provider
	gate       *auth.Gate
	cookieName string
	log        logrus.FieldLogger
}

func NewAuthHandler(provider auth.Provider, gate *auth.Gate, cookieName string, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		provider:   provider,
		gate:       gate,
		cookieName: cookieName,
		log:        log.WithField("component", "auth_handler"),
	}
}

// LoginPage sends signed-in users home and everyone else the login view.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, state := h.gate.Decide(r); state == auth.Authenticated {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"view": "login"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.log.WithError(err).Warn("invalid login payload")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: signInFailedMessage})
		return
	}

	session, err := h.provider.SignIn(r.Context(), creds)
	if err != nil {
		h.log.WithError(err).Error("login error")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: signInFailedMessage})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, session)
}

// Logout revokes the caller's token and always lands on the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r, h.cookieName); token != "" {
		if err := h.provider.SignOut(r.Context(), token); err != nil {
			h.log.WithError(err).Error("logout error")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, auth.LoginPath, http.StatusFound)
}
