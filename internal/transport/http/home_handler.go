package http

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/auth"
	"vocab-quiz-service/internal/domain"
)

const statsFailedMessage = "Failed to load your stats. Please try again."

type homeResponse struct {
	User       auth.Identity     `json:"user"`
	FirstName  string            `json:"firstName"`
	Stats      *domain.UserStats `json:"stats"`
	HasHistory bool              `json:"hasHistory"`
	Error      string            `json:"error,omitempty"`
}

// HomeHandler renders the signed-in landing view.
type HomeHandler struct {
	bank  *app.QuestionBank
	stats *app.StatsService
	log   logrus.FieldLogger
}

func NewHomeHandler(bank *app.QuestionBank, stats *app.StatsService, log logrus.FieldLogger) *HomeHandler {
	return &HomeHandler{bank: bank, stats: stats, log: log.WithField("component", "home")}
}

func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginPath, http.StatusFound)
		return
	}
	log := h.log.WithField("user_id", session.Identity.UserID)

	// The bank is seeded lazily on first visit; a failure here only delays the first quiz.
	if _, err := h.bank.EnsureSeeded(r.Context()); err != nil {
		log.WithError(err).Error("error seeding questions")
	}

	resp := homeResponse{User: session.Identity, FirstName: session.Identity.FirstName()}
	stats, found, err := h.stats.ReadStats(r.Context(), session.Identity.UserID)
	switch {
	case err != nil:
		log.WithError(err).Error("error loading user data")
		resp.Error = statsFailedMessage
	case found:
		resp.Stats = &stats
		resp.HasHistory = true
	}
	writeJSON(w, http.StatusOK, resp)
}
