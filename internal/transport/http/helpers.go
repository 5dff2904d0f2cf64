package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"vocab-quiz-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// messageFor turns a quiz error into the text shown to the player.
func messageFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrAnswerLocked):
		return "This question has already been answered."
	case errors.Is(err, domain.ErrNotAnswered):
		return "Select an answer before moving on."
	case errors.Is(err, domain.ErrOptionOutOfRange):
		return "That option does not exist."
	case errors.Is(err, domain.ErrRetakeNotAllowed):
		return "Finish the current quiz before retaking it."
	case errors.Is(err, domain.ErrNotInProgress):
		return "The quiz is not in progress."
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionClosed):
		return "This quiz session has ended."
	default:
		return "Something went wrong. Please try again."
	}
}
