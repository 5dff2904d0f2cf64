package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session does not exist or belongs to another user.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrNotInProgress is returned for answer/advance events outside of an active question.
	ErrNotInProgress = errors.New("quiz is not in progress")
	// ErrAnswerLocked is returned when an option was already selected for the current question.
	ErrAnswerLocked = errors.New("answer already selected for this question")
	// ErrNotAnswered is returned when advancing before the current question was answered.
	ErrNotAnswered = errors.New("current question has not been answered")
	// ErrOptionOutOfRange indicates a selected option index outside the question's options.
	ErrOptionOutOfRange = errors.New("option out of range")
	// ErrRetakeNotAllowed is returned when a retake is requested mid-quiz.
	ErrRetakeNotAllowed = errors.New("quiz can only be retaken once completed")
	// ErrSessionClosed is returned for events on a session that was left.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrStatsContention indicates the stats record kept changing under optimistic retries.
	ErrStatsContention = errors.New("user stats update contended")
	// ErrUnauthenticated is returned when an operation requires a signed-in user.
	ErrUnauthenticated = errors.New("unauthenticated")
)
