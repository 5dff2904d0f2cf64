package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/domain"
)

// LoadFailedMessage is shown when questions could not be fetched.
const LoadFailedMessage = "Failed to load quiz questions. Please try again."

// QuizConfig tunes quiz sessions.
type QuizConfig struct {
	QuestionCount int
	TimeLimit     int
	Tick          time.Duration
	Clock         Clock
	SaveTimeout   time.Duration
}

// QuizService contains the quiz session use cases.
type QuizService struct {
	sessions SessionRepository
	bank     *QuestionBank
	stats    *StatsService
	observer Observer
	log      logrus.FieldLogger
	cfg      QuizConfig
	newID    func() string
}

func NewQuizService(sessions SessionRepository, bank *QuestionBank, stats *StatsService, log logrus.FieldLogger, cfg QuizConfig) *QuizService {
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = 5
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 10 * time.Second
	}
	return &QuizService{
		sessions: sessions,
		bank:     bank,
		stats:    stats,
		observer: nopObserver{},
		log:      log.WithField("component", "quiz"),
		cfg:      cfg,
		newID:    uuid.NewString,
	}
}

// WithObserver attaches a lifecycle observer (metrics).
func (s *QuizService) WithObserver(o Observer) *QuizService {
	if o != nil {
		s.observer = o
	}
	return s
}

// Open creates a loading session owned by userID.
func (s *QuizService) Open(userID string) *Session {
	session := NewSession(s.newID(), userID, SessionConfig{
		TimeLimit: s.cfg.TimeLimit,
		Tick:      s.cfg.Tick,
		Clock:     s.cfg.Clock,
	})
	session.hooks = sessionHooks{
		completed: s.handleCompleted,
		timedOut:  func(*Session) { s.observer.QuestionTimedOut() },
	}
	s.sessions.Put(session)
	s.observer.SessionOpened()
	return session
}

// Start opens a session and loads its questions.
func (s *QuizService) Start(ctx context.Context, userID string) (*Session, error) {
	session := s.Open(userID)
	if _, err := s.Load(ctx, session.ID(), userID); err != nil {
		return session, err
	}
	return session, nil
}

// Load seeds the bank if needed, samples questions and starts the first countdown.
// On failure the session stays in Loading with a retry message.
func (s *QuizService) Load(ctx context.Context, sessionID, userID string) (domain.SessionSnapshot, error) {
	session, err := s.owned(sessionID, userID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}

	log := s.log.WithFields(logrus.Fields{"session_id": sessionID, "user_id": userID})
	if _, err := s.bank.EnsureSeeded(ctx); err != nil {
		log.WithError(err).Error("error loading questions")
		session.failLoad(LoadFailedMessage)
		return session.Snapshot(), err
	}
	questions, err := s.bank.Sample(ctx, s.cfg.QuestionCount)
	if err != nil {
		log.WithError(err).Error("error loading questions")
		session.failLoad(LoadFailedMessage)
		return session.Snapshot(), err
	}
	if err := session.begin(questions); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Select records an answer for the current question.
func (s *QuizService) Select(_ context.Context, sessionID, userID string, option int) (domain.SessionSnapshot, error) {
	session, err := s.owned(sessionID, userID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Select(option)
}

// Next advances to the next question or finishes the quiz.
func (s *QuizService) Next(_ context.Context, sessionID, userID string) (domain.SessionSnapshot, error) {
	session, err := s.owned(sessionID, userID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Next()
}

// Retake restarts a completed session with a freshly sampled question set.
func (s *QuizService) Retake(ctx context.Context, sessionID, userID string) (domain.SessionSnapshot, error) {
	session, err := s.owned(sessionID, userID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if err := session.reset(); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return s.Load(ctx, sessionID, userID)
}

// Subscribe returns a channel of snapshots for the session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID, userID string) (<-chan domain.SessionSnapshot, func(), error) {
	session, err := s.owned(sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Leave cancels the session's timer and drops it.
func (s *QuizService) Leave(_ context.Context, sessionID, userID string) {
	session, err := s.owned(sessionID, userID)
	if err != nil {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
	s.observer.SessionClosed()
}

func (s *QuizService) owned(sessionID, userID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok || session.UserID() != userID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// handleCompleted saves the result; failures are logged and never change the shown score.
func (s *QuizService) handleCompleted(session *Session, result domain.QuizResult) {
	s.observer.QuizCompleted(result.Score)
	if session.UserID() == "" || result.TotalQuestions == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
	defer cancel()
	if _, err := s.stats.RecordResult(ctx, session.UserID(), result); err != nil {
		s.observer.StatsSaveFailed()
		s.log.WithError(err).WithFields(logrus.Fields{
			"session_id": session.ID(),
			"user_id":    session.UserID(),
			"score":      result.Score,
		}).Error("error saving quiz result")
	}
}
