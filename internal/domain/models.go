package domain

import "time"

// Unanswered marks a question the user never picked an option for (timeout or skipped).
const Unanswered = -1

// OptionCount is the number of options every vocabulary question carries.
const OptionCount = 4

// Question models an MCQ vocabulary question. Immutable once seeded.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// IsCorrect reports whether option is the question's correct index.
func (q Question) IsCorrect(option int) bool {
	return option != Unanswered && option == q.CorrectAnswer
}

// QuizAnswer records what the user picked for one question.
type QuizAnswer struct {
	QuestionID string `json:"questionId"`
	UserAnswer int    `json:"userAnswer"`
	Correct    bool   `json:"correct"`
}

// QuizResult is built exactly once when a quiz completes.
type QuizResult struct {
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Answers        []QuizAnswer `json:"answers"`
	CompletedAt    time.Time    `json:"completedAt"`
}

// CorrectCount returns how many answers were correct.
func (r QuizResult) CorrectCount() int {
	n := 0
	for _, a := range r.Answers {
		if a.Correct {
			n++
		}
	}
	return n
}

// UserStats holds a user's running totals.
type UserStats struct {
	UserID       string     `json:"userId"`
	TotalQuizzes int        `json:"totalQuizzes"`
	AverageScore float64    `json:"averageScore"`
	BestScore    int        `json:"bestScore"`
	LastQuizDate *time.Time `json:"lastQuizDate,omitempty"`
}
