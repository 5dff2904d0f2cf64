package domain

// OptionMark is how an option renders once feedback is revealed.
type OptionMark string

const (
	MarkCorrect   OptionMark = "correct"
	MarkIncorrect OptionMark = "incorrect"
	MarkNeutral   OptionMark = "neutral"
)

// QuestionView is the client-facing question; the correct index stays hidden until feedback.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// ViewOf strips the answer key from a question.
func ViewOf(q Question) QuestionView {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return QuestionView{ID: q.ID, Prompt: q.Question, Options: opts}
}

// Feedback is revealed after an option is selected.
type Feedback struct {
	Selected      int          `json:"selected"`
	Correct       bool         `json:"correct"`
	CorrectAnswer int          `json:"correctAnswer"`
	Marks         []OptionMark `json:"marks"`
	Explanation   string       `json:"explanation"`
}

// FeedbackFor marks every option of q given the selected index.
func FeedbackFor(q Question, selected int) Feedback {
	marks := make([]OptionMark, len(q.Options))
	for i := range q.Options {
		switch {
		case i == q.CorrectAnswer:
			marks[i] = MarkCorrect
		case i == selected:
			marks[i] = MarkIncorrect
		default:
			marks[i] = MarkNeutral
		}
	}
	return Feedback{
		Selected:      selected,
		Correct:       q.IsCorrect(selected),
		CorrectAnswer: q.CorrectAnswer,
		Marks:         marks,
		Explanation:   q.Explanation,
	}
}

// ReviewItem is one row of the result screen.
type ReviewItem struct {
	Question      QuestionView `json:"question"`
	CorrectAnswer int          `json:"correctAnswer"`
	UserAnswer    int          `json:"userAnswer"`
	Correct       bool         `json:"correct"`
	Explanation   string       `json:"explanation"`
}

// SessionSnapshot is everything a client needs to render the quiz view.
type SessionSnapshot struct {
	SessionID      string        `json:"sessionId"`
	State          string        `json:"state"`
	QuestionIndex  int           `json:"questionIndex"`
	TotalQuestions int           `json:"totalQuestions"`
	TimeLeft       int           `json:"timeLeft"`
	Question       *QuestionView `json:"question,omitempty"`
	Feedback       *Feedback     `json:"feedback,omitempty"`
	Result         *QuizResult   `json:"result,omitempty"`
	Review         []ReviewItem  `json:"review,omitempty"`
	Error          string        `json:"error,omitempty"`
}
