package domain

import (
	"math"
	"time"
)

// Score returns round(100*correct/total) with halves rounded away from zero (1/8 -> 13).
// An empty quiz scores 0.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(100*correct) / float64(total)))
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildResult scores the recorded answers against their questions.
// answers[i] belongs to questions[i]; missing entries count as unanswered.
func BuildResult(questions []Question, answers []int, completedAt time.Time) QuizResult {
	out := QuizResult{
		TotalQuestions: len(questions),
		Answers:        make([]QuizAnswer, 0, len(questions)),
		CompletedAt:    completedAt,
	}
	correct := 0
	for i, q := range questions {
		picked := Unanswered
		if i < len(answers) {
			picked = answers[i]
		}
		ok := q.IsCorrect(picked)
		if ok {
			correct++
		}
		out.Answers = append(out.Answers, QuizAnswer{
			QuestionID: q.ID,
			UserAnswer: picked,
			Correct:    ok,
		})
	}
	out.Score = Score(correct, len(questions))
	return out
}

// NextStats folds one more score into the running totals.
// The average is updated incrementally: round2((a*n + score) / (n+1)).
func NextStats(prev UserStats, exists bool, userID string, score int, at time.Time) UserStats {
	when := at
	if !exists || prev.TotalQuizzes <= 0 {
		return UserStats{
			UserID:       userID,
			TotalQuizzes: 1,
			AverageScore: float64(score),
			BestScore:    score,
			LastQuizDate: &when,
		}
	}

	n := prev.TotalQuizzes
	avg := Round2((prev.AverageScore*float64(n) + float64(score)) / float64(n+1))
	best := prev.BestScore
	if score > best {
		best = score
	}
	return UserStats{
		UserID:       userID,
		TotalQuizzes: n + 1,
		AverageScore: avg,
		BestScore:    best,
		LastQuizDate: &when,
	}
}
