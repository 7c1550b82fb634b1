package app

import (
	"math"

	"cquiz-service/internal/domain"
)

// Scorecard is the outcome of scoring one attempt.
type Scorecard struct {
	Percentage int
	Correct    int
	Answers    []domain.QuizAnswer
}

// Score annotates every question with the user's selection and computes
// round(100 * correct / total). Unanswered questions are incorrect.
func Score(questions []domain.Question, answers map[string]string) Scorecard {
	card := Scorecard{Answers: make([]domain.QuizAnswer, 0, len(questions))}
	for _, q := range questions {
		selected := answers[q.ID]
		isCorrect := selected != "" && selected == q.CorrectAnswer
		if isCorrect {
			card.Correct++
		}
		card.Answers = append(card.Answers, domain.QuizAnswer{
			QuestionID:   q.ID,
			QuestionText: q.Question,
			Options:      append([]string(nil), q.Options...),
			Selected:     selected,
			Correct:      q.CorrectAnswer,
			IsCorrect:    isCorrect,
		})
	}
	card.Percentage = percentage(card.Correct, len(questions))
	return card
}

func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
