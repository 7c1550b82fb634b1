package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cquiz-service/internal/domain"
)

// Score bands.
const (
	BandExcellent = "excellent"
	BandGood      = "good"
	BandNeedsWork = "needs-work"
)

var topicOrder = []string{"Structures", "Pointers", "Functions", "Other Concepts"}

// Summarize derives the result page report: counts, band, topics.
func Summarize(r domain.QuizResult) domain.ResultSummary {
	correct := r.CorrectCount()
	band, message := ScoreBand(r.Score)

	counts := make(map[string]*domain.TopicAccuracy)
	for _, a := range r.Answers {
		topic := topicOf(a.QuestionText)
		t, ok := counts[topic]
		if !ok {
			t = &domain.TopicAccuracy{Topic: topic}
			counts[topic] = t
		}
		t.Total++
		if a.IsCorrect {
			t.Correct++
		}
	}
	topics := make([]domain.TopicAccuracy, 0, len(counts))
	for _, name := range topicOrder {
		if t, ok := counts[name]; ok {
			t.Percent = percentage(t.Correct, t.Total)
			topics = append(topics, *t)
		}
	}

	return domain.ResultSummary{
		Correct:   correct,
		Incorrect: r.TotalQuestions - correct,
		Band:      band,
		Message:   message,
		TimeSpent: FormatDuration(r.TimeSpent),
		Topics:    topics,
	}
}

// ScoreBand maps a percentage to its band and feedback message.
func ScoreBand(score int) (string, string) {
	switch {
	case score >= 80:
		return BandExcellent, "Excellent! You have a strong understanding of C programming concepts."
	case score >= 60:
		return BandGood, "Good job! Keep practicing to improve your C programming skills."
	default:
		return BandNeedsWork, "Keep learning! Review the concepts and try again to improve your score."
	}
}

func topicOf(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "struct"):
		return "Structures"
	case strings.Contains(lower, "pointer"):
		return "Pointers"
	case strings.Contains(lower, "function"):
		return "Functions"
	default:
		return "Other Concepts"
	}
}

// FormatDuration renders seconds as "Xm Ys".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// FilterResults keeps results whose email or name contains term
// (case-insensitive) or whose score contains it as digits.
func FilterResults(results []domain.QuizResult, term string) []domain.QuizResult {
	term = strings.TrimSpace(term)
	if term == "" {
		return results
	}
	needle := strings.ToLower(term)
	out := make([]domain.QuizResult, 0, len(results))
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.UserEmail), needle) ||
			strings.Contains(strings.ToLower(r.UserName), needle) ||
			strings.Contains(strconv.Itoa(r.Score), term) {
			out = append(out, r)
		}
	}
	return out
}

// Sortable result fields.
const (
	SortByTimestamp = "timestamp"
	SortByScore     = "score"
	SortByEmail     = "email"
)

// SortResults orders a copy of results by field. Unknown fields sort by timestamp.
func SortResults(results []domain.QuizResult, field string, ascending bool) []domain.QuizResult {
	out := append([]domain.QuizResult(nil), results...)
	less := func(a, b domain.QuizResult) bool {
		switch field {
		case SortByScore:
			return a.Score < b.Score
		case SortByEmail:
			return strings.ToLower(a.UserEmail) < strings.ToLower(b.UserEmail)
		default:
			return a.Timestamp.Before(b.Timestamp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}
