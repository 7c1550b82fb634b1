// Package export renders quiz results for offline analysis.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"cquiz-service/internal/app"
	"cquiz-service/internal/domain"
)

var header = []string{"Email", "Score", "Total Questions", "Correct", "Incorrect", "Time Spent", "Timestamp"}

// WriteCSV writes one row per result under a fixed header.
func WriteCSV(w io.Writer, results []domain.QuizResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		correct := r.CorrectCount()
		row := []string{
			r.UserEmail,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.TotalQuestions),
			strconv.Itoa(correct),
			strconv.Itoa(len(r.Answers) - correct),
			app.FormatDuration(r.TimeSpent),
			r.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName is the download name for an export taken on day.
func FileName(day time.Time) string {
	return "quiz_results_" + day.Format("2006-01-02") + ".csv"
}
