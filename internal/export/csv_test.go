package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cquiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	results := []domain.QuizResult{{
		UserEmail: "ada@example.com",
		Score:     67,
		Answers: []domain.QuizAnswer{
			{QuestionID: "q1", IsCorrect: true},
			{QuestionID: "q2", IsCorrect: true},
			{QuestionID: "q3", IsCorrect: false},
		},
		Timestamp:      time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		TotalQuestions: 3,
		TimeSpent:      125,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Email,Score,Total Questions,Correct,Incorrect,Time Spent,Timestamp", lines[0])
	assert.Equal(t, "ada@example.com,67,3,2,1,2m 5s,2025-03-10T09:30:00Z", lines[1])
}

func TestWriteCSVQuotesFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []domain.QuizResult{{UserEmail: `odd,"name"@example.com`}}))
	assert.Contains(t, buf.String(), `"odd,""name""@example.com"`)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "quiz_results_2025-03-10.csv", FileName(time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)))
}
