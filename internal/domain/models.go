package domain

import "time"

// QuestionCount is the fixed number of questions drawn into every session.
const QuestionCount = 15

// Question is a multiple-choice question with exactly one correct option.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// QuestionView is what clients see while a quiz is in progress.
type QuestionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuizAnswer is a denormalized snapshot of one question and the user's response,
// captured at submission time so results survive later bank changes.
type QuizAnswer struct {
	QuestionID   string   `json:"questionId"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
	Selected     string   `json:"selected"`
	Correct      string   `json:"correct"`
	IsCorrect    bool     `json:"isCorrect"`
}

// QuizResult is the immutable record of one submitted quiz attempt.
type QuizResult struct {
	ID             string       `json:"id"`
	UserEmail      string       `json:"userEmail"`
	UserName       string       `json:"userName,omitempty"`
	Score          int          `json:"score"`
	Answers        []QuizAnswer `json:"answers"`
	Timestamp      time.Time    `json:"timestamp"`
	TotalQuestions int          `json:"totalQuestions"`
	TimeSpent      int          `json:"timeSpent"` // seconds
}

// CorrectCount counts answers marked correct.
func (r QuizResult) CorrectCount() int {
	n := 0
	for _, a := range r.Answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// Identity is the authenticated caller as seen by the quiz core.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// SnapshotVersion tags the persisted session layout.
const SnapshotVersion = 1

// SessionState is the persisted (and resumable) form of an in-progress quiz.
type SessionState struct {
	Version              int               `json:"version"`
	Questions            []Question        `json:"questions"`
	Answers              map[string]string `json:"answers"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	TimeLeft             int               `json:"timeLeft"`
	StartTime            int64             `json:"startTime"` // unix millis
}

// SessionView is the client-facing projection of a session.
type SessionView struct {
	Questions            []QuestionView    `json:"questions"`
	Answers              map[string]string `json:"answers"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	TimeLeft             int               `json:"timeLeft"`
	StartTime            time.Time         `json:"startTime"`
	Answered             int               `json:"answered"`
	TotalQuestions       int               `json:"totalQuestions"`
}

// Event types published to session subscribers.
const (
	EventTick         = "tick"
	EventWarning      = "warning"
	EventSubmitted    = "submitted"
	EventSubmitFailed = "submitFailed"
	// EventClosed is the last event of a session replaced or abandoned by its owner.
	EventClosed = "closed"
)

// SessionEvent is pushed to session subscribers as the quiz progresses.
type SessionEvent struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining"`
	ResultID  string `json:"resultId,omitempty"`
	Score     int    `json:"score,omitempty"`
	Message   string `json:"message,omitempty"`
}

// TopicAccuracy aggregates correctness for one topic bucket.
type TopicAccuracy struct {
	Topic   string `json:"topic"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
}

// ResultSummary is the derived report shown alongside a result.
type ResultSummary struct {
	Correct   int             `json:"correct"`
	Incorrect int             `json:"incorrect"`
	Band      string          `json:"band"`
	Message   string          `json:"message"`
	TimeSpent string          `json:"timeSpent"`
	Topics    []TopicAccuracy `json:"topics"`
}
