package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cquiz-service/internal/domain"
)

// SnapshotStore is the durable key-value slot a session is mirrored to.
// Load reports found=false when nothing is stored under key.
type SnapshotStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	Clear(ctx context.Context, key string) error
}

// SnapshotStatus tags the outcome of reading a persisted session.
type SnapshotStatus int

const (
	SnapshotAbsent SnapshotStatus = iota
	SnapshotValid
	SnapshotMalformed
)

func (s SnapshotStatus) String() string {
	switch s {
	case SnapshotValid:
		return "valid"
	case SnapshotMalformed:
		return "malformed"
	default:
		return "absent"
	}
}

// Snapshot is the decoded slot content. State is only meaningful when
// Status is SnapshotValid; Reason only when SnapshotMalformed.
type Snapshot struct {
	Status SnapshotStatus
	State  domain.SessionState
	Reason string
}

// SnapshotRules bound what a persisted session may contain.
type SnapshotRules struct {
	Budget int           // seconds
	MaxAge time.Duration // zero disables the age check
}

func encodeSnapshot(state domain.SessionState) ([]byte, error) {
	state.Version = domain.SnapshotVersion
	return json.Marshal(state)
}

// DecodeSnapshot treats raw as an untrusted, possibly stale message.
func DecodeSnapshot(raw []byte, rules SnapshotRules, now time.Time) Snapshot {
	if len(raw) == 0 {
		return Snapshot{Status: SnapshotAbsent}
	}
	var state domain.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return malformed("decode: %v", err)
	}
	if state.Version != domain.SnapshotVersion {
		return malformed("unsupported version %d", state.Version)
	}
	if len(state.Questions) != domain.QuestionCount {
		return malformed("expected %d questions, got %d", domain.QuestionCount, len(state.Questions))
	}

	byID := make(map[string]domain.Question, len(state.Questions))
	for _, q := range state.Questions {
		if q.ID == "" || q.Question == "" || len(q.Options) < 2 {
			return malformed("question %q is incomplete", q.ID)
		}
		if _, dup := byID[q.ID]; dup {
			return malformed("duplicate question %q", q.ID)
		}
		if !q.HasOption(q.CorrectAnswer) {
			return malformed("question %q has no matching correct answer", q.ID)
		}
		byID[q.ID] = q
	}
	if state.Answers == nil {
		state.Answers = make(map[string]string)
	}
	for id, option := range state.Answers {
		q, ok := byID[id]
		if !ok {
			return malformed("answer for unknown question %q", id)
		}
		if !q.HasOption(option) {
			return malformed("answer %q is not an option of %q", option, id)
		}
	}
	if state.CurrentQuestionIndex < 0 || state.CurrentQuestionIndex >= len(state.Questions) {
		return malformed("index %d out of range", state.CurrentQuestionIndex)
	}
	if state.TimeLeft < 0 || (rules.Budget > 0 && state.TimeLeft > rules.Budget) {
		return malformed("time left %d out of range", state.TimeLeft)
	}
	if state.StartTime <= 0 {
		return malformed("missing start time")
	}
	if rules.MaxAge > 0 {
		started := time.UnixMilli(state.StartTime)
		if now.Sub(started) > time.Duration(rules.Budget)*time.Second+rules.MaxAge {
			return malformed("expired, started %s", started.UTC().Format(time.RFC3339))
		}
	}
	return Snapshot{Status: SnapshotValid, State: state}
}

func malformed(format string, args ...any) Snapshot {
	return Snapshot{Status: SnapshotMalformed, Reason: fmt.Sprintf(format, args...)}
}
