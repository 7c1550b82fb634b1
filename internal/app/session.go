package app

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"cquiz-service/internal/domain"
)

// Phase is the submission state of a session. Only an active session accepts
// answers and navigation; the move to submitting is a single guarded step.
type Phase int32

const (
	PhaseActive Phase = iota
	PhaseSubmitting
	PhaseSubmitted
	// PhaseClosed marks a session replaced by a new Start or abandoned.
	PhaseClosed
)

// SessionConfig holds the timing rules of a quiz attempt.
type SessionConfig struct {
	Budget          int // seconds
	WarningAt       int // seconds remaining
	CheckpointEvery int // seconds of countdown between snapshots
	TickInterval    time.Duration
	SnapshotMaxAge  time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Budget:          30 * 60,
		WarningAt:       5 * 60,
		CheckpointEvery: 60,
		TickInterval:    time.Second,
		SnapshotMaxAge:  24 * time.Hour,
	}
}

var attemptSeq atomic.Uint64

func nextAttempt(key string) string {
	return key + "#" + strconv.FormatUint(attemptSeq.Add(1), 10)
}

// Session is one user's in-progress quiz.
type Session struct {
	key     string
	attempt string
	owner   domain.Identity
	cfg     SessionConfig

	// persistMu orders snapshot writes against retirement of the session.
	persistMu sync.Mutex

	mu          sync.RWMutex
	questions   []domain.Question
	answers     map[string]string
	index       int
	remaining   int
	startedAt   time.Time
	warned      bool
	phase       Phase
	timer       *Timer
	subscribers map[chan domain.SessionEvent]struct{}
}

func newSession(key string, owner domain.Identity, cfg SessionConfig, questions []domain.Question, now time.Time) *Session {
	return &Session{
		key:         key,
		attempt:     nextAttempt(key),
		owner:       owner,
		cfg:         cfg,
		questions:   questions,
		answers:     make(map[string]string),
		remaining:   cfg.Budget,
		startedAt:   now,
		subscribers: make(map[chan domain.SessionEvent]struct{}),
	}
}

// restoreSession rebuilds a session verbatim from a validated snapshot.
func restoreSession(key string, owner domain.Identity, cfg SessionConfig, state domain.SessionState) *Session {
	answers := make(map[string]string, len(state.Answers))
	for k, v := range state.Answers {
		answers[k] = v
	}
	return &Session{
		key:         key,
		attempt:     nextAttempt(key),
		owner:       owner,
		cfg:         cfg,
		questions:   state.Questions,
		answers:     answers,
		index:       state.CurrentQuestionIndex,
		remaining:   state.TimeLeft,
		startedAt:   time.UnixMilli(state.StartTime),
		subscribers: make(map[chan domain.SessionEvent]struct{}),
	}
}

// Key identifies the session in the registry and the snapshot slot.
func (s *Session) Key() string {
	return s.key
}

func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// open reports whether the session may still be resumed.
func (s *Session) open() bool {
	switch s.Phase() {
	case PhaseActive, PhaseSubmitting:
		return true
	default:
		return false
	}
}

func (s *Session) Remaining() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remaining
}

// State copies the session into its persisted form.
func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() domain.SessionState {
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return domain.SessionState{
		Version:              domain.SnapshotVersion,
		Questions:            cloneQuestions(s.questions),
		Answers:              answers,
		CurrentQuestionIndex: s.index,
		TimeLeft:             s.remaining,
		StartTime:            s.startedAt.UnixMilli(),
	}
}

// View hides correct answers from the client.
func (s *Session) View() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]domain.QuestionView, 0, len(s.questions))
	for _, q := range s.questions {
		views = append(views, domain.QuestionView{
			ID:       q.ID,
			Question: q.Question,
			Options:  append([]string(nil), q.Options...),
		})
	}
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return domain.SessionView{
		Questions:            views,
		Answers:              answers,
		CurrentQuestionIndex: s.index,
		TimeLeft:             s.remaining,
		StartTime:            s.startedAt,
		Answered:             len(s.answers),
		TotalQuestions:       len(s.questions),
	}
}

func (s *Session) selectAnswer(questionID, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return domain.ErrSessionClosed
	}
	var question *domain.Question
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			question = &s.questions[i]
			break
		}
	}
	if question == nil {
		return domain.ErrQuestionNotFound
	}
	if !question.HasOption(option) {
		return domain.ErrOptionNotFound
	}
	s.answers[questionID] = option
	return nil
}

func (s *Session) navigate(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return domain.ErrSessionClosed
	}
	next := s.index + delta
	if next < 0 {
		next = 0
	}
	if last := len(s.questions) - 1; next > last {
		next = last
	}
	s.index = next
	return nil
}

type tickOutcome struct {
	Remaining  int
	Idle       bool
	Warn       bool
	Checkpoint bool
	Expired    bool
}

func (s *Session) tick() tickOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive || s.remaining <= 0 {
		return tickOutcome{Remaining: s.remaining, Idle: true}
	}

	s.remaining--
	out := tickOutcome{Remaining: s.remaining}
	// A non-positive threshold disables the warning.
	if !s.warned && s.cfg.WarningAt > 0 && s.remaining <= s.cfg.WarningAt {
		s.warned = true
		out.Warn = true
	}
	if s.remaining == 0 {
		out.Expired = true
	} else if s.cfg.CheckpointEvery > 0 && s.remaining%s.cfg.CheckpointEvery == 0 {
		out.Checkpoint = true
	}

	s.broadcastLocked(domain.SessionEvent{Type: domain.EventTick, Remaining: s.remaining})
	if out.Warn {
		s.broadcastLocked(domain.SessionEvent{Type: domain.EventWarning, Remaining: s.remaining})
	}
	return out
}

// beginSubmit moves active -> submitting exactly once and returns the
// material needed to score the attempt.
func (s *Session) beginSubmit() ([]domain.Question, map[string]string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseSubmitted:
		return nil, nil, 0, domain.ErrAlreadySubmitted
	case PhaseSubmitting, PhaseClosed:
		return nil, nil, 0, domain.ErrSessionClosed
	}
	s.phase = PhaseSubmitting

	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return cloneQuestions(s.questions), answers, s.cfg.Budget - s.remaining, nil
}

// abortSubmit reopens the session after a failed save so the user can retry.
func (s *Session) abortSubmit(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseSubmitting {
		return
	}
	s.phase = PhaseActive
	s.broadcastLocked(domain.SessionEvent{Type: domain.EventSubmitFailed, Remaining: s.remaining, Message: message})
}

// finish marks the session submitted, notifies and detaches subscribers.
func (s *Session) finish(resultID string, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseSubmitted
	s.broadcastLocked(domain.SessionEvent{Type: domain.EventSubmitted, Remaining: s.remaining, ResultID: resultID, Score: score})
	s.detachLocked()
}

// close retires a replaced or abandoned session. Once it returns no snapshot
// write of this session is in flight and subscribers have seen a closed event.
func (s *Session) close() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.closeLocked()
}

// closeLocked is close for callers already holding persistMu.
func (s *Session) closeLocked() {
	s.mu.Lock()
	if s.phase != PhaseSubmitted {
		s.phase = PhaseClosed
	}
	s.broadcastLocked(domain.SessionEvent{Type: domain.EventClosed, Remaining: s.remaining})
	s.detachLocked()
	s.mu.Unlock()

	s.stopTimer()
}

func (s *Session) detachLocked() {
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) setTimer(t *Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Stop()
	s.timer = t
}

func (s *Session) stopTimer() {
	s.mu.Lock()
	t := s.timer
	s.timer = nil
	s.mu.Unlock()
	t.Stop()
}

func (s *Session) subscribe() (<-chan domain.SessionEvent, func()) {
	ch := make(chan domain.SessionEvent, 8)

	s.mu.Lock()
	if s.phase == PhaseSubmitted || s.phase == PhaseClosed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- domain.SessionEvent{Type: domain.EventTick, Remaining: s.remaining}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(ev domain.SessionEvent) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// slow subscriber: drop the oldest pending event
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
