package app

import (
	"context"
	"log/slog"
	"time"

	"cquiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// SessionRepository holds live sessions keyed by user.
type SessionRepository interface {
	Get(key string) (*Session, bool)
	Put(session *Session)
	// Remove drops session only if it is still the one registered under its key.
	Remove(session *Session)
}

// ResultStore is the pass-through adapter to the result document store.
// Save assigns the ID and the timestamp and returns the stored record.
// Listings are newest first by that timestamp.
type ResultStore interface {
	Save(ctx context.Context, result domain.QuizResult) (domain.QuizResult, error)
	ListByUser(ctx context.Context, email string) ([]domain.QuizResult, error)
	ListAll(ctx context.Context) ([]domain.QuizResult, error)
	GetByID(ctx context.Context, id string) (domain.QuizResult, error)
	DeleteByUser(ctx context.Context, email string) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

// Direction moves the current question index.
type Direction int

const (
	DirectionPrev Direction = -1
	DirectionNext Direction = 1
)

// ParseDirection accepts "next" and "prev".
func ParseDirection(raw string) (Direction, error) {
	switch raw {
	case "next":
		return DirectionNext, nil
	case "prev", "previous":
		return DirectionPrev, nil
	default:
		return 0, domain.ErrInvalidDirection
	}
}

// QuizService contains the quiz attempt use cases.
type QuizService struct {
	bank      *Bank
	sessions  SessionRepository
	snapshots SnapshotStore
	results   ResultStore
	cfg       SessionConfig
	now       func() time.Time
	log       *slog.Logger

	submits singleflight.Group
	resumes singleflight.Group
}

type Option func(*QuizService)

func WithSessionConfig(cfg SessionConfig) Option {
	return func(s *QuizService) { s.cfg = cfg }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *QuizService) { s.log = log }
}

func NewQuizService(bank *Bank, sessions SessionRepository, snapshots SnapshotStore, results ResultStore, opts ...Option) *QuizService {
	s := &QuizService{
		bank:      bank,
		sessions:  sessions,
		snapshots: snapshots,
		results:   results,
		cfg:       DefaultSessionConfig(),
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start replaces any attempt of the user with a freshly shuffled one.
func (s *QuizService) Start(ctx context.Context, who domain.Identity) domain.SessionView {
	// The old attempt stays locked until its successor is stored, so a late
	// save of the old attempt cannot clear the new snapshot.
	if prev, ok := s.sessions.Get(who.UID); ok {
		prev.persistMu.Lock()
		defer prev.persistMu.Unlock()
		prev.closeLocked()
	}
	sess := newSession(who.UID, who, s.cfg, s.bank.Generate(), s.now())
	s.sessions.Put(sess)
	s.persistOrLog(ctx, sess)
	s.startTimer(ctx, sess)

	s.log.Info("quiz started", "user", who.Email, "questions", len(sess.questions))
	return sess.View()
}

// Resume returns the live session or restores the last valid snapshot.
func (s *QuizService) Resume(ctx context.Context, who domain.Identity) (domain.SessionView, error) {
	sess, err := s.session(ctx, who)
	if err != nil {
		return domain.SessionView{}, err
	}
	return sess.View(), nil
}

// SelectAnswer records (or changes) the option chosen for a question.
func (s *QuizService) SelectAnswer(ctx context.Context, who domain.Identity, questionID, option string) (domain.SessionView, error) {
	sess, err := s.session(ctx, who)
	if err != nil {
		return domain.SessionView{}, err
	}
	if err := sess.selectAnswer(questionID, option); err != nil {
		return domain.SessionView{}, err
	}
	s.persistOrLog(ctx, sess)
	return sess.View(), nil
}

// Navigate moves the current index by one, clamped to the question range.
func (s *QuizService) Navigate(ctx context.Context, who domain.Identity, dir Direction) (domain.SessionView, error) {
	if dir != DirectionNext && dir != DirectionPrev {
		return domain.SessionView{}, domain.ErrInvalidDirection
	}
	sess, err := s.session(ctx, who)
	if err != nil {
		return domain.SessionView{}, err
	}
	if err := sess.navigate(int(dir)); err != nil {
		return domain.SessionView{}, err
	}
	s.persistOrLog(ctx, sess)
	return sess.View(), nil
}

// Checkpoint persists the session on visibility loss.
func (s *QuizService) Checkpoint(ctx context.Context, who domain.Identity) error {
	sess, err := s.session(ctx, who)
	if err != nil {
		return err
	}
	return s.persist(ctx, sess)
}

// Submit scores and stores the attempt. Unanswered questions count as wrong.
func (s *QuizService) Submit(ctx context.Context, who domain.Identity) (domain.QuizResult, error) {
	sess, err := s.session(ctx, who)
	if err != nil {
		return domain.QuizResult{}, err
	}
	return s.submit(ctx, sess)
}

// Abandon drops the attempt without saving a result.
func (s *QuizService) Abandon(ctx context.Context, who domain.Identity) error {
	if sess, ok := s.sessions.Get(who.UID); ok {
		sess.close()
		s.sessions.Remove(sess)
	}
	return s.snapshots.Clear(ctx, who.UID)
}

// Subscribe returns a channel of session events. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, who domain.Identity) (<-chan domain.SessionEvent, func(), error) {
	sess, err := s.session(ctx, who)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := sess.subscribe()
	return ch, cancel, nil
}

func (s *QuizService) session(ctx context.Context, who domain.Identity) (*Session, error) {
	if sess, ok := s.sessions.Get(who.UID); ok && sess.open() {
		return sess, nil
	}
	v, err, _ := s.resumes.Do(who.UID, func() (interface{}, error) {
		if sess, ok := s.sessions.Get(who.UID); ok && sess.open() {
			return sess, nil
		}
		return s.restore(ctx, who)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (s *QuizService) restore(ctx context.Context, who domain.Identity) (*Session, error) {
	raw, found, err := s.snapshots.Load(ctx, who.UID)
	if err != nil {
		s.log.Warn("load quiz snapshot", "user", who.Email, "err", err)
		return nil, domain.ErrSessionNotFound
	}
	if !found {
		return nil, domain.ErrSessionNotFound
	}

	snap := DecodeSnapshot(raw, SnapshotRules{Budget: s.cfg.Budget, MaxAge: s.cfg.SnapshotMaxAge}, s.now())
	switch snap.Status {
	case SnapshotValid:
		sess := restoreSession(who.UID, who, s.cfg, snap.State)
		s.sessions.Put(sess)
		if sess.Remaining() > 0 {
			s.startTimer(ctx, sess)
		}
		s.log.Info("quiz resumed", "user", who.Email, "timeLeft", snap.State.TimeLeft)
		return sess, nil
	case SnapshotMalformed:
		s.log.Warn("discarding quiz snapshot", "user", who.Email, "reason", snap.Reason)
		if err := s.snapshots.Clear(ctx, who.UID); err != nil {
			s.log.Warn("clear quiz snapshot", "user", who.Email, "err", err)
		}
	}
	return nil, domain.ErrSessionNotFound
}

func (s *QuizService) startTimer(ctx context.Context, sess *Session) {
	if s.cfg.TickInterval <= 0 {
		return
	}
	// The countdown outlives the request that started it.
	tctx := context.WithoutCancel(ctx)
	sess.setTimer(StartTimer(tctx, s.cfg.TickInterval, func(ctx context.Context) bool {
		return s.tick(ctx, sess)
	}))
}

// tick advances the countdown once; false stops the timer.
func (s *QuizService) tick(ctx context.Context, sess *Session) bool {
	out := sess.tick()
	if out.Idle {
		return false
	}
	if out.Warn {
		s.log.Info("quiz time running low", "user", sess.owner.Email, "remaining", out.Remaining)
	}
	if out.Checkpoint {
		s.persistOrLog(ctx, sess)
	}
	if out.Expired {
		if _, err := s.submit(ctx, sess); err != nil {
			s.log.Warn("auto-submit failed", "user", sess.owner.Email, "err", err)
		}
		return false
	}
	return true
}

func (s *QuizService) submit(ctx context.Context, sess *Session) (domain.QuizResult, error) {
	// The write is not cancelled when the caller goes away.
	ctx = context.WithoutCancel(ctx)

	// Keyed by attempt: a replacement attempt never joins its predecessor's save.
	v, err, _ := s.submits.Do(sess.attempt, func() (interface{}, error) {
		questions, answers, elapsed, err := sess.beginSubmit()
		if err != nil {
			return domain.QuizResult{}, err
		}

		card := Score(questions, answers)
		result := domain.QuizResult{
			UserEmail:      sess.owner.Email,
			UserName:       sess.owner.DisplayName,
			Score:          card.Percentage,
			Answers:        card.Answers,
			TotalQuestions: len(questions),
			TimeSpent:      elapsed,
		}

		stored, err := s.results.Save(ctx, result)
		if err != nil {
			s.log.Error("save quiz result", "user", sess.owner.Email, "err", err)
			sess.abortSubmit(err.Error())
			return domain.QuizResult{}, err
		}

		s.retire(ctx, sess, stored)
		s.log.Info("quiz submitted", "user", sess.owner.Email, "result", stored.ID, "score", stored.Score)
		return stored, nil
	})
	if err != nil {
		return domain.QuizResult{}, err
	}
	return v.(domain.QuizResult), nil
}

// retire ends a saved attempt. The slot is cleared before the session reads
// as submitted so a concurrent resume cannot restore it, and only while sess
// still owns the slot so a replacement attempt keeps its snapshot.
func (s *QuizService) retire(ctx context.Context, sess *Session, stored domain.QuizResult) {
	sess.persistMu.Lock()
	defer sess.persistMu.Unlock()

	if current, ok := s.sessions.Get(sess.key); ok && current == sess {
		if err := s.snapshots.Clear(ctx, sess.key); err != nil {
			s.log.Warn("clear quiz snapshot", "user", sess.owner.Email, "err", err)
		}
	}
	sess.stopTimer()
	sess.finish(stored.ID, stored.Score)
	s.sessions.Remove(sess)
}

func (s *QuizService) persist(ctx context.Context, sess *Session) error {
	sess.persistMu.Lock()
	defer sess.persistMu.Unlock()
	if sess.Phase() != PhaseActive {
		return nil
	}
	data, err := encodeSnapshot(sess.State())
	if err != nil {
		return err
	}
	return s.snapshots.Save(ctx, sess.key, data)
}

// persistOrLog is used where the live session stays authoritative and a
// failed mirror write only costs durability.
func (s *QuizService) persistOrLog(ctx context.Context, sess *Session) {
	if err := s.persist(ctx, sess); err != nil {
		s.log.Warn("save quiz snapshot", "user", sess.owner.Email, "err", err)
	}
}
