package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cquiz-service/internal/domain"
	"github.com/google/uuid"
)

// ResultStore is an in-memory result store. It assigns IDs and timestamps
// the way the hosted store does.
type ResultStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	seq     int64
	results map[string]storedResult
}

type storedResult struct {
	result domain.QuizResult
	seq    int64
}

func NewResultStore() *ResultStore {
	return NewResultStoreWithClock(time.Now)
}

// NewResultStoreWithClock is test-only for deterministic ordering.
func NewResultStoreWithClock(clock func() time.Time) *ResultStore {
	return &ResultStore{
		clock:   clock,
		results: make(map[string]storedResult),
	}
}

func (s *ResultStore) Save(_ context.Context, result domain.QuizResult) (domain.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	result.ID = uuid.NewString()
	result.Timestamp = s.clock().UTC()
	result.Answers = append([]domain.QuizAnswer(nil), result.Answers...)
	s.results[result.ID] = storedResult{result: result, seq: s.seq}
	return result, nil
}

func (s *ResultStore) ListByUser(_ context.Context, email string) ([]domain.QuizResult, error) {
	return s.list(func(r domain.QuizResult) bool { return r.UserEmail == email }), nil
}

func (s *ResultStore) ListAll(_ context.Context) ([]domain.QuizResult, error) {
	return s.list(func(domain.QuizResult) bool { return true }), nil
}

func (s *ResultStore) GetByID(_ context.Context, id string) (domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.results[id]
	if !ok {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	return stored.result, nil
}

func (s *ResultStore) DeleteByUser(_ context.Context, email string) (int, error) {
	return s.delete(func(r domain.QuizResult) bool { return r.UserEmail == email }), nil
}

func (s *ResultStore) DeleteAll(_ context.Context) (int, error) {
	return s.delete(func(domain.QuizResult) bool { return true }), nil
}

func (s *ResultStore) list(keep func(domain.QuizResult) bool) []domain.QuizResult {
	s.mu.RLock()
	matched := make([]storedResult, 0, len(s.results))
	for _, stored := range s.results {
		if keep(stored.result) {
			matched = append(matched, stored)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].result.Timestamp, matched[j].result.Timestamp
		if !a.Equal(b) {
			return a.After(b)
		}
		return matched[i].seq > matched[j].seq
	})
	out := make([]domain.QuizResult, 0, len(matched))
	for _, stored := range matched {
		out = append(out, stored.result)
	}
	return out
}

func (s *ResultStore) delete(match func(domain.QuizResult) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, stored := range s.results {
		if match(stored.result) {
			delete(s.results, id)
			n++
		}
	}
	return n
}
