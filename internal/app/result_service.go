package app

import (
	"context"
	"log/slog"

	"cquiz-service/internal/domain"
)

// ResultQuery filters and orders the administrator listing.
type ResultQuery struct {
	Term      string
	SortField string
	Ascending bool
}

// ResultService exposes stored results to users and the administrator.
type ResultService struct {
	store ResultStore
	log   *slog.Logger
}

func NewResultService(store ResultStore, log *slog.Logger) *ResultService {
	if log == nil {
		log = slog.Default()
	}
	return &ResultService{store: store, log: log}
}

// ListMine returns the caller's results, newest first.
func (s *ResultService) ListMine(ctx context.Context, who domain.Identity) ([]domain.QuizResult, error) {
	results, err := s.store.ListByUser(ctx, who.Email)
	if err != nil {
		s.log.Error("list quiz results", "user", who.Email, "err", err)
		return nil, err
	}
	return results, nil
}

// Get returns a result the caller owns; admins may read any result.
// Results owned by someone else are reported as not found.
func (s *ResultService) Get(ctx context.Context, who domain.Identity, admin bool, id string) (domain.QuizResult, error) {
	result, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if !admin && result.UserEmail != who.Email {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	return result, nil
}

// ListAll returns every result, filtered and sorted per q. Without a sort
// field the store order (newest first) is kept.
func (s *ResultService) ListAll(ctx context.Context, q ResultQuery) ([]domain.QuizResult, error) {
	results, err := s.store.ListAll(ctx)
	if err != nil {
		s.log.Error("list all quiz results", "err", err)
		return nil, err
	}
	results = FilterResults(results, q.Term)
	if q.SortField != "" {
		results = SortResults(results, q.SortField, q.Ascending)
	}
	return results, nil
}

func (s *ResultService) DeleteByUser(ctx context.Context, email string) (int, error) {
	n, err := s.store.DeleteByUser(ctx, email)
	if err != nil {
		s.log.Error("delete user results", "user", email, "err", err)
		return 0, err
	}
	s.log.Info("deleted user results", "user", email, "count", n)
	return n, nil
}

func (s *ResultService) DeleteAll(ctx context.Context) (int, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		s.log.Error("delete all results", "err", err)
		return 0, err
	}
	s.log.Info("deleted all results", "count", n)
	return n, nil
}
