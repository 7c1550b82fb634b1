package memory

import (
	"context"
	"sync"

	"cquiz-service/internal/auth"
)

// UserStore keeps accounts in memory, keyed by email.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]auth.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]auth.User)}
}

func (s *UserStore) CreateUser(_ context.Context, user auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return auth.ErrUserExists
	}
	s.users[user.Email] = user
	return nil
}

func (s *UserStore) GetUserByEmail(_ context.Context, email string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[email]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return user, nil
}
