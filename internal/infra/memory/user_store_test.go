package memory

import (
	"context"
	"errors"
	"testing"

	"cquiz-service/internal/auth"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	user := auth.User{UID: "u1", Email: "ada@example.com", PasswordHash: "hash"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateUser(ctx, user); !errors.Is(err, auth.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	got, err := store.GetUserByEmail(ctx, "ada@example.com")
	if err != nil || got.UID != "u1" {
		t.Fatalf("unexpected user %+v, err %v", got, err)
	}
	if _, err := store.GetUserByEmail(ctx, "bob@example.com"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
