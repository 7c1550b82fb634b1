// Package storetest holds the behaviour every result and user store must
// share. Store packages run it against their own backend.
package storetest

import (
	"context"
	"testing"
	"time"

	"cquiz-service/internal/app"
	"cquiz-service/internal/auth"
	"cquiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clockSlack covers a database clock running apart from the test process.
const clockSlack = time.Minute

func sample(email string, score int) domain.QuizResult {
	return domain.QuizResult{
		UserEmail: email,
		UserName:  "Ada",
		Score:     score,
		Answers: []domain.QuizAnswer{{
			QuestionID:   "q1",
			QuestionText: "What keyword is used to define a structure in C?",
			Options:      []string{"define", "class", "struct", "object"},
			Selected:     "struct",
			Correct:      "struct",
			IsCorrect:    true,
		}, {
			QuestionID:   "q4",
			QuestionText: "Which operator is used to get the address of a variable?",
			Options:      []string{"*", "&", "#", "@"},
			Correct:      "&",
		}},
		// Callers may send a timestamp; the store replaces it.
		Timestamp:      time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalQuestions: domain.QuestionCount,
		TimeSpent:      95,
	}
}

// ResultStore runs the result store contract. open must return an empty store.
func ResultStore(t *testing.T, open func(t *testing.T) app.ResultStore) {
	t.Run("save assigns id and timestamp", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)

		in := sample("ada@example.com", 13)
		saved, err := store.Save(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.WithinDuration(t, time.Now(), saved.Timestamp, clockSlack)
		assert.Equal(t, time.UTC, saved.Timestamp.Location())

		got, err := store.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, got.ID)
		assert.True(t, saved.Timestamp.Equal(got.Timestamp), "stored %s, read %s", saved.Timestamp, got.Timestamp)
		assert.Equal(t, in.UserEmail, got.UserEmail)
		assert.Equal(t, in.UserName, got.UserName)
		assert.Equal(t, in.Score, got.Score)
		assert.Equal(t, in.Answers, got.Answers)
		assert.Equal(t, in.TotalQuestions, got.TotalQuestions)
		assert.Equal(t, in.TimeSpent, got.TimeSpent)
	})

	t.Run("get missing", func(t *testing.T) {
		store := open(t)
		_, err := store.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
		_, err = store.GetByID(context.Background(), "not-an-id")
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("listings are newest first", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)

		var ids []string
		for _, email := range []string{"ada@example.com", "bob@example.com", "ada@example.com"} {
			saved, err := store.Save(ctx, sample(email, 50))
			require.NoError(t, err)
			ids = append(ids, saved.ID)
		}

		all, err := store.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})
		assert.False(t, all[0].Timestamp.Before(all[2].Timestamp))

		mine, err := store.ListByUser(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, ids[2], mine[0].ID)
		assert.Equal(t, ids[0], mine[1].ID)

		none, err := store.ListByUser(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("delete counts", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)

		n, err := store.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		for _, email := range []string{"ada@example.com", "ada@example.com", "bob@example.com"} {
			_, err := store.Save(ctx, sample(email, 50))
			require.NoError(t, err)
		}

		n, err = store.DeleteByUser(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = store.DeleteByUser(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		n, err = store.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		all, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

// UserStore runs the account store contract. open must return an empty store.
func UserStore(t *testing.T, open func(t *testing.T) auth.UserStore) {
	t.Run("create and load", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		user := auth.User{
			UID:          "u1",
			Email:        "ada@example.com",
			DisplayName:  "Ada",
			PasswordHash: "hash",
			CreatedAt:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		}

		require.NoError(t, store.CreateUser(ctx, user))
		err := store.CreateUser(ctx, auth.User{UID: "u2", Email: user.Email, PasswordHash: "x", CreatedAt: user.CreatedAt})
		assert.ErrorIs(t, err, auth.ErrUserExists)

		got, err := store.GetUserByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.UID, got.UID)
		assert.Equal(t, user.DisplayName, got.DisplayName)
		assert.Equal(t, user.PasswordHash, got.PasswordHash)
		assert.True(t, user.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := open(t).GetUserByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}
