package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cquiz-service/internal/app"
	"cquiz-service/internal/auth"
	"cquiz-service/internal/domain"
	"cquiz-service/internal/infra/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	var n int
	clock := func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	store, err := OpenWithClock(filepath.Join(t.TempDir(), "quiz.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// openRealClock opens a store on the wall clock.
func openRealClock(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "quiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestResultStoreContract(t *testing.T) {
	storetest.ResultStore(t, func(t *testing.T) app.ResultStore { return openRealClock(t) })
}

func TestUserStoreContract(t *testing.T) {
	storetest.UserStore(t, func(t *testing.T) auth.UserStore { return openRealClock(t) })
}

func sampleResult(email string, score int) domain.QuizResult {
	return domain.QuizResult{
		UserEmail: email,
		UserName:  "Ada",
		Score:     score,
		Answers: []domain.QuizAnswer{{
			QuestionID:   "q1",
			QuestionText: "Which keyword declares a structure?",
			Options:      []string{"struct", "union"},
			Selected:     "struct",
			Correct:      "struct",
			IsCorrect:    true,
		}},
		Timestamp:      time.Date(2025, 3, 10, 11, 59, 0, 0, time.UTC),
		TotalQuestions: 15,
		TimeSpent:      95,
	}
}

func TestResultsRoundTripNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first, err := store.Save(ctx, sampleResult("a@example.com", 40))
	require.NoError(t, err)
	second, err := store.Save(ctx, sampleResult("a@example.com", 80))
	require.NoError(t, err)
	_, err = store.Save(ctx, sampleResult("b@example.com", 60))
	require.NoError(t, err)
	firstID, secondID := first.ID, second.ID
	assert.NotEqual(t, firstID, secondID)
	storedAt := time.Date(2025, 3, 10, 12, 0, 2, 0, time.UTC)
	assert.True(t, second.Timestamp.Equal(storedAt), "got %s", second.Timestamp)

	mine, err := store.ListByUser(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, secondID, mine[0].ID)
	assert.Equal(t, firstID, mine[1].ID)
	assert.Equal(t, sampleResult("a@example.com", 80).Answers, mine[0].Answers)
	assert.True(t, mine[0].Timestamp.Equal(storedAt), "got %s", mine[0].Timestamp)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b@example.com", all[0].UserEmail)

	got, err := store.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Score)
	assert.Equal(t, 95, got.TimeSpent)
}

func TestGetByIDMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
}

func TestDeleteCounts(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	n, err := store.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for _, email := range []string{"a@example.com", "a@example.com", "b@example.com"} {
		_, err := store.Save(ctx, sampleResult(email, 50))
		require.NoError(t, err)
	}

	n, err = store.DeleteByUser(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	user := auth.User{
		UID:          "u1",
		Email:        "ada@example.com",
		DisplayName:  "Ada",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.CreateUser(ctx, user))
	assert.ErrorIs(t, store.CreateUser(ctx, auth.User{UID: "u2", Email: user.Email, PasswordHash: "x"}), auth.ErrUserExists)

	got, err := store.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.UID, got.UID)
	assert.Equal(t, user.DisplayName, got.DisplayName)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.True(t, user.CreatedAt.Equal(got.CreatedAt))

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
