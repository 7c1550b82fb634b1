package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"cquiz-service/internal/app"
	"cquiz-service/internal/auth"
	"cquiz-service/internal/domain"
	"cquiz-service/internal/infra/storetest"
)

func TestResultStoreContract(t *testing.T) {
	storetest.ResultStore(t, func(*testing.T) app.ResultStore { return NewResultStore() })
}

func TestUserStoreContract(t *testing.T) {
	storetest.UserStore(t, func(*testing.T) auth.UserStore { return NewUserStore() })
}

func TestResultStoreNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tick := 0
	store := NewResultStoreWithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	for i, email := range []string{"ada@example.com", "bob@example.com", "ada@example.com"} {
		saved, err := store.Save(ctx, domain.QuizResult{UserEmail: email, Timestamp: base.Add(-time.Hour)})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if want := base.Add(time.Duration(i+1) * time.Second); !saved.Timestamp.Equal(want) {
			t.Fatalf("expected store timestamp %s, got %s", want, saved.Timestamp)
		}
	}

	all, _ := store.ListAll(ctx)
	if len(all) != 3 || all[0].UserEmail != "ada@example.com" || all[1].UserEmail != "bob@example.com" {
		t.Fatalf("unexpected order: %+v", all)
	}
	mine, _ := store.ListByUser(ctx, "ada@example.com")
	if len(mine) != 2 {
		t.Fatalf("expected 2 results for ada, got %d", len(mine))
	}
	if mine[0].ID != all[0].ID {
		t.Fatalf("expected newest ada result first")
	}
}

func TestResultStoreSameInstantKeepsInsertOrder(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := NewResultStoreWithClock(func() time.Time { return fixed })

	first, _ := store.Save(ctx, domain.QuizResult{UserEmail: "a@example.com"})
	second, _ := store.Save(ctx, domain.QuizResult{UserEmail: "a@example.com"})

	all, _ := store.ListAll(ctx)
	if all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("expected later save first")
	}
}

func TestResultStoreGetAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	if n, _ := store.DeleteAll(ctx); n != 0 {
		t.Fatalf("expected 0 deleted on empty store, got %d", n)
	}
	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}

	saved, _ := store.Save(ctx, domain.QuizResult{UserEmail: "ada@example.com", Score: 60})
	id := saved.ID
	_, _ = store.Save(ctx, domain.QuizResult{UserEmail: "bob@example.com"})

	got, err := store.GetByID(ctx, id)
	if err != nil || got.ID != id || got.Score != 60 {
		t.Fatalf("unexpected result %+v, err %v", got, err)
	}

	if n, _ := store.DeleteByUser(ctx, "ada@example.com"); n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
	if n, _ := store.DeleteByUser(ctx, "ada@example.com"); n != 0 {
		t.Fatalf("expected 0 deleted, got %d", n)
	}
	if n, _ := store.DeleteAll(ctx); n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
}

func TestSnapshotStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	data := []byte(`{"v":1}`)
	_ = store.Save(ctx, "k", data)
	data[0] = 'X'

	got, ok, err := store.Load(ctx, "k")
	if err != nil || !ok || string(got) != `{"v":1}` {
		t.Fatalf("unexpected load %q %v %v", got, ok, err)
	}
	_ = store.Clear(ctx, "k")
	if _, ok, _ := store.Load(ctx, "k"); ok {
		t.Fatalf("expected cleared slot")
	}
}
