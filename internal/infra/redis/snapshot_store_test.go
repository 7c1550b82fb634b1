package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SnapshotStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshotStore(client, ttl), mr
}

func TestSnapshotStoreSetsAndClearsKeys(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, time.Minute)

	if err := store.Save(ctx, "u1", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:session:u1") {
		t.Fatalf("expected redis key to be set")
	}

	data, found, err := store.Load(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if string(data) != `{"version":1}` {
		t.Fatalf("unexpected payload %q", data)
	}

	if err := store.Clear(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("quiz:session:u1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestSnapshotStoreMissingSlot(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)

	data, found, err := store.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found || data != nil {
		t.Fatalf("expected absent slot, got %q", data)
	}
}

func TestSnapshotStoreSlotExpires(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, time.Minute)

	if err := store.Save(ctx, "u1", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, found, _ := store.Load(ctx, "u1"); found {
		t.Fatalf("expected slot to expire")
	}
}

func TestSnapshotStoreReportsConnectionErrors(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	mr.Close()

	if err := store.Save(context.Background(), "u1", []byte("x")); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
