package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/jwebster45206/canadian-trail/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store, err := NewRedisStore("redis://"+mr.Addr(), testLogger())
	if err != nil {
		t.Fatalf("Failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func setupSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "trail.db"), testLogger())
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// exerciseStore checks the key-value contract every backend must meet.
func exerciseStore(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want not found", ok, err)
	}
	if err := s.Set(ctx, "run:1", `{"day":1}`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Set(ctx, "run:1", `{"day":2}`); err != nil {
		t.Fatalf("Set() overwrite error: %v", err)
	}
	got, ok, err := s.Get(ctx, "run:1")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if got != `{"day":2}` {
		t.Errorf("Get() = %q, want last write", got)
	}
	if err := s.Remove(ctx, "run:1"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "run:1"); ok {
		t.Error("value still present after Remove")
	}
	if err := s.Remove(ctx, "run:1"); err != nil {
		t.Errorf("Remove() of a missing key should succeed, got %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	store, _ := setupRedis(t)
	exerciseStore(t, store)
}

func TestRedisStoreTTL(t *testing.T) {
	store, mr := setupRedis(t)
	store.WithTTL(time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, "run:ttl", "x"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if ttl := mr.TTL("run:ttl"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "run:ttl"); ok {
		t.Error("expected the save to expire")
	}
}

func TestRedisStoreBareAddress(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(mr.Addr(), testLogger())
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := store.WaitForConnection(ctx, 3, 10*time.Millisecond); err != nil {
		t.Fatalf("WaitForConnection() error: %v", err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	store, err := NewRedisStore(mr.Addr(), testLogger())
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	defer store.Close()
	mr.Close()

	if err := store.WaitForConnection(context.Background(), 2, time.Millisecond); err == nil {
		t.Error("expected WaitForConnection to give up")
	}
	if _, _, err := store.Get(context.Background(), "run:1"); err == nil {
		t.Error("expected Get to fail against a closed server")
	}
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, setupSQLite(t))
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.db")
	ctx := context.Background()

	first, err := OpenSQLite(path, testLogger())
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	if err := first.Set(ctx, "canadian-trail-save", "saved"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	second, err := OpenSQLite(path, testLogger())
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer second.Close()
	got, ok, err := second.Get(ctx, "canadian-trail-save")
	if err != nil || !ok || got != "saved" {
		t.Fatalf("Get() = %q, %v, %v; want saved", got, ok, err)
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite("  ", testLogger()); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestMemoryStoreContract(t *testing.T) {
	exerciseStore(t, storage.NewMemoryStore())
}
