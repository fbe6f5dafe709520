package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if _, ok, err := m.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected missing key to report not found, got ok=%v err=%v", ok, err)
	}
	if err := m.Set(ctx, "slot", `{"day":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := m.Get(ctx, "slot")
	if err != nil || !ok || v != `{"day":1}` {
		t.Fatalf("unexpected get result %q %v %v", v, ok, err)
	}
	if err := m.Remove(ctx, "slot"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "slot"); ok {
		t.Fatal("expected key to be removed")
	}
}

func TestMemoryStoreErrors(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	boom := errors.New("boom")

	m.SetPingError(boom)
	if err := m.Ping(ctx); !errors.Is(err, boom) {
		t.Errorf("expected ping error, got %v", err)
	}
	m.SetPingError(nil)
	if err := m.Ping(ctx); err != nil {
		t.Errorf("expected ping success, got %v", err)
	}

	m.SetWriteError(boom)
	if err := m.Set(ctx, "k", "v"); !errors.Is(err, boom) {
		t.Errorf("expected write error, got %v", err)
	}
}
