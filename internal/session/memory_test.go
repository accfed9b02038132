package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/debemdeboas/composer/internal/composer"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(opts ...Option) (*MemoryStore, *composer.MemoryPreviewStore) {
	previews := composer.NewMemoryPreviewStore("/previews/")
	return NewMemoryStore(composer.Rules{EmptyMarkup: "<p></p>"}, previews, opts...), previews
}

func TestMemoryStoreCreateGet(t *testing.T) {
	store, _ := newTestStore()

	s, err := store.Create("u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == "" || s.Owner != "u1" {
		t.Errorf("Unexpected session %+v", s)
	}
	if s.Form.ID() != s.ID || s.Form.Owner() != "u1" {
		t.Error("Expected form to share the session's id and owner")
	}

	got, err := store.Get(s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Error("Expected the same session back")
	}

	other, _ := store.Create("u1")
	if other.ID == s.ID {
		t.Error("Expected distinct draft ids")
	}

	if _, err := store.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	var deleted []composer.DraftID
	store, previews := newTestStore(OnDelete(func(id composer.DraftID) {
		deleted = append(deleted, id)
	}))

	s, _ := store.Create("u1")
	s.Form.SelectImage(&composer.ImageFile{Name: "a.png", Data: []byte{1}})
	if previews.Active() != 1 {
		t.Fatalf("Expected one live preview, got %d", previews.Active())
	}

	if err := store.Delete(s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if previews.Active() != 0 {
		t.Errorf("Expected preview to be released, got %d live", previews.Active())
	}
	if len(deleted) != 1 || deleted[0] != s.ID {
		t.Errorf("Expected OnDelete for %s, got %v", s.ID, deleted)
	}
	if _, err := store.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected deleted session to be gone, got %v", err)
	}

	if err := store.Delete(s.ID); err != nil {
		t.Errorf("Expected deleting twice to be a no-op, got %v", err)
	}
	if len(deleted) != 1 {
		t.Errorf("Expected OnDelete to run once, got %d", len(deleted))
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	store, _ := newTestStore(WithClock(clock.Now))

	stale, _ := store.Create("u1")
	clock.Advance(90 * time.Minute)
	fresh, _ := store.Create("u2")
	clock.Advance(40 * time.Minute)

	if removed := store.Sweep(2 * time.Hour); removed != 1 {
		t.Errorf("Expected one session swept, got %d", removed)
	}
	if _, err := store.Get(stale.ID); err == nil {
		t.Error("Expected stale session to be swept")
	}
	if _, err := store.Get(fresh.ID); err != nil {
		t.Errorf("Expected fresh session to survive: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected one session left, got %d", store.Len())
	}
}

func TestMemoryStoreGetKeepsSessionAlive(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	store, _ := newTestStore(WithClock(clock.Now))

	s, _ := store.Create("u1")
	clock.Advance(100 * time.Minute)
	if _, err := store.Get(s.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}
	clock.Advance(100 * time.Minute)

	if removed := store.Sweep(2 * time.Hour); removed != 0 {
		t.Errorf("Expected recently used session to survive, %d removed", removed)
	}
}

func TestMemoryStoreRunStops(t *testing.T) {
	store, _ := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
