package composer

import (
	"strings"
	"testing"
)

type recordingStore struct {
	inner  *MemoryPreviewStore
	events []string
}

func (r *recordingStore) Acquire(file *ImageFile) PreviewHandle {
	h := r.inner.Acquire(file)
	r.events = append(r.events, "acquire:"+file.Name)
	return h
}

func (r *recordingStore) Release(token string) {
	file, _ := r.inner.Get(token)
	r.inner.Release(token)
	r.events = append(r.events, "release:"+file.Name)
}

func TestPreviewManager(t *testing.T) {
	t.Run("One handle at a time, released before replacement", func(t *testing.T) {
		store := &recordingStore{inner: NewMemoryPreviewStore("/previews/")}
		p := NewPreviewManager(store)

		first := p.Set(&ImageFile{Name: "first.png"})
		if !strings.HasPrefix(first, "/previews/") {
			t.Fatalf("Expected preview URL under /previews/, got %q", first)
		}
		if store.inner.Active() != 1 {
			t.Fatalf("Expected 1 live handle, got %d", store.inner.Active())
		}

		second := p.Set(&ImageFile{Name: "second.png"})
		if second == first {
			t.Error("Expected a new URL for a new selection")
		}
		if store.inner.Active() != 1 {
			t.Errorf("Expected 1 live handle after replacement, got %d", store.inner.Active())
		}

		want := []string{"acquire:first.png", "release:first.png", "acquire:second.png"}
		if strings.Join(store.events, ",") != strings.Join(want, ",") {
			t.Errorf("Expected events %v, got %v", want, store.events)
		}

		token := strings.TrimPrefix(first, "/previews/")
		if _, ok := store.inner.Get(token); ok {
			t.Error("Expected the first handle to be invalidated")
		}
		if p.Current() != second {
			t.Errorf("Expected current %q, got %q", second, p.Current())
		}
	})

	t.Run("Clearing removes the preview", func(t *testing.T) {
		store := NewMemoryPreviewStore("/previews/")
		p := NewPreviewManager(store)

		p.Set(&ImageFile{Name: "a.png"})
		if got := p.Set(nil); got != "" {
			t.Errorf("Expected empty URL when clearing, got %q", got)
		}
		if p.Current() != "" || store.Active() != 0 {
			t.Errorf("Expected no preview, current=%q active=%d", p.Current(), store.Active())
		}

		// Clearing twice is harmless.
		p.Set(nil)
	})

	t.Run("Malformed files are accepted as-is", func(t *testing.T) {
		store := NewMemoryPreviewStore("/p/")
		p := NewPreviewManager(store)

		url := p.Set(&ImageFile{Name: "not-an-image.png", Data: []byte("garbage")})
		file, ok := store.Get(strings.TrimPrefix(url, "/p/"))
		if !ok || string(file.Data) != "garbage" {
			t.Errorf("Expected raw bytes to be served, got %v %v", file, ok)
		}
	})

	t.Run("Close releases the active handle", func(t *testing.T) {
		store := NewMemoryPreviewStore("/previews/")
		p := NewPreviewManager(store)
		p.Set(&ImageFile{Name: "a.png"})

		p.Close()
		if store.Active() != 0 {
			t.Errorf("Expected close to release, %d live", store.Active())
		}
		p.Close()
	})
}
