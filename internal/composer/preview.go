package composer

import (
	"github.com/debemdeboas/composer/internal/cache"
	"github.com/google/uuid"
)

// PreviewHandle is a temporary URL that displays a selected image before upload.
type PreviewHandle struct {
	Token string
	URL   string
}

type PreviewStore interface {
	Acquire(file *ImageFile) PreviewHandle
	Release(token string)
}

// PreviewManager keeps at most one live handle for a form. A handle is
// released before its replacement is acquired.
type PreviewManager struct {
	store  PreviewStore
	active *PreviewHandle
}

func NewPreviewManager(store PreviewStore) *PreviewManager {
	return &PreviewManager{store: store}
}

// Set swaps the preview to file. A nil file clears it and returns "".
func (p *PreviewManager) Set(file *ImageFile) string {
	p.release()
	if file == nil {
		return ""
	}

	h := p.store.Acquire(file)
	p.active = &h
	return h.URL
}

func (p *PreviewManager) Current() string {
	if p.active == nil {
		return ""
	}
	return p.active.URL
}

func (p *PreviewManager) Close() {
	p.release()
}

func (p *PreviewManager) release() {
	if p.active == nil {
		return
	}
	p.store.Release(p.active.Token)
	p.active = nil
}

// MemoryPreviewStore serves preview bytes from memory under urlPrefix+token.
type MemoryPreviewStore struct {
	urlPrefix string
	files     *cache.Cache[string, *ImageFile]
}

func NewMemoryPreviewStore(urlPrefix string) *MemoryPreviewStore {
	return &MemoryPreviewStore{
		urlPrefix: urlPrefix,
		files:     cache.NewCache[string, *ImageFile](),
	}
}

func (s *MemoryPreviewStore) Acquire(file *ImageFile) PreviewHandle {
	token := uuid.New().String()
	s.files.Set(token, file)
	return PreviewHandle{Token: token, URL: s.urlPrefix + token}
}

func (s *MemoryPreviewStore) Release(token string) {
	if _, ok := s.files.Take(token); !ok {
		composerLogger.Debug().Str("token", token).Msg("Released unknown preview")
	}
}

func (s *MemoryPreviewStore) Get(token string) (*ImageFile, bool) {
	return s.files.Get(token)
}

// Active reports how many handles are currently live.
func (s *MemoryPreviewStore) Active() int {
	return s.files.Len()
}
