package session

import (
	"context"
	"sync"
	"time"

	"github.com/debemdeboas/composer/internal/composer"
	"github.com/debemdeboas/composer/internal/model"
	"github.com/google/uuid"
)

type MemoryStore struct {
	sessions sync.Map

	rules    composer.Rules
	previews composer.PreviewStore
	onDelete func(composer.DraftID)
	now      func() time.Time
}

type Option func(*MemoryStore)

// OnDelete runs after a session is removed, whether deleted or swept.
func OnDelete(fn func(composer.DraftID)) Option {
	return func(m *MemoryStore) {
		m.onDelete = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *MemoryStore) {
		m.now = now
	}
}

func NewMemoryStore(rules composer.Rules, previews composer.PreviewStore, opts ...Option) *MemoryStore {
	m := &MemoryStore{
		rules:    rules,
		previews: previews,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) Create(owner model.UserID) (*Session, error) {
	id := composer.DraftID(uuid.New().String())
	s := &Session{
		ID:       id,
		Owner:    owner,
		Form:     composer.NewForm(id, owner, m.rules, m.previews),
		lastSeen: m.now(),
	}
	m.sessions.Store(id, s)
	sessionLogger.Debug().Str("draft_id", string(id)).Str("owner", string(owner)).Msg("Draft session created")
	return s, nil
}

func (m *MemoryStore) Get(id composer.DraftID) (*Session, error) {
	v, ok := m.sessions.Load(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := v.(*Session)
	s.touch(m.now())
	return s, nil
}

// Delete closes the session's form and forgets it. Unknown ids are a no-op.
func (m *MemoryStore) Delete(id composer.DraftID) error {
	v, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return nil
	}
	m.close(v.(*Session))
	return nil
}

// Sweep removes sessions idle for longer than idle and returns how many it removed.
// A session with a submission in flight is never swept.
func (m *MemoryStore) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	removed := 0
	m.sessions.Range(func(key, value any) bool {
		s := value.(*Session)
		if s.Form.Loading() || !s.LastSeen().Before(cutoff) {
			return true
		}
		if m.sessions.CompareAndDelete(key, value) {
			m.close(s)
			removed++
		}
		return true
	})
	if removed > 0 {
		sessionLogger.Info().Int("removed", removed).Dur("idle", idle).Msg("Swept idle draft sessions")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(idle)
		}
	}
}

func (m *MemoryStore) Len() int {
	n := 0
	m.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (m *MemoryStore) close(s *Session) {
	s.Form.Close()
	if m.onDelete != nil {
		m.onDelete(s.ID)
	}
}
