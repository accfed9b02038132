// Package session tracks the drafts being edited, one per browser.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/debemdeboas/composer/internal/composer"
	"github.com/debemdeboas/composer/internal/model"
	"github.com/rs/zerolog"
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID    composer.DraftID
	Owner model.UserID
	Form  *composer.Form

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Store interface {
	Create(owner model.UserID) (*Session, error)
	Get(id composer.DraftID) (*Session, error)
	Delete(id composer.DraftID) error
}

var sessionLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sessionLogger = l
}
