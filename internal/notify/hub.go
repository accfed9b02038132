// Package notify pushes toast updates to the browsers editing a draft.
package notify

import (
	"sync"
	"time"

	"github.com/debemdeboas/composer/internal/composer"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Kind string

const (
	KindLoading Kind = "loading"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// maxToasts bounds how many toasts are replayed to a reconnecting client.
const maxToasts = 16

type Toast struct {
	ID        composer.ToastID
	Kind      Kind
	Message   string
	UpdatedAt time.Time
}

type Client struct {
	Msg     chan Toast
	DraftID composer.DraftID
}

// Hub fans toasts out to every client subscribed to a draft. A slow client
// drops updates rather than stalling the save flow.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	toasts  map[composer.DraftID][]Toast

	now func() time.Time
}

var notifyLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	notifyLogger = l
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		toasts:  make(map[composer.DraftID][]Toast),
		now:     time.Now,
	}
}

// Subscribe registers a client and queues the draft's current toasts on it.
func (h *Hub) Subscribe(draftID composer.DraftID) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		Msg:     make(chan Toast, maxToasts),
		DraftID: draftID,
	}
	for _, t := range h.toasts[draftID] {
		c.Msg <- t
	}
	h.clients[c] = true
	return c
}

func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.Msg)
	}
}

// Toasts returns the toasts currently shown for a draft, oldest first.
func (h *Hub) Toasts(draftID composer.DraftID) []Toast {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Toast(nil), h.toasts[draftID]...)
}

// Forget drops a draft's toasts and disconnects its clients.
func (h *Hub) Forget(draftID composer.DraftID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.toasts, draftID)
	for c := range h.clients {
		if c.DraftID == draftID {
			delete(h.clients, c)
			close(c.Msg)
		}
	}
}

// For returns the Notifier the composer uses for one draft.
func (h *Hub) For(draftID composer.DraftID) composer.Notifier {
	return &draftNotifier{hub: h, draftID: draftID}
}

func (h *Hub) publish(draftID composer.DraftID, id composer.ToastID, kind Kind, msg string) composer.ToastID {
	if id == "" {
		id = composer.ToastID(uuid.New().String())
	}
	t := Toast{ID: id, Kind: kind, Message: msg, UpdatedAt: h.now()}

	h.mu.Lock()
	defer h.mu.Unlock()

	toasts := h.toasts[draftID]
	replaced := false
	for i := range toasts {
		if toasts[i].ID == id {
			toasts[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		toasts = append(toasts, t)
		if len(toasts) > maxToasts {
			toasts = toasts[len(toasts)-maxToasts:]
		}
	}
	h.toasts[draftID] = toasts

	for c := range h.clients {
		if c.DraftID != draftID {
			continue
		}
		select {
		case c.Msg <- t:
		default:
			notifyLogger.Debug().Str("draft_id", string(draftID)).Str("toast_id", string(id)).Msg("Dropping toast for slow client")
		}
	}
	return id
}

type draftNotifier struct {
	hub     *Hub
	draftID composer.DraftID
}

func (n *draftNotifier) Loading(msg string) composer.ToastID {
	return n.hub.publish(n.draftID, "", KindLoading, msg)
}

func (n *draftNotifier) Success(id composer.ToastID, msg string) {
	n.hub.publish(n.draftID, id, KindSuccess, msg)
}

func (n *draftNotifier) Error(id composer.ToastID, msg string) {
	n.hub.publish(n.draftID, id, KindError, msg)
}
