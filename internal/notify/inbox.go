package notify

import (
	"context"
	"sync"
)

const DefaultInboxSize = 32

// Inbox buffers the most recent notifications of one session until the UI
// drains them. When full the oldest message is dropped.
type Inbox struct {
	mu        sync.Mutex
	sessionID string
	size      int
	pending   []Notification
}

func NewInbox(sessionID string, size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{sessionID: sessionID, size: size}
}

func (b *Inbox) Error(_ context.Context, msg string) {
	n := newNotification(b.sessionID, msg)

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == b.size {
		copy(b.pending, b.pending[1:])
		b.pending = b.pending[:b.size-1]
	}
	b.pending = append(b.pending, n)
}

// Drain returns pending notifications oldest first and empties the inbox.
func (b *Inbox) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.pending
	b.pending = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
