// Package notify delivers the cart's user-facing failure messages. Delivery is
// fire-and-forget: a notifier never reports failure back to the caller.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const LevelError = "error"

type Notification struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

func newNotification(sessionID, msg string) Notification {
	return Notification{
		ID:        "n_" + uuid.NewString(),
		SessionID: sessionID,
		Level:     LevelError,
		Message:   msg,
		At:        time.Now().UTC(),
	}
}

type notifier interface {
	Error(ctx context.Context, msg string)
}

// Multi fans a message out to every notifier in order.
type Multi []notifier

func (m Multi) Error(ctx context.Context, msg string) {
	for _, n := range m {
		if n != nil {
			n.Error(ctx, msg)
		}
	}
}

// Log writes notifications to the service log.
type Log struct {
	log       *zap.Logger
	sessionID string
}

func NewLog(log *zap.Logger, sessionID string) *Log {
	return &Log{log: log, sessionID: sessionID}
}

func (l *Log) Error(_ context.Context, msg string) {
	l.log.Info("cart notification",
		zap.String("session_id", l.sessionID),
		zap.String("level", LevelError),
		zap.String("message", msg),
	)
}
