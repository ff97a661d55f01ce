// Package slot provides the durable key/value slots the cart mirrors itself into.
// A backend stores opaque values by key; a Slot binds a backend to one key and is
// always read and written whole.
package slot

import (
	"context"
	"errors"
)

// DefaultKey is the storefront's cart slot.
const DefaultKey = "@RocketShoes:cart"

// ErrEmpty is returned by Get when nothing has been stored under the key.
var ErrEmpty = errors.New("slot empty")

type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

type Slot struct {
	backend Backend
	key     string
}

func New(b Backend, key string) *Slot {
	return &Slot{backend: b, key: key}
}

// SessionKey derives the slot key of a session-scoped cart.
func SessionKey(sessionID string) string {
	if sessionID == "" {
		return DefaultKey
	}
	return DefaultKey + ":" + sessionID
}

func (s *Slot) Key() string { return s.key }

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	return s.backend.Get(ctx, s.key)
}

func (s *Slot) Save(ctx context.Context, value []byte) error {
	return s.backend.Set(ctx, s.key, value)
}
